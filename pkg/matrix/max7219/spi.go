// Matrix Clock
// Copyright (c) 2026 The Matrix Clock Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Matrix Clock.
//
// Matrix Clock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Matrix Clock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Matrix Clock.  If not, see <http://www.gnu.org/licenses/>.

package max7219

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Open initialises the periph.io host drivers and opens the named SPI port.
// An empty name selects the first port found. The returned Dev owns the
// port and releases it on Close.
func Open(port string) (*PortDev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("max7219: host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("max7219: open spi port %q: %w", port, err)
	}
	d, err := NewSPI(p)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return &PortDev{Dev: d, port: p}, nil
}

// PortDev is a Dev that also owns its SPI port.
type PortDev struct {
	*Dev
	port spi.PortCloser
}

func (d *PortDev) Close() error {
	err := d.Dev.Close()
	if cerr := d.port.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
