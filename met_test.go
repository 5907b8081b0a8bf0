/*
Copyright (C) 2016-2019 the GDAY authors.
This file is part of GDAY.

GDAY is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GDAY is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GDAY.  If not, see <http://www.gnu.org/licenses/>.
*/

package gday

import (
	"strings"
	"testing"
)

func TestReadMet(t *testing.T) {
	const in = `# daily forcing
year tair tsoil rain par ndep
1998 15.2 13.1 0.0 8.5 0.002
1998 16.0 13.5 4.2 9.1 0.002
1999 14.8 12.9 1.1 7.9 0.003
`
	m, err := ReadMet(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if m.Days() != 3 {
		t.Fatalf("days = %d, want 3", m.Days())
	}
	if m.Year[2] != 1999 {
		t.Errorf("year[2] = %d, want 1999", m.Year[2])
	}
	if absDifferent(m.Rain[1], 4.2, 0) {
		t.Errorf("rain[1] = %g, want 4.2", m.Rain[1])
	}
	// ndep converts from g m-2 to t ha-1
	if absDifferent(m.Ndep[0], 0.002*gM2ToTonnesHa, 1e-15) {
		t.Errorf("ndep[0] = %g, want %g", m.Ndep[0], 0.002*gM2ToTonnesHa)
	}

	years, daysIn := m.Years()
	if len(years) != 2 || daysIn[0] != 2 || daysIn[1] != 1 {
		t.Errorf("years = %v, daysIn = %v", years, daysIn)
	}
}

func TestReadMetMissingColumn(t *testing.T) {
	const in = `year tair rain par ndep
1998 15.2 0.0 8.5 0.002
`
	if _, err := ReadMet(strings.NewReader(in)); err == nil {
		t.Error("expected an error for a missing tsoil column")
	}
}

func TestReadMetEmpty(t *testing.T) {
	if _, err := ReadMet(strings.NewReader("year tair tsoil rain par ndep\n")); err == nil {
		t.Error("expected an error for forcing with no days")
	}
}

func TestConstantMet(t *testing.T) {
	m := ConstantMet(2, 15, 20, 2, 10, 5e-5)
	if m.Days() != 730 {
		t.Fatalf("days = %d, want 730", m.Days())
	}
	years, daysIn := m.Years()
	if len(years) != 2 || daysIn[0] != 365 || daysIn[1] != 365 {
		t.Errorf("years = %v, daysIn = %v", years, daysIn)
	}
	if absDifferent(m.Tsoil[400], 20, 0) {
		t.Errorf("tsoil[400] = %g, want 20", m.Tsoil[400])
	}
}

func TestDayLength(t *testing.T) {
	// at the equator every day is close to 12 hours
	if dl := dayLength(172, 365, 0.0); absDifferent(dl, 12.0, 0.2) {
		t.Errorf("equatorial midsummer day length = %g, want ~12", dl)
	}
	// northern midsummer days are longer than midwinter days
	summer := dayLength(172, 365, 50.0)
	winter := dayLength(355, 365, 50.0)
	if summer <= winter {
		t.Errorf("summer %g should exceed winter %g at 50N", summer, winter)
	}
	// polar winter
	if dl := dayLength(355, 365, 80.0); dl != 0.0 {
		t.Errorf("polar winter day length = %g, want 0", dl)
	}
}
