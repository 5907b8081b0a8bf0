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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MetData holds the daily meteorological forcing, read-only time series
// indexed by project day.
type MetData struct {
	Year  []int     // calendar year of each day
	Tair  []float64 // mean air temperature (deg C)
	Tsoil []float64 // mean soil temperature (deg C)
	Rain  []float64 // precipitation (mm)
	PAR   []float64 // photosynthetically active radiation (MJ m-2 day-1)
	Ndep  []float64 // N deposition (t ha-1 day-1)
}

// Days returns the number of days of forcing.
func (m *MetData) Days() int { return len(m.Tsoil) }

// Years returns the distinct years in the forcing, in order, and the
// number of days in each.
func (m *MetData) Years() (years []int, daysIn []int) {
	for i, yr := range m.Year {
		if i == 0 || yr != years[len(years)-1] {
			years = append(years, yr)
			daysIn = append(daysIn, 0)
		}
		daysIn[len(daysIn)-1]++
	}
	return
}

// ConstantMet builds a synthetic forcing of nyears 365-day years with
// every day identical; used by spin-up tests and debugging.
func ConstantMet(nyears int, tair, tsoil, rain, par, ndep float64) *MetData {
	n := nyears * 365
	m := &MetData{
		Year:  make([]int, n),
		Tair:  make([]float64, n),
		Tsoil: make([]float64, n),
		Rain:  make([]float64, n),
		PAR:   make([]float64, n),
		Ndep:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Year[i] = 1 + i/365
		m.Tair[i] = tair
		m.Tsoil[i] = tsoil
		m.Rain[i] = rain
		m.PAR[i] = par
		m.Ndep[i] = ndep
	}
	return m
}

// ReadMet reads whitespace-delimited daily forcing with a header line of
// column names: year, tair, tsoil, rain, par, ndep (ndep in g N m-2
// day-1, converted here to t ha-1 day-1). Lines beginning with '#' are
// skipped.
func ReadMet(r io.Reader) (*MetData, error) {
	scanner := bufio.NewScanner(r)
	var cols map[string]int
	m := new(MetData)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if cols == nil {
			cols = make(map[string]int)
			for i, name := range fields {
				cols[strings.ToLower(name)] = i
			}
			for _, want := range []string{"year", "tair", "tsoil", "rain", "par", "ndep"} {
				if _, ok := cols[want]; !ok {
					return nil, fmt.Errorf("gday: met forcing is missing column '%s'", want)
				}
			}
			continue
		}
		get := func(name string) (float64, error) {
			return strconv.ParseFloat(fields[cols[name]], 64)
		}
		yr, err := strconv.Atoi(fields[cols["year"]])
		if err != nil {
			return nil, fmt.Errorf("gday: met forcing line %d: %v", line, err)
		}
		var vals [5]float64
		for i, name := range []string{"tair", "tsoil", "rain", "par", "ndep"} {
			if vals[i], err = get(name); err != nil {
				return nil, fmt.Errorf("gday: met forcing line %d: %v", line, err)
			}
		}
		m.Year = append(m.Year, yr)
		m.Tair = append(m.Tair, vals[0])
		m.Tsoil = append(m.Tsoil, vals[1])
		m.Rain = append(m.Rain, vals[2])
		m.PAR = append(m.PAR, vals[3])
		m.Ndep = append(m.Ndep, vals[4]*gM2ToTonnesHa)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gday: reading met forcing: %v", err)
	}
	if m.Days() == 0 {
		return nil, fmt.Errorf("gday: met forcing contains no days")
	}
	return m, nil
}

// dayLength returns the daytime length in hours for a day of year at
// the given latitude.
func dayLength(doy, daysInYear int, latitude float64) float64 {
	const deg2rad = math.Pi / 180.0
	rlat := latitude * deg2rad
	solarDec := -23.4 * deg2rad *
		math.Cos(2.0*math.Pi*(float64(doy)+10.0)/float64(daysInYear))
	arg := -math.Tan(rlat) * math.Tan(solarDec)
	if arg <= -1.0 {
		return 24.0
	}
	if arg >= 1.0 {
		return 0.0
	}
	return 24.0 / math.Pi * math.Acos(arg)
}
