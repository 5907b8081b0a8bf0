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
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrSpinupNotConverged is returned by SpinUp when the pools are still
// drifting after the cycle budget is spent.
var ErrSpinupNotConverged = errors.New("spin-up failed to converge")

// InitCalendar returns a function that validates the met forcing,
// converts the per-year rate constants to the daily timestep and
// rewinds the simulation calendar to the first day.
func InitCalendar() DomainManipulator {
	return func(d *GDAY) error {
		if d.Met == nil || d.Met.Days() == 0 {
			return fmt.Errorf("no met forcing supplied")
		}
		d.Params.CorrectRateConstants(true)
		d.rewind()
		return nil
	}
}

func (d *GDAY) rewind() {
	d.Day, d.Doy, d.YearIndex = 0, 0, 0
	d.Done = false
	d.setYear(0)
}

func (d *GDAY) setYear(idx int) {
	_, daysIn := d.Met.Years()
	d.daysInYear = daysIn[idx]
	d.dayLengths = make([]float64, d.daysInYear)
	for doy := range d.dayLengths {
		d.dayLengths[doy] = dayLength(doy, d.daysInYear, d.Params.Latitude)
	}
}

// DayLength returns the current day's daytime length in hours.
func (d *GDAY) DayLength() float64 { return d.dayLengths[d.Doy] }

// ResetFluxes returns a function that zeroes the day's flux record. It
// must run before any other daily stage.
func ResetFluxes() DomainManipulator {
	return func(d *GDAY) error {
		d.Fluxes.Reset()
		return nil
	}
}

// NextDay returns a function that advances the simulation calendar,
// setting Done when the forcing is exhausted. It must be the last
// stage of the day.
func NextDay() DomainManipulator {
	return func(d *GDAY) error {
		d.Day++
		d.Doy++
		if d.Doy >= d.daysInYear {
			d.Doy = 0
			d.YearIndex++
			if d.Day < d.Met.Days() {
				d.setYear(d.YearIndex)
			}
		}
		if d.Day >= d.Met.Days() {
			d.Done = true
		}
		return nil
	}
}

// Log returns a function that reports pool totals at the end of each
// simulated year.
func Log(l *logrus.Logger) DomainManipulator {
	return func(d *GDAY) error {
		if d.Doy != d.daysInYear-1 {
			return nil
		}
		s := d.State
		l.WithFields(logrus.Fields{
			"year":   d.Met.Year[d.Day],
			"plantC": s.PlantC,
			"soilC":  s.SoilC,
			"lai":    s.LAI,
			"inorgN": s.InorgN,
		}).Info("year complete")
		return nil
	}
}

// NewSimulation assembles a model with the standard daily pipeline:
// flux reset, phenology, litterfall, plant growth, decomposition,
// day-end derivation and the calendar advance. Stages within a day
// consume what earlier stages produced, so the order matters.
func NewSimulation(p *Params, met *MetData) *GDAY {
	d := NewGDAY(p, met)
	d.InitFuncs = []DomainManipulator{
		InitCalendar(),
	}
	d.RunFuncs = []DomainManipulator{
		ResetFluxes(),
		Phenology(),
		Litterfall(),
		PlantGrowth(),
		Decomposition(),
		DayEnd(),
		NextDay(),
	}
	return d
}

// SpinUp repeats the whole met forcing until the plant and soil carbon
// pools change by less than tol between consecutive cycles, bringing
// the pools to a steady state for the climate. It returns
// ErrSpinupNotConverged if maxCycles full runs are not enough. Init
// must have been called first.
func (d *GDAY) SpinUp(tol float64, maxCycles int) error {
	prevPlantC := math.Inf(1)
	prevSoilC := math.Inf(1)

	for cycle := 0; cycle < maxCycles; cycle++ {
		d.rewind()
		if err := d.Run(); err != nil {
			return err
		}
		s := d.State
		if math.Abs(prevPlantC-s.PlantC) < tol &&
			math.Abs(prevSoilC-s.SoilC) < tol {
			return nil
		}
		prevPlantC, prevSoilC = s.PlantC, s.SoilC
	}
	return fmt.Errorf("gday: %w after %d cycles", ErrSpinupNotConverged, maxCycles)
}
