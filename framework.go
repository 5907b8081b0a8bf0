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

// Package gday simulates daily carbon, nitrogen and water cycling in a
// forest stand. The model is structured into plant pools (foliage, fine
// root, coarse root, branch and stem), four litter pools (above/below
// ground metabolic and structural) and three soil organic matter pools
// with varying turnover rates (active, slow and passive). An adapted
// implementation of the CENTURY model simulates soil carbon and nutrient
// dynamics. Pools can be thought of as buckets; they don't have
// dimensions.
package gday

import "fmt"

// Version is the version of this module.
const Version = "1.1.0"

// GDAY holds the current state of a model run: parameters, pool state,
// the per-day flux record, meteorological forcing and the simulation
// calendar.
type GDAY struct {
	Params *Params
	State  *State
	Fluxes *Fluxes
	Met    *MetData

	// InitFuncs are run once before the simulation starts.
	InitFuncs []DomainManipulator

	// RunFuncs are run once per simulated day, in order, until Done is
	// set. Each stage within a day consumes outputs the previous stage
	// produced, so the order must not be changed.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run after the simulation finishes.
	CleanupFuncs []DomainManipulator

	Day       int  // project day index into the met forcing
	Doy       int  // day of year (zero based)
	YearIndex int  // index of the current year in the forcing
	Done      bool // Done specifies whether the simulation is finished.

	daysInYear int
	dayLengths []float64

	// Daily foliage and fine root turnover rates, set by the litterfall
	// stage and consumed by the plant growth stage. leafFallN is the
	// day's leaf N loss before retranslocation.
	fdecay, rdecay float64
	leafFallN      float64

	// Running water/N limitation for allometric root allocation.
	rootAllocSMA *movingAverage

	// Deciduous phenology weights for the current year, indexed by day
	// of year, and the store-spending rates set at leaf out.
	growingDays []float64
	leafOutDays []float64
	lRate, wRate, bRate, cRate float64
	lnRate, bnRate, cnRate     float64
	wnImRate, wnMobRate        float64
}

// DomainManipulator is a class of functions that operate on the model as
// a whole, either initializing it, advancing it by part of a day, or
// cleaning up after a run.
type DomainManipulator func(d *GDAY) error

// NewGDAY creates a model holder from a parameter set and met forcing.
// Pool state is taken from the parameter snapshot, which may hold either
// cold-start defaults or a previously saved steady state.
func NewGDAY(p *Params, met *MetData) *GDAY {
	return &GDAY{
		Params: p,
		State:  p.InitialState(),
		Fluxes: new(Fluxes),
		Met:    met,
	}
}

// Init initializes the model with the InitFuncs.
func (d *GDAY) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return fmt.Errorf("gday: model initialization: %v", err)
		}
	}
	return nil
}

// Run carries out the simulation by running the RunFuncs once per day
// until d.Done is true.
func (d *GDAY) Run() error {
	d.Done = false
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return fmt.Errorf("gday: model run day %d: %v", d.Day, err)
			}
		}
	}
	return nil
}

// Cleanup runs the CleanupFuncs.
func (d *GDAY) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return fmt.Errorf("gday: model cleanup: %v", err)
		}
	}
	return nil
}
