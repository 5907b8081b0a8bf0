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

// waterBalance runs the day's water balance from the given day-start
// bucket contents: canopy interception, GPP-driven transpiration
// demand and a two-layer leaky-bucket soil store. The day-start values
// are passed explicitly so the balance can be re-run with a corrected
// GPP after an NPP markdown.
func (d *GDAY) waterBalance(pawaterTsoil0, pawaterRoot0 float64) {
	p, s, f := d.Params, d.State, d.Fluxes
	rain := d.Met.Rain[d.Day]

	// Interception relates to leaf area and therefore canopy storage
	// capacity. Likely to be overestimated under frequent daily
	// rainfall.
	if s.LAI > 0.0 {
		f.ERain = maxf(0.0, rain-s.LAI*p.WetLoss)
		f.Interception = rain - f.ERain
	} else {
		f.ERain = maxf(0.0, rain)
		f.Interception = 0.0
	}

	// Transpiration demand from GPP via a constant water use
	// efficiency.
	if p.WUE > 0.0 {
		f.Transpiration = f.GPP / p.WUE
	} else {
		f.Transpiration = 0.0
	}
	f.ET = f.Transpiration + f.Interception

	// Root zone bucket; spill beyond capacity is outflow, a combined
	// drainage and runoff term.
	s.PawaterRoot = pawaterRoot0 + f.ERain - f.Transpiration
	f.Runoff = maxf(0.0, s.PawaterRoot-p.WcapacRoot)
	s.PawaterRoot = clamp(s.PawaterRoot, 0.0, p.WcapacRoot)

	// Topsoil bucket; only a fraction of the uptake comes from the top
	// layer.
	s.PawaterTsoil = clamp(pawaterTsoil0+f.ERain-f.Transpiration*p.FractUpSoil,
		0.0, p.WcapacTop)
}

// soilWaterFactors maps the relative content of each bucket onto a
// [0, 1] availability factor between the wilting and critical points
// (Pepper et al. 2008). A drying soil induces stomatal closure; N
// mineralisation tracks the topsoil factor.
func (d *GDAY) soilWaterFactors() (wtfacTsoil, wtfacRoot float64) {
	p, s := d.Params, d.State

	smcTsoil := s.PawaterTsoil / p.WcapacTop
	smcRoot := s.PawaterRoot / p.WcapacRoot

	wtfacTsoil = clamp((smcTsoil-p.SoilWP)/(p.SoilCP-p.SoilWP), 0.0, 1.0)
	wtfacRoot = clamp((smcRoot-p.SoilWP)/(p.SoilCP-p.SoilWP), 0.0, 1.0)
	return wtfacTsoil, wtfacRoot
}
