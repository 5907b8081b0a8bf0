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
	"fmt"
	"math"
)

// carbonProduction estimates GPP, NPP and autotrophic respiration for
// the day: canopy N content, fractional ground cover and radiation
// interception after Jackson and Palmer (1981), then assimilation via
// the configured photosynthesis model.
func (d *GDAY) carbonProduction() error {
	p, s := d.Params, d.State

	if s.LAI > 0.0 {
		// average leaf nitrogen content (g N m-2 leaf)
		leafN := s.ShootNC * p.Cfracts / s.SLA * kgAsG
		s.NContent = leafN * s.LAI
	} else {
		s.NContent = 0.0
	}

	// Fractional ground cover.
	fracGcover := 1.0
	if s.LAI < p.LAICover {
		fracGcover = s.LAI / p.LAICover
	}

	// Radiance intercepted by the canopy, accounting for partial
	// closure; derived from Beer's law.
	if s.LAI > 0.0 {
		s.LightInterception = (1.0 - math.Exp(-p.Kext*s.LAI/fracGcover)) *
			fracGcover
	} else {
		s.LightInterception = 0.0
	}

	if p.WaterStress {
		s.WtfacTsoil, s.WtfacRoot = d.soilWaterFactors()
	} else {
		// Only sensible as a debugging option.
		s.WtfacTsoil = 1.0
		s.WtfacRoot = 1.0
	}

	switch p.Assim {
	case AssimFixedLUE:
		d.assimFixedLUE()
	default:
		return fmt.Errorf("unknown assimilation model %v", p.Assim)
	}
	return nil
}

// assimFixedLUE computes GPP as a fixed light-use efficiency applied to
// intercepted PAR, reduced by leaf N below the critical N:C and by the
// root zone moisture factor.
func (d *GDAY) assimFixedLUE() {
	p, s, f := d.Params, d.State, d.Fluxes

	nMod := 1.0
	if p.NCrit > 0.0 && s.ShootNC < p.NCrit {
		nMod = s.ShootNC / p.NCrit
	}

	f.GPP = p.LUE * d.Met.PAR[d.Day] * s.LightInterception * nMod * s.WtfacRoot
	f.NPP = p.CUE * f.GPP
	f.AutoResp = f.GPP - f.NPP
}
