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
	"testing"
)

func TestSoilTempFactor(t *testing.T) {
	if v := soilTempFactor(-5.0); v != 0.0 {
		t.Errorf("frozen soil factor = %g, want 0", v)
	}
	if v := soilTempFactor(0.0); v != 0.0 {
		t.Errorf("factor at 0C = %g, want 0", v)
	}
	if v := soilTempFactor(20.0); absDifferent(v, 0.5225685416572476, 1e-10) {
		t.Errorf("factor at 20C = %g", v)
	}
	// activity increases over the temperate range
	if !(soilTempFactor(5) < soilTempFactor(15) &&
		soilTempFactor(15) < soilTempFactor(25)) {
		t.Error("temperature response is not monotonic between 5 and 25C")
	}
	// the fit goes negative at extreme heat; it must be clamped
	if v := soilTempFactor(60.0); v != 0.0 {
		t.Errorf("factor at 60C = %g, want 0", v)
	}
}

func TestMetaFract(t *testing.T) {
	if v := metaFract(0.0); absDifferent(v, 0.85, 1e-15) {
		t.Errorf("metaFract(0) = %g, want 0.85", v)
	}
	if v := metaFract(10.0); absDifferent(v, 0.67, 1e-12) {
		t.Errorf("metaFract(10) = %g, want 0.67", v)
	}
	if v := metaFract(100.0); v != 0.0 {
		t.Errorf("metaFract(100) = %g, want 0", v)
	}
}

func TestDecayRates(t *testing.T) {
	// tsoil 20C, saturated topsoil, default lignin and texture
	d := testModel(t, 1)
	d.State.WtfacTsoil = 1.0

	var tr SOMTransfer
	if err := d.decayRates(&tr); err != nil {
		t.Fatal(err)
	}
	// kdec1/365.25 * exp(-3*0.25) * tempFactor(20)
	if absDifferent(tr.DecayRate[iStructSurf], 0.0026800192025204623, 1e-10) {
		t.Errorf("surface structural rate = %g", tr.DecayRate[iStructSurf])
	}
	// kdec5/365.25 * (1 - 0.75*finesoil) * tempFactor(20)
	if absDifferent(tr.DecayRate[iActive], 0.006532106770715596, 1e-10) {
		t.Errorf("active rate = %g", tr.DecayRate[iActive])
	}
	for i, k := range tr.DecayRate {
		if k <= 0 {
			t.Errorf("pool %d rate = %g, want > 0", i, k)
		}
	}
}

func TestDecayRatesNegativeParam(t *testing.T) {
	d := testModel(t, 1)
	d.Params.Kdec3 = -1.0
	var tr SOMTransfer
	if err := d.decayRates(&tr); err == nil {
		t.Error("expected an error for a negative rate constant")
	}
}

func TestZeroLitterPoolsStayZero(t *testing.T) {
	d := testModel(t, 1)
	s := d.State

	// no litter input and empty litter pools
	tr, err := d.CSoilFlows()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.NSoilFlows(tr); err != nil {
		t.Fatal(err)
	}

	for name, v := range map[string]float64{
		"StructSurf": s.StructSurf, "MetabSurf": s.MetabSurf,
		"StructSoil": s.StructSoil, "MetabSoil": s.MetabSoil,
		"StructSurfN": s.StructSurfN, "MetabSurfN": s.MetabSurfN,
		"StructSoilN": s.StructSoilN, "MetabSoilN": s.MetabSoilN,
	} {
		if v != 0.0 {
			t.Errorf("%s = %g, want exactly 0", name, v)
		}
	}
	// SOM pools keep turning over regardless
	if s.ActiveSoil >= d.Params.InitActiveSoil {
		t.Errorf("active pool did not decay: %g", s.ActiveSoil)
	}
}

func TestCarbonConservation(t *testing.T) {
	const testTolerance = 1e-9
	d := testModel(t, 1)
	s, f := d.State, d.Fluxes

	for day := 0; day < 10; day++ {
		before := s.TotalC
		stepDays(t, d, 1)
		delta := s.TotalC - before
		if absDifferent(delta, f.NEP, testTolerance) {
			t.Errorf("day %d: total C change %g, NEP %g", day, delta, f.NEP)
		}
	}
}

func TestCarbonConservationWithGrazing(t *testing.T) {
	const testTolerance = 1e-9
	d := testModel(t, 1)
	d.Params.Grazing = true
	s, f := d.State, d.Fluxes

	for day := 0; day < 10; day++ {
		before := s.TotalC
		stepDays(t, d, 1)
		delta := s.TotalC - before
		if absDifferent(delta, f.NEP, testTolerance) {
			t.Errorf("day %d: total C change %g, NEP %g", day, delta, f.NEP)
		}
	}
}

func TestPrecisionControlIdempotent(t *testing.T) {
	d := testModel(t, 1)
	s := d.State

	s.MetabSurf = 5e-9
	s.MetabSoil = -3e-12

	var tr SOMTransfer
	d.precisionControlC(&tr)
	if s.MetabSurf != 0.0 || s.MetabSoil != 0.0 {
		t.Errorf("metabolic pools = %g, %g, want exactly 0", s.MetabSurf, s.MetabSoil)
	}
	active := s.ActiveSoil
	hetero := d.Fluxes.HeteroResp

	// a second pass over clean pools must change nothing
	d.precisionControlC(&tr)
	if s.MetabSurf != 0.0 || s.MetabSoil != 0.0 ||
		absDifferent(s.ActiveSoil, active, 0) ||
		absDifferent(d.Fluxes.HeteroResp, hetero, 0) {
		t.Error("precision control is not idempotent")
	}
}

func TestPrecisionControlConserves(t *testing.T) {
	d := testModel(t, 1)
	s := d.State

	s.MetabSurf = 5e-9
	totalBefore := s.MetabSurf + s.ActiveSoil
	var tr SOMTransfer
	d.precisionControlC(&tr)

	// residual splits 45% to the active pool, 55% respired
	totalAfter := s.ActiveSoil + d.Fluxes.CO2ToAir[iMetabSurf]
	if absDifferent(totalBefore, totalAfter, 1e-20) {
		t.Errorf("redistribution lost mass: %g -> %g", totalBefore, totalAfter)
	}
}

func TestLitterPartitioning(t *testing.T) {
	d := testModel(t, 1)
	f := d.Fluxes
	p := d.Params

	f.DeadLeaves = 0.01
	f.DeadRoots = 0.008
	f.DeadBranch = 0.002
	f.DeadStems = 0.004
	f.DeadCroots = 0.003

	d.partitionPlantLitter(0.6, 0.5, 0.0)

	surf := f.SurfStructLitter + f.SurfMetabLitter
	soil := f.SoilStructLitter + f.SoilMetabLitter
	wantSurf := f.DeadLeaves + f.DeadBranch*p.Brabove + f.DeadStems
	wantSoil := f.DeadRoots + f.DeadBranch*(1-p.Brabove) + f.DeadCroots
	if absDifferent(surf, wantSurf, 1e-15) {
		t.Errorf("surface litter %g, want %g", surf, wantSurf)
	}
	if absDifferent(soil, wantSoil, 1e-15) {
		t.Errorf("soil litter %g, want %g", soil, wantSoil)
	}
	// woody litter never enters the metabolic pools
	if absDifferent(f.SurfMetabLitter, 0.01*0.6, 1e-15) {
		t.Errorf("surface metabolic %g, want %g", f.SurfMetabLitter, 0.01*0.6)
	}
	if absDifferent(f.SoilMetabLitter, 0.008*0.5, 1e-15) {
		t.Errorf("soil metabolic %g, want %g", f.SoilMetabLitter, 0.008*0.5)
	}
}
