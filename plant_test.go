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
	"math"
	"testing"
)

func TestAllocationFractionsSumToOne(t *testing.T) {
	const testTolerance = 1e-12
	d := testModel(t, 1)
	s := d.State

	for _, mode := range []AllocModel{AllocFixed, AllocAllometric} {
		d.Params.Alloc = mode
		for nitfac := 0.0; nitfac <= 1.0; nitfac += 0.1 {
			if err := d.carbonAllocationFracs(nitfac); err != nil {
				t.Fatalf("%v nitfac %g: %v", mode, nitfac, err)
			}
			sum := s.AlLeaf + s.AlRoot + s.AlCroot + s.AlBranch + s.AlStem
			if absDifferent(sum, 1.0, testTolerance) {
				t.Errorf("%v nitfac %g: fractions sum to %.15f", mode, nitfac, sum)
			}
			for name, v := range map[string]float64{
				"leaf": s.AlLeaf, "root": s.AlRoot, "croot": s.AlCroot,
				"branch": s.AlBranch, "stem": s.AlStem,
			} {
				if v < 0 {
					t.Errorf("%v nitfac %g: %s fraction %g < 0", mode, nitfac, name, v)
				}
			}
		}
	}
}

func TestAllocationFractionsOverflowIsFatal(t *testing.T) {
	d := testModel(t, 1)
	p := d.Params
	p.CAllocF, p.CAllocFz = 0.6, 0.6
	p.CAllocR, p.CAllocRz = 0.5, 0.5
	if err := d.carbonAllocationFracs(0.0); err == nil {
		t.Error("expected an error when fractions sum past 1")
	}
}

func TestAllometricAllocationBareStand(t *testing.T) {
	d := testModel(t, 1)
	p, s := d.Params, d.State
	p.Alloc = AllocAllometric
	p.Rdecay = 0 // fine root smoothing window falls back to one year
	s.Stem, s.Sapwood, s.Branch, s.Croot = 0, 0, 0, 0
	s.Shoot, s.LAI = 0, 0

	if err := d.carbonAllocationFracs(0.0); err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]float64{
		"leaf": s.AlLeaf, "root": s.AlRoot, "croot": s.AlCroot,
		"branch": s.AlBranch, "stem": s.AlStem,
	} {
		if math.IsNaN(v) {
			t.Errorf("%s fraction is NaN", name)
		}
	}
	if s.AlLeaf != 0 || s.AlBranch != 0 || s.AlCroot != 0 {
		t.Errorf("bare-stand structural fractions = leaf %g branch %g croot %g, want 0",
			s.AlLeaf, s.AlBranch, s.AlCroot)
	}
	sum := s.AlLeaf + s.AlRoot + s.AlCroot + s.AlBranch + s.AlStem
	if absDifferent(sum, 1.0, 1e-12) {
		t.Errorf("fractions sum to %.15f", sum)
	}
}

func TestAllocGoalSeek(t *testing.T) {
	// on target: half the maximum
	if v := allocGoalSeek(10, 10, 0.4, 0.5); absDifferent(v, 0.2, 1e-15) {
		t.Errorf("on-target fraction = %g, want 0.2", v)
	}
	// far below target: saturates at the maximum
	if v := allocGoalSeek(0, 10, 0.4, 0.5); absDifferent(v, 0.4, 1e-15) {
		t.Errorf("under-target fraction = %g, want 0.4", v)
	}
	// far past target: floored at zero
	if v := allocGoalSeek(20, 10, 0.4, 0.5); v != 0.0 {
		t.Errorf("over-target fraction = %g, want 0", v)
	}
	if v := allocGoalSeek(5, 0, 0.4, 0.5); v != 0.0 {
		t.Errorf("zero-target fraction = %g, want 0", v)
	}
}

func TestNUptakeModels(t *testing.T) {
	d := testModel(t, 1)
	p, s := d.Params, d.State
	s.InorgN = 0.01
	s.Root = 0.5

	p.NUptake = NUptakeConstant
	p.NUptakeZ = 3e-5
	if v, err := d.nUptake(); err != nil || absDifferent(v, 3e-5, 1e-18) {
		t.Errorf("constant uptake = %g, %v", v, err)
	}

	p.NUptake = NUptakeProportional
	if v, err := d.nUptake(); err != nil || absDifferent(v, p.RateUptake*s.InorgN, 1e-15) {
		t.Errorf("proportional uptake = %g, %v", v, err)
	}

	p.NUptake = NUptakeSaturating
	want := p.Uo * s.InorgN * s.Root / (s.Root + p.Kr)
	if v, err := d.nUptake(); err != nil || absDifferent(v, want, 1e-15) {
		t.Errorf("saturating uptake = %g, want %g (%v)", v, want, err)
	}

	// moisture-modified uptake can never exceed the base model
	p.NUptake = NUptakeSaturatingMoist
	s.WtfacTsoil = 0.5
	if v, err := d.nUptake(); err != nil || v > want {
		t.Errorf("moist uptake = %g, should not exceed %g (%v)", v, want, err)
	}
}

func TestNppMarkdown(t *testing.T) {
	const testTolerance = 1e-12
	d := testModel(t, 1)
	p, s, f := d.Params, d.State, d.Fluxes

	// no mineral N, no uptake, tiny retranslocation: wood demand at a
	// high stem N:C must exceed supply
	s.InorgN = 0.0
	p.NcwImm, p.NcwImmZ = 0.05, 0.05
	p.NcwNew, p.NcwNewZ = 0.08, 0.08

	f.NPP = 0.01
	f.GPP = f.NPP / p.CUE
	f.AutoResp = f.GPP - f.NPP
	if err := d.carbonAllocationFracs(0.5); err != nil {
		t.Fatal(err)
	}

	ncbnew, nccnew, ncwimm, ncwnew := d.ncWoodRatios(0.5)
	markedDown, err := d.nitrogenAllocation(ncbnew, nccnew, ncwimm, ncwnew)
	if err != nil {
		t.Fatal(err)
	}
	if !markedDown {
		t.Fatal("expected an NPP markdown")
	}

	ntot := f.NUptake + f.Retrans
	wood := f.NpStemImm + f.NpStemMob + f.NpBranch + f.NpCroot
	if absDifferent(wood, ntot, testTolerance) {
		t.Errorf("marked-down wood N demand %g, want all available N %g", wood, ntot)
	}
	// flexible pools receive what is left: nothing
	if absDifferent(f.NpLeaf+f.NpRoot, 0.0, testTolerance) {
		t.Errorf("flexible N allocation %g, want 0", f.NpLeaf+f.NpRoot)
	}
	// carbon side is recomputed through the constant CUE
	if absDifferent(f.GPP, f.NPP/p.CUE, testTolerance) {
		t.Errorf("GPP %g inconsistent with NPP %g at CUE %g", f.GPP, f.NPP, p.CUE)
	}
	if absDifferent(f.AutoResp, f.GPP-f.NPP, testTolerance) {
		t.Errorf("autotrophic respiration %g, want %g", f.AutoResp, f.GPP-f.NPP)
	}
}

func TestFixLeafNCDisablesMarkdown(t *testing.T) {
	d := testModel(t, 1)
	p, s, f := d.Params, d.State, d.Fluxes

	s.InorgN = 0.0
	p.FixLeafNC = true
	p.NcwImm, p.NcwImmZ = 0.05, 0.05
	p.NcwNew, p.NcwNewZ = 0.08, 0.08

	f.NPP = 0.01
	if err := d.carbonAllocationFracs(0.5); err != nil {
		t.Fatal(err)
	}
	ncbnew, nccnew, ncwimm, ncwnew := d.ncWoodRatios(0.5)
	markedDown, err := d.nitrogenAllocation(ncbnew, nccnew, ncwimm, ncwnew)
	if err != nil {
		t.Fatal(err)
	}
	if markedDown {
		t.Error("markdown should be disabled with a fixed leaf N:C")
	}
	if absDifferent(f.NPP, 0.01, 0) {
		t.Errorf("NPP = %g, should be untouched", f.NPP)
	}
}

func TestEnforceMaxNC(t *testing.T) {
	d := testModel(t, 1)
	p, s, f := d.Params, d.State, d.Fluxes

	p.NcMaxFYoung, p.NcMaxFOld = 0.04, 0.04
	s.Shoot = 1.0
	s.ShootN = 0.06 // well past the 0.04 ceiling
	s.LAI = 2.0
	s.Root = 0.5
	s.RootN = 0.0
	f.NUptake = 0.005

	d.enforceMaxNC()
	// the surplus is 0.02 but uptake only covers 0.005 of it
	if absDifferent(s.ShootN, 0.055, 1e-15) {
		t.Errorf("shoot N = %g, want 0.055", s.ShootN)
	}
	if f.NUptake != 0.0 {
		t.Errorf("uptake = %g, want 0", f.NUptake)
	}
}

func TestStemNCVariable(t *testing.T) {
	d := testModel(t, 1)
	d.Params.FixedStemNC = false
	d.State.ShootNC = 0.03

	_, _, ncwimm, ncwnew := d.ncWoodRatios(0.5)
	if ncwimm < 0 || ncwnew < 0 {
		t.Errorf("variable stem N:C went negative: %g, %g", ncwimm, ncwnew)
	}
	// the Jeffreys relation rises with foliar N:C
	d.State.ShootNC = 0.01
	_, _, lowImm, _ := d.ncWoodRatios(0.5)
	if lowImm >= ncwimm {
		t.Errorf("stem N:C should rise with foliar N:C: %g >= %g", lowImm, ncwimm)
	}
}

func TestPlantPrecisionControl(t *testing.T) {
	d := testModel(t, 1)
	s, f := d.State, d.Fluxes

	s.Shoot, s.ShootN = 5e-9, 1e-10
	s.Root, s.RootN = 3e-9, 1e-10
	d.precisionControlPlant()

	if s.Shoot != 0.0 || s.ShootN != 0.0 || s.Root != 0.0 || s.RootN != 0.0 {
		t.Error("near-zero plant pools should be exactly zero")
	}
	if absDifferent(f.DeadLeaves, 5e-9, 1e-20) || absDifferent(f.DeadRoots, 3e-9, 1e-20) {
		t.Error("residual C should leave as litter")
	}
}

func TestDeciduousSeason(t *testing.T) {
	d := testModel(t, 2)
	p := d.Params
	p.Deciduous = true
	// give the stand something to spend in its first season
	d.State.CStore = 0.5
	d.State.NStore = 0.015

	stepDays(t, d, 365)

	s := d.State
	if s.LAI != 0.0 {
		t.Errorf("midwinter LAI = %g, want 0", s.LAI)
	}
	if s.Shoot != 0.0 {
		t.Errorf("midwinter foliage = %g, want 0", s.Shoot)
	}
	if s.CStore <= 0.0 {
		t.Errorf("store = %g, should have refilled over the season", s.CStore)
	}
}

func TestMovingAverage(t *testing.T) {
	m := newMovingAverage(3)
	m.add(1)
	if m.full() {
		t.Error("window should not be full after one value")
	}
	m.add(2)
	m.add(3)
	if !m.full() {
		t.Error("window should be full after three values")
	}
	if absDifferent(m.mean(), 2.0, 1e-15) {
		t.Errorf("mean = %g, want 2", m.mean())
	}
	m.add(5) // evicts 1
	if absDifferent(m.mean(), 10.0/3.0, 1e-15) {
		t.Errorf("mean = %g, want %g", m.mean(), 10.0/3.0)
	}
}
