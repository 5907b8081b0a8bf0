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

import "testing"

func TestNewton(t *testing.T) {
	f := func(x float64) float64 { return x*x - 4.0 }
	fprime := func(x float64) float64 { return 2.0 * x }

	root, err := Newton(f, fprime, 3.0, 1e-10, 50)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(root, 2.0, 1e-8) {
		t.Errorf("root = %g, want 2", root)
	}
}

func TestNewtonZeroDerivative(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1.0 }
	fprime := func(x float64) float64 { return 2.0 * x }
	if _, err := Newton(f, fprime, 0.0, 1e-10, 50); err == nil {
		t.Error("expected an error for a zero derivative")
	}
}

func TestNewtonIterationBudget(t *testing.T) {
	f := func(x float64) float64 { return x*x - 4.0 }
	fprime := func(x float64) float64 { return 2.0 * x }
	if _, err := Newton(f, fprime, 100.0, 1e-10, 1); err == nil {
		t.Error("expected an error when the iteration budget runs out")
	}
}

func TestRootingDepthRecovery(t *testing.T) {
	m := &RootingDepthModel{D0: 0.35, R0: 0.1, TopSoilDepth: 0.3}

	// root mass implied by a known depth must invert back to it
	const depth = 1.2
	rtot := m.rtot(depth)
	got, nuptake, rabove, err := m.Uptake(rtot, 10.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(got, depth, 1e-5) {
		t.Errorf("recovered depth = %g, want %g", got, depth)
	}
	if nuptake <= 0.0 {
		t.Errorf("nuptake = %g, want > 0", nuptake)
	}
	if rabove <= 0.0 || rabove > rtot {
		t.Errorf("rabove = %g, want in (0, %g]", rabove, rtot)
	}
}

func TestRootingDepthUptakeGrowsWithRoots(t *testing.T) {
	m := &RootingDepthModel{D0: 0.35, R0: 0.1, TopSoilDepth: 0.3}

	_, shallow, _, err := m.Uptake(m.rtot(0.5), 10.0, 0.4)
	if err != nil {
		t.Fatal(err)
	}
	_, deep, _, err := m.Uptake(m.rtot(2.0), 10.0, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if shallow >= deep {
		t.Errorf("uptake should rise with rooting depth: %g >= %g", shallow, deep)
	}
}
