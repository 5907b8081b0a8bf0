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

// Newton finds a root of f near x0 by Newton-Raphson iteration using
// the analytic derivative fprime. Iteration stops when the step falls
// below tol; a zero derivative or exhausting maxIter is an error.
func Newton(f, fprime func(float64) float64, x0, tol float64, maxIter int) (float64, error) {
	x := x0
	for i := 0; i < maxIter; i++ {
		fx := f(x)
		if fx == 0.0 {
			return x, nil
		}
		der := fprime(x)
		if der == 0.0 {
			return x, fmt.Errorf("gday: newton: zero derivative at x=%g", x)
		}
		step := fx / der
		x -= step
		if math.Abs(step) < tol {
			return x, nil
		}
	}
	return x, fmt.Errorf("gday: newton: no convergence after %d iterations", maxIter)
}

// RootingDepthModel estimates the maximum rooting depth implied by the
// standing fine root mass, assuming root mass per unit soil volume
// declines exponentially with depth, and from it the plant N uptake
// (McMurtrie et al. 2012, eqn B6-B8). Root longevity and root N:C are
// taken to be independent of depth.
type RootingDepthModel struct {
	D0 float64 // length scale for the decline of max uptake with depth (m)
	R0 float64 // root C density at half-maximum N uptake (kg C m-3)

	// TopSoilDepth is the soil depth the rest of the model assumes;
	// root litter below it is ignored.
	TopSoilDepth float64
}

// Uptake solves for the rooting depth given the total fine root C mass
// rtot (kg m-2), then returns the depth (m), the plant N uptake implied
// by the soil N supply rate nsupply, and the root mass above
// TopSoilDepth. depthGuess seeds the Newton solve.
func (m *RootingDepthModel) Uptake(rtot, nsupply, depthGuess float64) (rootDepth, nuptake, rabove float64, err error) {
	rootDepth, err = Newton(
		func(dmax float64) float64 { return m.rtot(dmax) - rtot },
		m.rtotDerivative, depthGuess, 1e-6, 250)
	if err != nil {
		return 0, 0, 0, err
	}

	// Plant N uptake as a function of maximum rooting depth, eqn B8.
	nuptake = nsupply / (1.0 - math.Exp(-m.TopSoilDepth/m.D0)) *
		math.Pow(1.0-math.Exp(-rootDepth/(2.0*m.D0)), 2.0)

	// Cumulative root mass above the model soil depth.
	rabove = (rtot+2.0*m.R0*m.D0+rootDepth*m.R0)*
		(1.0-math.Exp(-m.TopSoilDepth/(2.0*m.D0))) -
		m.R0*m.TopSoilDepth

	return rootDepth, nuptake, rabove, nil
}

// rtot is the integral of root mass per unit soil volume over depth,
// from the surface to dmax.
func (m *RootingDepthModel) rtot(dmax float64) float64 {
	return m.R0 * (2.0*m.D0*(math.Exp(dmax/(2.0*m.D0))-1.0) - dmax)
}

func (m *RootingDepthModel) rtotDerivative(dmax float64) float64 {
	return m.R0 * (math.Exp(0.5*dmax/m.D0) - 1.0)
}
