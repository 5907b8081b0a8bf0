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

	"gonum.org/v1/gonum/floats"
)

// precisionTolerance is the mass below which a pool is considered
// numerically unstable; its residual is redistributed along the pool's
// standard outflow split and the pool is reset to exactly zero.
const precisionTolerance = 1e-8

// Decomposition returns a function that runs the CENTURY-style litter
// and soil organic matter cascade for one day: the carbon step computes
// decay rates and pool-to-pool transfers and updates the carbon pools;
// the nitrogen step consumes the same day's transfer amounts to move
// nitrogen and settle the immobilization/mineralization balance.
func Decomposition() DomainManipulator {
	return func(d *GDAY) error {
		tr, err := d.CSoilFlows()
		if err != nil {
			return err
		}
		return d.NSoilFlows(tr)
	}
}

// CSoilFlows routes carbon from decomposing litter into the active,
// slow and passive SOM pools, updates the carbon pools, and returns the
// day's transfer amounts for the nitrogen step.
func (d *GDAY) CSoilFlows() (SOMTransfer, error) {
	p, s, f := d.Params, d.State, d.Fluxes

	var tr SOMTransfer
	if err := d.decayRates(&tr); err != nil {
		return tr, err
	}

	// Plant litter input to the metabolic and structural pools is
	// determined by the litter lignin:N ratio.
	lnLeaf, lnRoot := d.ligninNRatio()
	fmLeaf := metaFract(lnLeaf)
	fmRoot := metaFract(lnRoot)

	fmFaeces := d.fluxFromGrazers()
	d.partitionPlantLitter(fmLeaf, fmRoot, fmFaeces)

	ligShoot, ligRoot := p.LigShoot, p.LigRoot

	// Structural pools. The lignin-weighted share goes to the slow
	// pool, the remainder splits between the active pool and CO2.
	structOutSurf := s.StructSurf * tr.DecayRate[iStructSurf]
	structOutSoil := s.StructSoil * tr.DecayRate[iStructSoil]

	tr.SurfStructToSlow = structOutSurf * ligShoot * 0.7
	tr.SurfStructToActive = structOutSurf * (1.0 - ligShoot) * 0.55
	tr.SoilStructToSlow = structOutSoil * ligRoot * 0.7
	tr.SoilStructToActive = structOutSoil * (1.0 - ligRoot) * 0.45

	f.CO2ToAir[iStructSurf] = structOutSurf * (ligShoot*0.3 + (1.0-ligShoot)*0.45)
	f.CO2ToAir[iStructSoil] = structOutSoil * (ligRoot*0.3 + (1.0-ligRoot)*0.55)

	// Metabolic pools: fixed 45/55 split between the active pool and CO2.
	tr.SurfMetabToActive = s.MetabSurf * tr.DecayRate[iMetabSurf] * 0.45
	tr.SoilMetabToActive = s.MetabSoil * tr.DecayRate[iMetabSoil] * 0.45
	f.CO2ToAir[iMetabSurf] = s.MetabSurf * tr.DecayRate[iMetabSurf] * 0.55
	f.CO2ToAir[iMetabSoil] = s.MetabSoil * tr.DecayRate[iMetabSoil] * 0.55

	// Active pool: the respired share is the texture-dependent ft; a
	// constant trickle reaches the passive pool.
	ft := p.Ft()
	activeOut := s.ActiveSoil * tr.DecayRate[iActive]
	tr.ActiveToSlow = activeOut * (1.0 - ft - 0.004)
	tr.ActiveToPassive = activeOut * 0.004
	f.CO2ToAir[iActive] = activeOut * ft

	// Slow pool: fixed 42/3/55 split.
	slowOut := s.SlowSoil * tr.DecayRate[iSlow]
	tr.SlowToActive = slowOut * 0.42
	tr.SlowToPassive = slowOut * 0.03
	f.CO2ToAir[iSlow] = slowOut * 0.55

	// Passive pool: fixed 45/55 split.
	passiveOut := s.PassiveSoil * tr.DecayRate[iPassive]
	tr.PassiveToActive = passiveOut * 0.45
	f.CO2ToAir[iPassive] = passiveOut * 0.55

	tr.CIntoActive = tr.SurfStructToActive + tr.SoilStructToActive +
		tr.SurfMetabToActive + tr.SoilMetabToActive +
		tr.SlowToActive + tr.PassiveToActive
	tr.CIntoSlow = tr.SurfStructToSlow + tr.SoilStructToSlow + tr.ActiveToSlow
	tr.CIntoPassive = tr.ActiveToPassive + tr.SlowToPassive

	f.HeteroResp = d.soilRespiration(&tr)

	// Update the pools.
	s.StructSurf += f.SurfStructLitter -
		(tr.SurfStructToSlow + tr.SurfStructToActive + f.CO2ToAir[iStructSurf])
	s.StructSoil += f.SoilStructLitter -
		(tr.SoilStructToSlow + tr.SoilStructToActive + f.CO2ToAir[iStructSoil])
	s.MetabSurf += f.SurfMetabLitter -
		(tr.SurfMetabToActive + f.CO2ToAir[iMetabSurf])
	s.MetabSoil += f.SoilMetabLitter -
		(tr.SoilMetabToActive + f.CO2ToAir[iMetabSoil])
	s.ActiveSoil += tr.CIntoActive -
		(tr.ActiveToSlow + tr.ActiveToPassive + f.CO2ToAir[iActive])
	s.SlowSoil += tr.CIntoSlow -
		(tr.SlowToActive + tr.SlowToPassive + f.CO2ToAir[iSlow])
	s.PassiveSoil += tr.CIntoPassive -
		(tr.PassiveToActive + f.CO2ToAir[iPassive])

	// With no input, the metabolic pools can decay to a tiny residual
	// that flips sign through rounding.
	d.precisionControlC(&tr)

	f.NEP = f.NPP - f.HeteroResp - f.CEaten*(1.0-p.FracFaeces)
	f.SOM = tr
	return tr, nil
}

// decayRates fills in the daily decay rate of the seven litter and SOM
// pools: base rate x abiotic factor, attenuated by lignin for the
// structural pools and scaled by soil texture for the active pool.
// Decomposition has a strong temperature and moisture dependency; N
// mineralization tracks topsoil moisture (Connell et al. 1995).
func (d *GDAY) decayRates(tr *SOMTransfer) error {
	p, s := d.Params, d.State

	adfac := clamp(s.WtfacTsoil, 0, 1) * soilTempFactor(d.Met.Tsoil[d.Day])

	// Higher active SOM turnover in sandy soils.
	soilText := 1.0 - 0.75*p.Finesoil

	ligninContLeaf := math.Exp(-3.0 * p.LigShoot)
	ligninContRoot := math.Exp(-3.0 * p.LigRoot)

	tr.DecayRate[iStructSurf] = p.Kdec1 * ligninContLeaf * adfac
	tr.DecayRate[iMetabSurf] = p.Kdec2 * adfac
	tr.DecayRate[iStructSoil] = p.Kdec3 * ligninContRoot * adfac
	tr.DecayRate[iMetabSoil] = p.Kdec4 * adfac
	tr.DecayRate[iActive] = p.Kdec5 * soilText * adfac
	tr.DecayRate[iSlow] = p.Kdec6 * adfac
	tr.DecayRate[iPassive] = p.Kdec7 * adfac

	for i, k := range tr.DecayRate {
		if k < 0 {
			return fmt.Errorf("gday: negative decay rate %g for pool %d; check the kdec parameters", k, i)
		}
	}
	return nil
}

// soilTempFactor is the soil-temperature activity factor, a fit to
// Parton's figure 2a. A soil at or below freezing is inactive.
func soilTempFactor(tsoil float64) float64 {
	if tsoil <= 0.0 {
		return 0.0
	}
	tfac := 0.0326 + 0.00351*math.Pow(tsoil, 1.652) - math.Pow(tsoil/41.748, 7.19)
	if tfac < 0.0 {
		return 0.0
	}
	return tfac
}

// metaFract is the fraction of litter partitioned to the metabolic pool
// given its lignin:N ratio.
func metaFract(lig2n float64) float64 {
	return math.Max(0.0, 0.85-0.018*lig2n)
}

// ligninNRatio estimates the lignin:N ratio of leaf and fine root
// litter, which dictates how plant litter is separated between the
// metabolic and structural pools.
func (d *GDAY) ligninNRatio() (lnLeaf, lnRoot float64) {
	p := d.Params
	ncLeafLitter := d.litterLeafNC()
	ncRootLitter := d.litterRootNC()

	if ncLeafLitter > 0 {
		lnLeaf = p.LigShoot / p.Cfracts / ncLeafLitter
	}
	if ncRootLitter > 0 {
		lnRoot = p.LigRoot / p.Cfracts / ncRootLitter
	}
	return lnLeaf, lnRoot
}

func (d *GDAY) litterLeafNC() float64 {
	p, f := d.Params, d.Fluxes
	if p.UseEffNC {
		return p.LitEffNC * (1.0 - p.Fretrans)
	}
	if f.DeadLeaves == 0 {
		return 0.0
	}
	return f.DeadLeafN / f.DeadLeaves
}

func (d *GDAY) litterRootNC() float64 {
	p, f := d.Params, d.Fluxes
	if p.UseEffNC {
		return p.LitEffNC * p.NcrFac * (1.0 - p.Rretrans)
	}
	if f.DeadRoots == 0 {
		return 0.0
	}
	return f.DeadRootN / f.DeadRoots
}

// fluxFromGrazers computes the faeces carbon input and the metabolic
// fraction of faeces litter.
func (d *GDAY) fluxFromGrazers() (fmFaeces float64) {
	p, f := d.Params, d.Fluxes
	if !p.Grazing {
		f.FaecesC = 0.0
		return 0.0
	}
	f.FaecesC = f.CEaten * p.FracFaeces
	return metaFract(p.LigFaeces * p.FaecesCN / p.Cfracts)
}

// partitionPlantLitter splits litterfall from the plant (surface) and
// roots into the metabolic and structural litter pools. Stem, coarse
// root and the structural share of branch litter are woody and go
// entirely to the structural pools.
func (d *GDAY) partitionPlantLitter(fmLeaf, fmRoot, fmFaeces float64) {
	p, f := d.Params, d.Fluxes

	f.SurfStructLitter = f.DeadLeaves*(1.0-fmLeaf) +
		f.DeadBranch*p.Brabove + f.DeadStems +
		f.FaecesC*(1.0-fmFaeces)
	f.SurfMetabLitter = f.DeadLeaves*fmLeaf + f.FaecesC*fmFaeces

	f.SoilStructLitter = f.DeadRoots*(1.0-fmRoot) +
		f.DeadBranch*(1.0-p.Brabove) + f.DeadCroots
	f.SoilMetabLitter = f.DeadRoots * fmRoot
}

// soilRespiration totals the heterotrophic CO2 flux back to the
// atmosphere. With a constant passive pool the passive terms are
// rearranged so carbon conservation still holds.
func (d *GDAY) soilRespiration(tr *SOMTransfer) float64 {
	f := d.Fluxes
	resp := floats.Sum(f.CO2ToAir[:])
	if d.Params.PassiveConst {
		resp = resp + tr.ActiveToPassive + tr.SlowToPassive -
			d.State.PassiveSoil*tr.DecayRate[iPassive]
	}
	return resp
}

// precisionControlC forces near-zero carbon pools to exactly zero,
// redistributing the residual along the pool's standard outflow split
// so that no carbon is created or destroyed.
func (d *GDAY) precisionControlC(tr *SOMTransfer) {
	s, f := d.State, d.Fluxes

	if s.MetabSurf < precisionTolerance {
		excess := s.MetabSurf
		tr.SurfMetabToActive += excess * 0.45
		f.CO2ToAir[iMetabSurf] += excess * 0.55
		s.ActiveSoil += excess * 0.45
		f.HeteroResp += excess * 0.55
		s.MetabSurf = 0.0
	}
	if s.MetabSoil < precisionTolerance {
		excess := s.MetabSoil
		tr.SoilMetabToActive += excess * 0.45
		f.CO2ToAir[iMetabSoil] += excess * 0.55
		s.ActiveSoil += excess * 0.45
		f.HeteroResp += excess * 0.55
		s.MetabSoil = 0.0
	}
}
