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

// nTransfer mirrors a day's carbon transfers on the nitrogen side. The
// N moved with each transfer carries the source pool's N:C ratio prior
// to the increase of N:C due to CO2 evolution.
type nTransfer struct {
	surfStructToSlow   float64
	surfStructToActive float64
	soilStructToSlow   float64
	soilStructToActive float64
	surfMetabToActive  float64
	soilMetabToActive  float64
	activeToSlow       float64
	activeToPassive    float64
	slowToActive       float64
	slowToPassive      float64
	passiveToActive    float64

	intoActive  float64
	intoSlow    float64
	intoPassive float64
}

// NSoilFlows moves nitrogen through the litter and SOM pools alongside
// the carbon amounts in tr, settles the gross mineralisation against
// microbial immobilisation, and updates the mineral N pool.
func (d *GDAY) NSoilFlows(tr SOMTransfer) error {
	f := d.Fluxes

	f.NInflow = d.Met.Ndep[d.Day]

	faecesN := d.grazerNInputs()
	nsurf, nsoil := d.nFromPlantLitter(faecesN)
	d.partitionPlantLitterN(nsurf, nsoil)

	nt := d.nTransfers(&tr)

	f.NGross = nGrossMineralisation(&nt)
	f.NImmob = d.nImmobilisation(&tr)

	d.updateNPools(&tr, &nt)

	// Net mineralisation is the excess of N outflows over inflows.
	f.NMineralisation = f.NInflow + f.NGross - f.NImmob + f.NLittRelease
	return nil
}

// grazerNInputs returns the faeces N input to litter; urine N goes
// directly to the mineral pool. Faeces N is capped at the total N input
// to the soil from grazing.
func (d *GDAY) grazerNInputs() (faecesN float64) {
	p, f := d.Params, d.Fluxes
	if !p.Grazing {
		f.NUrine = 0.0
		return 0.0
	}
	faecesN = f.FaecesC / p.FaecesCN
	if faecesN > f.NEaten*p.FracToSoil {
		faecesN = f.NEaten * p.FracToSoil
	}
	f.NUrine = maxf(0.0, f.NEaten*p.FracToSoil-faecesN)
	return faecesN
}

// nFromPlantLitter totals the day's litter N input to the surface and
// soil pools; the two are independent. Faeces N enters aboveground.
func (d *GDAY) nFromPlantLitter(faecesN float64) (nsurf, nsoil float64) {
	p, f := d.Params, d.Fluxes
	nsurf = f.DeadLeafN + f.DeadBranchN*p.Brabove + f.DeadStemN + faecesN
	nsoil = f.DeadRootN + f.DeadBranchN*(1.0-p.Brabove) + f.DeadCrootN
	return nsurf, nsoil
}

// partitionPlantLitterN splits the litter N input between the
// structural and metabolic pools. The structural input N:C is either
// held constant, as per CENTURY, or floats as a fixed fraction of the
// metabolic input N:C.
func (d *GDAY) partitionPlantLitterN(nsurf, nsoil float64) {
	p, f := d.Params, d.Fluxes

	if !p.StrFloat {
		f.NSurfStructLitter = minf(f.SurfStructLitter/p.StructCN, nsurf)
		f.NSoilStructLitter = minf(f.SoilStructLitter/p.StructCN, nsoil)
	} else {
		cSurf := f.SurfStructLitter*p.StructRat + f.SurfMetabLitter
		if cSurf == 0.0 {
			f.NSurfStructLitter = 0.0
		} else {
			f.NSurfStructLitter = nsurf * f.SurfStructLitter * p.StructRat / cSurf
		}
		cSoil := f.SoilStructLitter*p.StructRat + f.SoilMetabLitter
		if cSoil == 0.0 {
			f.NSoilStructLitter = 0.0
		} else {
			f.NSoilStructLitter = nsoil * f.SoilStructLitter * p.StructRat / cSoil
		}
	}

	// Remaining N goes to the metabolic pools.
	f.NSurfMetabLitter = nsurf - f.NSurfStructLitter
	f.NSoilMetabLitter = nsoil - f.NSoilStructLitter
}

// nTransfers computes the N moved with each of the day's carbon
// transfers, weighting each structural outflow by the inverse of its
// carbon split so the N leaves at the source pool's N:C ratio.
func (d *GDAY) nTransfers(tr *SOMTransfer) nTransfer {
	p, s := d.Params, d.State
	var nt nTransfer

	ligShoot, ligRoot := p.LigShoot, p.LigRoot

	sigwt := s.StructSurfN * tr.DecayRate[iStructSurf] /
		(ligShoot*0.7 + (1.0-ligShoot)*0.55)
	nt.surfStructToSlow = sigwt * ligShoot * 0.7
	nt.surfStructToActive = sigwt * (1.0 - ligShoot) * 0.55

	sigwt = s.StructSoilN * tr.DecayRate[iStructSoil] /
		(ligRoot*0.7 + (1.0-ligRoot)*0.45)
	nt.soilStructToSlow = sigwt * ligRoot * 0.7
	nt.soilStructToActive = sigwt * (1.0 - ligRoot) * 0.45

	nt.surfMetabToActive = s.MetabSurfN * tr.DecayRate[iMetabSurf]
	nt.soilMetabToActive = s.MetabSoilN * tr.DecayRate[iMetabSoil]

	ft := p.Ft()
	sigwt = s.ActiveSoilN * tr.DecayRate[iActive] / (1.0 - ft)
	nt.activeToSlow = sigwt * (1.0 - ft - 0.004)
	nt.activeToPassive = sigwt * 0.004

	sigwt = s.SlowSoilN * tr.DecayRate[iSlow] / 0.45
	nt.slowToActive = sigwt * 0.42
	nt.slowToPassive = sigwt * 0.03

	nt.passiveToActive = s.PassiveSoilN * tr.DecayRate[iPassive]

	nt.intoActive = nt.surfStructToActive + nt.soilStructToActive +
		nt.surfMetabToActive + nt.soilMetabToActive +
		nt.slowToActive + nt.passiveToActive
	nt.intoSlow = nt.surfStructToSlow + nt.soilStructToSlow + nt.activeToSlow
	nt.intoPassive = nt.activeToPassive + nt.slowToPassive

	return nt
}

// nGrossMineralisation is the total organic N turned over by
// decomposition, the process by which microbes convert organic N to
// plant available mineral forms.
func nGrossMineralisation(nt *nTransfer) float64 {
	return nt.intoActive + nt.intoSlow + nt.intoPassive
}

// nImmobilisation is the N locked into new SOM, the reverse of
// mineralisation. The N:C ratio of new SOM rises linearly with the
// mineral N pool between each pool's prescribed band, so the
// immobilised amount is the lesser of the demand at the
// mineral-N-dependent ratio and the demand at the maximum ratio.
func (d *GDAY) nImmobilisation(tr *SOMTransfer) float64 {
	p, s := d.Params, d.State

	s.ActNCSlope = p.ncSlope(p.ActNCMax, p.ActNCMin)
	s.SlowNCSlope = p.ncSlope(p.SlowNCMax, p.SlowNCMin)
	s.PassNCSlope = p.ncSlope(p.PassNCMax, p.PassNCMin)

	intoPassive := tr.ActiveToPassive + tr.SlowToPassive
	intoSlow := tr.SurfStructToSlow + tr.SoilStructToSlow + tr.ActiveToSlow
	intoActive := tr.SurfStructToActive + tr.SoilStructToActive +
		tr.SurfMetabToActive + tr.SoilMetabToActive +
		tr.SlowToActive + tr.PassiveToActive

	nmin := p.NMin0 * gM2ToTonnesHa
	numer1 := intoPassive*(p.PassNCMin-s.PassNCSlope*nmin) +
		intoSlow*(p.SlowNCMin-s.SlowNCSlope*nmin) +
		intoActive*(p.ActNCMin-s.ActNCSlope*nmin)

	numer2 := intoPassive*p.PassNCMax + intoSlow*p.SlowNCMax +
		intoActive*p.ActNCMax

	denom := intoPassive*s.PassNCSlope + intoSlow*s.SlowNCSlope +
		intoActive*s.ActNCSlope

	return minf(numer1+denom*s.InorgN, numer2)
}

// ncSlope is the slope of a SOM pool's new N:C ratio against the
// mineral N pool.
func (p *Params) ncSlope(ncMax, ncMin float64) float64 {
	return (ncMax - ncMin) / ((p.NMinCrit - p.NMin0) * gM2ToTonnesHa)
}

// updateNPools applies the day's N inputs, transfers and band
// corrections to the litter, SOM and mineral N pools.
func (d *GDAY) updateNPools(tr *SOMTransfer, nt *nTransfer) {
	p, s, f := d.Params, d.State, d.Fluxes

	// The litter pools only fix or release mineral N at their limiting
	// N:C values; each correction accumulates in NLittRelease.
	f.NLittRelease = 0.0

	s.StructSurfN += f.NSurfStructLitter -
		(nt.surfStructToSlow + nt.surfStructToActive)
	if !p.StrFloat {
		s.StructSurfN += d.nclimit(s.StructSurf, s.StructSurfN,
			1.0/p.StructCN, 1.0/p.StructCN)
	}

	s.StructSoilN += f.NSoilStructLitter -
		(nt.soilStructToSlow + nt.soilStructToActive)
	if !p.StrFloat {
		s.StructSoilN += d.nclimit(s.StructSoil, s.StructSoilN,
			1.0/p.StructCN, 1.0/p.StructCN)
	}

	s.MetabSurfN += f.NSurfMetabLitter - nt.surfMetabToActive
	s.MetabSurfN += d.nclimit(s.MetabSurf, s.MetabSurfN, 1.0/25.0, 1.0/10.0)

	s.MetabSoilN += f.NSoilMetabLitter - nt.soilMetabToActive
	s.MetabSoilN += d.nclimit(s.MetabSoil, s.MetabSoilN, 1.0/25.0, 1.0/10.0)

	// The N:C of new SOM increases linearly between the prescribed band
	// as the mineral N pool rises above nmin0; demand beyond the band
	// ceiling stays mineral.
	arg := s.InorgN - p.NMin0*gM2ToTonnesHa

	actNC := minf(p.ActNCMin+s.ActNCSlope*arg, p.ActNCMax)
	fixN := ncflux(tr.CIntoActive, nt.intoActive, actNC)
	s.ActiveSoilN += nt.intoActive + fixN -
		(nt.activeToSlow + nt.activeToPassive)

	slowNC := minf(p.SlowNCMin+s.SlowNCSlope*arg, p.SlowNCMax)
	fixN = ncflux(tr.CIntoSlow, nt.intoSlow, slowNC)
	s.SlowSoilN += nt.intoSlow + fixN -
		(nt.slowToActive + nt.slowToPassive)

	passNC := minf(p.PassNCMin+s.PassNCSlope*arg, p.PassNCMax)
	fixN = ncflux(tr.CIntoPassive, nt.intoPassive, passNC)
	s.PassiveSoilN += nt.intoPassive + fixN - nt.passiveToActive

	// Daily increment of the mineral N pool, the difference between in
	// and effluxes; grazer urine N goes directly to the mineral pool.
	// May be unstable if the uptake rate is large.
	s.InorgN += f.NGross + f.NInflow + f.NUrine + f.NLittRelease -
		(f.NImmob + f.NLoss + f.NUptake)

	d.precisionControlN()
}

// nclimit releases N to the mineral pool, or fixes N from it, to keep a
// litter pool's N:C ratio within [ncmin, ncmax]. The correction is
// recorded in NLittRelease.
func (d *GDAY) nclimit(cpool, npool, ncmin, ncmax float64) float64 {
	nmax := cpool * ncmax
	nmin := cpool * ncmin
	if npool > nmax {
		rel := npool - nmax
		d.Fluxes.NLittRelease += rel
		return -rel
	}
	if npool < nmin {
		fix := nmin - npool
		d.Fluxes.NLittRelease -= fix
		return fix
	}
	return 0.0
}

// precisionControlN forces near-zero metabolic N pools to exactly zero,
// moving the residual to the active pool where the pools' outflow goes.
func (d *GDAY) precisionControlN() {
	s := d.State
	if s.MetabSurfN < precisionTolerance {
		s.ActiveSoilN += s.MetabSurfN
		s.MetabSurfN = 0.0
	}
	if s.MetabSoilN < precisionTolerance {
		s.ActiveSoilN += s.MetabSoilN
		s.MetabSoilN = 0.0
	}
}

// ncflux returns the N fixed from (positive) or released to (negative)
// the mineral pool to bring a carbon flux's accompanying N to the
// target N:C ratio.
func ncflux(cflux, nflux, ncRatio float64) float64 {
	return cflux*ncRatio - nflux
}
