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

// PlantGrowth returns a function that evolves the plant state for one
// day: photosynthesis, the water balance, C and N allocation through
// the five organs and the pool updates. N is allocated to the woody
// components at fixed ratios first; when that demand exceeds the N
// available, NPP is marked down and the carbon side recomputed, and
// the water balance is re-run because transpiration demand follows
// GPP.
func PlantGrowth() DomainManipulator {
	return func(d *GDAY) error {
		p, s, f := d.Params, d.State, d.Fluxes

		if err := d.carbonProduction(); err != nil {
			return err
		}

		pawaterTsoil0, pawaterRoot0 := s.PawaterTsoil, s.PawaterRoot
		d.waterBalance(pawaterTsoil0, pawaterRoot0)

		// Leaf N:C as a fraction of the maximum N:C of foliage in a
		// young stand.
		nitfac := minf(1.0, s.ShootNC/p.NcMaxFYoung)

		if err := d.carbonAllocationFracs(nitfac); err != nil {
			return err
		}

		ncbnew, nccnew, ncwimm, ncwnew := d.ncWoodRatios(nitfac)
		markedDown, err := d.nitrogenAllocation(ncbnew, nccnew, ncwimm, ncwnew)
		if err != nil {
			return err
		}

		d.carbonAllocation(nitfac)
		d.updatePlantState()
		d.precisionControlPlant()

		if markedDown {
			d.waterBalance(pawaterTsoil0, pawaterRoot0)
		}

		if p.Deciduous {
			// Fill the stores spent at the next leaf out.
			s.CStore += f.NPP
			s.NStore += f.NUptake + f.Retrans
			s.ANPP += f.NPP
		}
		return nil
	}
}

// ncWoodRatios estimates the N:C ratio of new branch, coarse root and
// stem tissue. The stem ratios either interpolate between fixed end
// members or follow foliar N:C after Jeffreys (1999), who showed the
// N:C of new wood increases linearly with it.
func (d *GDAY) ncWoodRatios(nitfac float64) (ncbnew, nccnew, ncwimm, ncwnew float64) {
	p, s := d.Params, d.State

	ncbnew = p.NcbNew + nitfac*(p.NcbNew-p.NcbNewZ)
	s.BranchNC = ncbnew

	nccnew = p.NccNew + nitfac*(p.NccNew-p.NccNewZ)

	if p.FixedStemNC {
		ncwimm = p.NcwImm + nitfac*(p.NcwImm-p.NcwImmZ)
		ncwnew = p.NcwNew + nitfac*(p.NcwNew-p.NcwNewZ)
	} else {
		ncwimm = maxf(0.0, (0.0282*s.ShootNC+0.000234)*p.Fhw)
		ncwnew = maxf(0.0, 0.162*s.ShootNC-0.00143)
	}
	return ncbnew, nccnew, ncwimm, ncwnew
}

// carbonAllocationFracs sets the five allocation fractions. In FIXED
// mode each organ interpolates between its zero-N and N-replete end
// members; in ALLOMETRIC mode foliage, branch and coarse root
// goal-seek toward structural targets and fine root allocation follows
// the running water/N limitation (McMurtrie et al. 2000). Stem takes
// the residual; the fractions must sum to exactly one.
func (d *GDAY) carbonAllocationFracs(nitfac float64) error {
	p, s := d.Params, d.State

	switch p.Alloc {
	case AllocFixed:
		s.AlLeaf = p.CAllocF + nitfac*(p.CAllocF-p.CAllocFz)
		s.AlRoot = p.CAllocR + nitfac*(p.CAllocR-p.CAllocRz)
		s.AlCroot = p.CAllocCR + nitfac*(p.CAllocCR-p.CAllocCRz)
		s.AlBranch = p.CAllocB + nitfac*(p.CAllocB-p.CAllocBz)

	case AllocAllometric:
		// Leaf N availability.
		var nlim float64
		switch nf := s.ShootNC; {
		case nf <= p.NfMin:
			nlim = 0.0
		case nf >= p.NfMax:
			nlim = 1.0
		default:
			nlim = (p.NfMax - nf) / (p.NfMax - p.NfMin)
		}

		// Fine root allocation responds to the minimum of the water
		// and N limitation, smoothed over roughly a root lifespan.
		if d.rootAllocSMA == nil {
			window := int(math.Floor(daysInYr))
			if p.Rdecay > 0 {
				window = int(1.0 / p.Rdecay)
			}
			d.rootAllocSMA = newMovingAverage(window)
		}
		d.rootAllocSMA.add(minf(nlim, s.WtfacRoot))
		limitation := 1.0
		if d.rootAllocSMA.full() {
			limitation = d.rootAllocSMA.mean()
		}
		s.AlRoot = p.ArMax * p.ArMin /
			(p.ArMin + (p.ArMax-p.ArMin)*limitation)

		// Tree height from the stem mass power function
		// (Causton, 1985).
		height := p.Heighto * math.Pow(s.Stem, p.HtPower)

		// LAI to sapwood cross-sectional area; the target varies with
		// height because the leaf-to-sapwood ratio is not constant
		// above a certain height (hydraulic constraint on pipe
		// theory). A stand with no stem or no sapwood has no foliage
		// target, so leaf allocation goal-seeks to zero.
		var leaf2sap, leaf2sapTarget float64
		if height > 0.0 && s.Sapwood > 0.0 {
			sapCrossSecArea := s.Sapwood * tonnesAsKg * m2AsHa /
				p.Cfracts / height / p.Density
			leaf2sap = s.LAI / sapCrossSecArea

			leaf2sapTarget = p.LeafSap0 + (p.LeafSap1-p.LeafSap0)*
				(height-p.Height0)/(p.Height1-p.Height0)
			leaf2sapTarget = clamp(leaf2sapTarget,
				minf(p.LeafSap0, p.LeafSap1), maxf(p.LeafSap0, p.LeafSap1))
		}
		s.AlLeaf = allocGoalSeek(leaf2sap, leaf2sapTarget, p.AfMax, p.TargSens)

		s.AlBranch = allocGoalSeek(s.Branch,
			p.Branch0*math.Pow(s.Stem, p.Branch1), p.AbMax, p.TargSens)

		s.AlCroot = allocGoalSeek(s.Croot,
			p.Croot0*math.Pow(s.Stem, p.Croot1), p.AcrMax, p.TargSens)

	default:
		return fmt.Errorf("unknown C allocation model %v", p.Alloc)
	}

	// Stem takes the remainder.
	s.AlStem = 1.0 - s.AlLeaf - s.AlRoot - s.AlCroot - s.AlBranch

	// Negated comparisons so a NaN fraction also trips the check.
	total := s.AlLeaf + s.AlRoot + s.AlCroot + s.AlBranch + s.AlStem
	if !(total <= 1.0+1e-9) || !(s.AlStem >= 0.0) {
		return fmt.Errorf("allocation fractions sum to %g > 1 "+
			"(leaf %g root %g croot %g branch %g stem %g)",
			total, s.AlLeaf, s.AlRoot, s.AlCroot, s.AlBranch, s.AlStem)
	}
	return nil
}

// allocGoalSeek nudges an allocation fraction toward the value that
// would close the gap between a simulated quantity and its structural
// target, a damped proportional control.
func allocGoalSeek(simulated, target, allocMax, sens float64) float64 {
	if target == 0.0 {
		return 0.0
	}
	frac := 0.5 + 0.5*(1.0-simulated/target)/sens
	return maxf(0.0, allocMax*minf(1.0, frac))
}

// nitrogenAllocation distributes the day's available N: wood and
// branch first at their target N:C ratios, the surplus to foliage and
// fine roots at flexible ratios. When the fixed-ratio demand exceeds
// supply and leaf N:C is free to vary, NPP is scaled back by
// available/demand, GPP and autotrophic respiration are recomputed
// through the constant carbon use efficiency, and the caller is told
// to re-run the water balance.
func (d *GDAY) nitrogenAllocation(ncbnew, nccnew, ncwimm, ncwnew float64) (markedDown bool, err error) {
	p, s, f := d.Params, d.State, d.Fluxes

	f.Retrans = d.nitrogenRetrans()
	if f.NUptake, err = d.nUptake(); err != nil {
		return false, err
	}

	if p.ModelOptRoot {
		if err := d.optRootUptake(); err != nil {
			return false, err
		}
	}

	// Mineral N lost from the system by volatilisation and leaching.
	f.NLoss = p.RateLoss * s.InorgN

	ntot := f.NUptake + f.Retrans

	if p.Deciduous {
		gd := d.growingDays[d.Doy]
		f.NpStemImm = d.wnImRate * gd
		f.NpStemMob = d.wnMobRate * gd
		f.NpBranch = d.bnRate * gd
		f.NpCroot = d.cnRate * gd
		f.NpLeaf = d.lnRate * gd
		f.NpRoot = s.NToAllocRoot / daysInYr
		return false, nil
	}

	f.NpStemImm = f.NPP * s.AlStem * ncwimm
	f.NpStemMob = f.NPP * s.AlStem * (ncwnew - ncwimm)
	f.NpBranch = f.NPP * s.AlBranch * ncbnew
	f.NpCroot = f.NPP * s.AlCroot * nccnew

	demand := f.NpStemImm + f.NpStemMob + f.NpBranch + f.NpCroot
	if demand > ntot && !p.FixLeafNC {
		f.NPP *= ntot / demand
		f.GPP = f.NPP / p.CUE
		f.AutoResp = f.GPP - f.NPP
		f.NpStemImm = f.NPP * s.AlStem * ncwimm
		f.NpStemMob = f.NPP * s.AlStem * (ncwnew - ncwimm)
		f.NpBranch = f.NPP * s.AlBranch * ncbnew
		f.NpCroot = f.NPP * s.AlCroot * nccnew
		markedDown = true
	}

	ntot -= f.NpStemImm + f.NpStemMob + f.NpBranch + f.NpCroot

	// Remaining N to the flexible-ratio pools.
	denom := s.AlLeaf + s.AlRoot*p.NcrFac
	if denom > 0.0 {
		f.NpLeaf = ntot * s.AlLeaf / denom
	} else {
		f.NpLeaf = 0.0
	}
	f.NpRoot = ntot - f.NpLeaf
	return markedDown, nil
}

// nitrogenRetrans is the N retranslocated from dying tissue and stored
// within the plant, plus a constant drain on the mobile stem pool.
func (d *GDAY) nitrogenRetrans() float64 {
	p, s := d.Params, d.State
	return p.Fretrans*d.leafFallN +
		p.Rretrans*d.rdecay*s.RootN +
		p.Crretrans*p.Crdecay*s.CrootN +
		p.Bretrans*p.Bdecay*s.BranchN +
		p.Wretrans*p.Wdecay*s.StemNMob +
		p.RetransMob*s.StemNMob
}

// nUptake computes plant N uptake from the mineral pool under the
// configured uptake model.
func (d *GDAY) nUptake() (float64, error) {
	p, s := d.Params, d.State
	switch p.NUptake {
	case NUptakeConstant:
		return p.NUptakeZ, nil
	case NUptakeProportional:
		return p.RateUptake * s.InorgN, nil
	case NUptakeSaturating:
		// Uptake depends on the rate at which mineral N is made
		// available and the root C at which half of it is taken up
		// (Dewar and McMurtrie, 1996).
		return maxf(0.0, p.Uo*s.InorgN*s.Root/(s.Root+p.Kr)), nil
	case NUptakeSaturatingMoist:
		base := maxf(0.0, p.Uo*s.InorgN*s.Root/(s.Root+p.Kr))
		tmod := minf(1.0, soilTempFactor(d.Met.Tsoil[d.Day])/soilTempFactor(20.0))
		return base * s.WtfacTsoil * tmod, nil
	}
	return 0, fmt.Errorf("unknown N uptake model %v", p.NUptake)
}

// optRootUptake replaces the configured uptake with the optimal
// rooting depth solution and recomputes the fine root litter flux from
// the root mass above the model soil depth.
func (d *GDAY) optRootUptake() error {
	p, s, f := d.Params, d.State, d.Fluxes

	rm := &RootingDepthModel{D0: p.D0x, R0: p.R0, TopSoilDepth: p.TopSoilDepth}

	// t N ha-1 day-1 -> g N m-2 yr-1 and t C ha-1 -> kg DM m-2.
	nsupply := f.NUptake * tonnesHaToGM2 * daysInYr
	rtot := s.Root * tonnesHaToKgM2 / p.Cfracts

	rootDepth, nuptake, rabove, err := rm.Uptake(rtot, nsupply, 1.0)
	if err != nil {
		return err
	}

	s.RootDepth = rootDepth
	f.NUptake = nuptake * gM2ToTonnesHa / daysInYr

	// Mortality below the model soil depth is ignored.
	f.DeadRoots = d.rdecay * rabove * p.Cfracts * kgM2ToTonnesHa
	f.DeadRootN = s.RootNC * (1.0 - p.Rretrans) * f.DeadRoots
	return nil
}

// carbonAllocation distributes NPP (or, for a deciduous stand, the
// stored C spent over the growing season) through the plant, refreshes
// the SLA of new foliage (Sands and Landsberg, 2002) and updates leaf
// area.
func (d *GDAY) carbonAllocation(nitfac float64) {
	p, s, f := d.Params, d.State, d.Fluxes

	if p.Deciduous {
		gd := d.growingDays[d.Doy]
		f.CpLeaf = d.lRate * gd
		f.CpBranch = d.bRate * gd
		f.CpStem = d.wRate * gd
		f.CpCroot = d.cRate * gd
		f.CpRoot = s.CToAllocRoot / daysInYr
	} else {
		f.CpLeaf = f.NPP * s.AlLeaf
		f.CpRoot = f.NPP * s.AlRoot
		f.CpCroot = f.NPP * s.AlCroot
		f.CpBranch = f.NPP * s.AlBranch
		f.CpStem = f.NPP * s.AlStem
	}

	if p.Grazing {
		f.CEaten = f.CpLeaf * p.FractEaten
		f.NEaten = f.NpLeaf * p.FractEaten
	}

	// SLA of new foliage is linearly related to leaf N:C via nitfac
	// (Corbeels et al. 2005).
	s.SLA = p.SLAZero + nitfac*(p.SLAMax-p.SLAZero)

	conv := s.SLA * m2AsHa / (kgAsTonnes * p.Cfracts)
	switch {
	case p.Deciduous && s.Shoot == 0.0:
		s.LAI = 0.0
	case p.Deciduous && d.leafOutDays[d.Doy] == 0.0:
		s.LAI = 0.0
	case s.Shoot > 0.0:
		s.LAI += f.CpLeaf*conv -
			(f.DeadLeaves+f.CEaten)*s.LAI/s.Shoot
	}
}

// updatePlantState applies the day's production, litterfall and
// grazing to the plant pools, then enforces the age-dependent maximum
// N:C of foliage and fine roots for an evergreen stand by handing the
// surplus back to the mineral pool through reduced uptake.
func (d *GDAY) updatePlantState() {
	p, s, f := d.Params, d.State, d.Fluxes

	s.Shoot += f.CpLeaf - f.DeadLeaves - f.CEaten
	s.Root += f.CpRoot - f.DeadRoots
	s.Croot += f.CpCroot - f.DeadCroots
	s.Branch += f.CpBranch - f.DeadBranch
	s.Stem += f.CpStem - f.DeadStems
	s.Sapwood += f.CpStem - f.DeadSapwood

	s.ShootN += f.NpLeaf - d.leafFallN - f.NEaten
	s.RootN += f.NpRoot - d.rdecay*s.RootN
	s.CrootN += f.NpCroot - p.Crdecay*s.CrootN
	s.BranchN += f.NpBranch - p.Bdecay*s.BranchN
	s.StemNImm += f.NpStemImm - p.Wdecay*s.StemNImm
	s.StemNMob += f.NpStemMob - p.Wdecay*s.StemNMob -
		p.RetransMob*s.StemNMob
	s.StemN = s.StemNImm + s.StemNMob

	// The ceiling makes no sense for the deciduous model: store-driven
	// allocation cannot hand out more N than the store holds.
	if !p.Deciduous {
		d.enforceMaxNC()
	}
}

// enforceMaxNC cuts N uptake back when foliage or fine root N:C
// exceeds its maximum. The foliage ceiling declines with stand age
// between AgeYoung and AgeOld; setting NcMaxFYoung equal to NcMaxFOld
// switches the age effect off.
func (d *GDAY) enforceMaxNC() {
	p, s, f := d.Params, d.State, d.Fluxes

	ageEffect := (s.Age - p.AgeYoung) / (p.AgeOld - p.AgeYoung)
	ncmaxf := p.NcMaxFYoung - (p.NcMaxFYoung-p.NcMaxFOld)*ageEffect
	ncmaxf = clamp(ncmaxf, p.NcMaxFOld, p.NcMaxFYoung)

	extras := 0.0
	if s.LAI > 0.0 && s.ShootN > s.Shoot*ncmaxf {
		extras = s.ShootN - s.Shoot*ncmaxf
		// Uptake cannot be reduced below zero.
		extras = minf(extras, f.NUptake)
		s.ShootN -= extras
		f.NUptake -= extras
	}

	// Root ceiling is tied to the leaf ceiling.
	ncmaxr := ncmaxf * p.NcrFac
	if s.RootN > s.Root*ncmaxr {
		extrar := s.RootN - s.Root*ncmaxr
		if extras+extrar > f.NUptake {
			extrar = f.NUptake - extras
		}
		s.RootN -= extrar
		f.NUptake -= extrar
	}
}

// precisionControlPlant forces near-zero plant pools to exactly zero,
// routing the residual C and N through the day's litter fluxes so the
// cascade still conserves mass.
func (d *GDAY) precisionControlPlant() {
	s, f := d.State, d.Fluxes

	if s.Shoot < precisionTolerance {
		f.DeadLeaves += s.Shoot
		f.DeadLeafN += s.ShootN
		s.Shoot = 0.0
		s.ShootN = 0.0
		s.LAI = 0.0
	}
	if s.Branch < precisionTolerance {
		f.DeadBranch += s.Branch
		f.DeadBranchN += s.BranchN
		s.Branch = 0.0
		s.BranchN = 0.0
	}
	if s.Root < precisionTolerance {
		f.DeadRoots += s.Root
		f.DeadRootN += s.RootN
		s.Root = 0.0
		s.RootN = 0.0
	}
	if s.Croot < precisionTolerance {
		f.DeadCroots += s.Croot
		f.DeadCrootN += s.CrootN
		s.Croot = 0.0
		s.CrootN = 0.0
	}
	if s.Stem < precisionTolerance {
		f.DeadStems += s.Stem
		f.DeadStemN += s.StemN
		s.Stem = 0.0
		s.StemNImm = 0.0
		s.StemNMob = 0.0
		s.StemN = 0.0
	}
}

// movingAverage is a fixed-window simple moving average.
type movingAverage struct {
	vals []float64
	n    int
	next int
	sum  float64
}

func newMovingAverage(window int) *movingAverage {
	if window < 1 {
		window = 1
	}
	return &movingAverage{vals: make([]float64, window)}
}

func (m *movingAverage) add(v float64) {
	m.sum += v - m.vals[m.next]
	m.vals[m.next] = v
	m.next = (m.next + 1) % len(m.vals)
	if m.n < len(m.vals) {
		m.n++
	}
}

func (m *movingAverage) full() bool { return m.n == len(m.vals) }

func (m *movingAverage) mean() float64 {
	if m.n == 0 {
		return 0.0
	}
	return m.sum / float64(m.n)
}
