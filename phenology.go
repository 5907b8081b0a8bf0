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

// Phenology returns a function that, for a deciduous stand at the
// start of each year, lays out the leaf-out and growing windows and
// converts the C and N stored over the previous year into the daily
// spending rates the allocator draws on through the growing season.
// Evergreen stands ignore it.
func Phenology() DomainManipulator {
	return func(d *GDAY) error {
		if !d.Params.Deciduous || d.Doy != 0 {
			return nil
		}
		return d.annualPhenology()
	}
}

func (d *GDAY) annualPhenology() error {
	p, s := d.Params, d.State

	growLen := int(p.StoreTransferLen)
	growEnd := p.BudBreakDoy + growLen
	fallEnd := p.SenescenceDoy + growLen

	d.growingDays = make([]float64, d.daysInYear)
	d.leafOutDays = make([]float64, d.daysInYear)
	for doy := 0; doy < d.daysInYear; doy++ {
		if doy >= p.BudBreakDoy && doy < growEnd {
			d.growingDays[doy] = 1.0
		}
		if doy >= p.BudBreakDoy && doy < fallEnd {
			d.leafOutDays[doy] = 1.0
		}
	}

	// Allocation fractions for spending the store follow the same
	// rules as daily evergreen allocation.
	nitfac := minf(1.0, s.ShootNC/p.NcMaxFYoung)
	if err := d.carbonAllocationFracs(nitfac); err != nil {
		return err
	}

	// Carbon: fixed fractions of the store.
	s.CToAllocShoot = s.AlLeaf * s.CStore
	s.CToAllocRoot = s.AlRoot * s.CStore
	s.CToAllocCroot = s.AlCroot * s.CStore
	s.CToAllocBranch = s.AlBranch * s.CStore
	s.CToAllocStem = s.AlStem * s.CStore

	// Nitrogen: woody components at their target N:C ratios first,
	// then the remainder to the flexible-ratio pools.
	nToStemImm := s.CStore * s.AlStem * p.NcwImm
	nToStemMob := s.CStore * s.AlStem * (p.NcwNew - p.NcwImm)
	nToBranch := s.CStore * s.AlBranch * p.NcbNew
	nToCroot := s.CStore * s.AlCroot * p.NccNew

	ntot := s.NStore - nToStemImm - nToStemMob - nToBranch - nToCroot
	denom := s.AlLeaf + s.AlRoot*p.NcrFac
	if denom > 0.0 {
		s.NToAllocShoot = ntot * s.AlLeaf / denom
	} else {
		s.NToAllocShoot = 0.0
	}
	s.NToAllocRoot = ntot - s.NToAllocShoot

	// Spread over the growing window.
	gl := float64(growLen)
	d.lRate = s.CToAllocShoot / gl
	d.bRate = s.CToAllocBranch / gl
	d.wRate = s.CToAllocStem / gl
	d.cRate = s.CToAllocCroot / gl
	d.lnRate = s.NToAllocShoot / gl
	d.bnRate = nToBranch / gl
	d.cnRate = nToCroot / gl
	d.wnImRate = nToStemImm / gl
	d.wnMobRate = nToStemMob / gl

	// The stores refill as the new year's NPP and uptake come in.
	s.CStore = 0.0
	s.NStore = 0.0
	s.ANPP = 0.0
	return nil
}
