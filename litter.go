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

// Litterfall returns a function that computes the day's litter C and N
// production from each plant pool. The foliage and fine root turnover
// rates speed up in dry soil; the woody rates are constant. Litter N
// is reduced by each tissue's retranslocation fraction before it
// leaves the plant.
func Litterfall() DomainManipulator {
	return func(d *GDAY) error {
		p, s, f := d.Params, d.State, d.Fluxes

		d.fdecay = decayInDrySoils(p.Fdecay, p.FdecayDry, p, s.WtfacTsoil)
		d.rdecay = decayInDrySoils(p.Rdecay, p.RdecayDry, p, s.WtfacTsoil)

		if d.Params.Deciduous {
			d.deciduousLeafFall()
		} else {
			f.DeadLeaves = d.fdecay * s.Shoot
			d.leafFallN = d.fdecay * s.ShootN
			f.DeadLeafN = d.leafFallN * (1.0 - p.Fretrans)
		}

		f.DeadRoots = d.rdecay * s.Root
		f.DeadRootN = d.rdecay * s.RootN * (1.0 - p.Rretrans)

		f.DeadCroots = p.Crdecay * s.Croot
		f.DeadCrootN = p.Crdecay * s.CrootN * (1.0 - p.Crretrans)

		f.DeadBranch = p.Bdecay * s.Branch
		f.DeadBranchN = p.Bdecay * s.BranchN * (1.0 - p.Bretrans)

		f.DeadStems = p.Wdecay * s.Stem
		f.DeadStemN = p.Wdecay*s.StemNImm +
			p.Wdecay*s.StemNMob*(1.0-p.Wretrans)

		f.DeadSapwood = maxf(p.Wdecay, p.Sapdecay) * s.Sapwood
		return nil
	}
}

// decayInDrySoils interpolates a turnover rate between its base (wet)
// and dry-soil values as the soil moisture factor falls through the
// [WatDecayDry, WatDecayWet] band.
func decayInDrySoils(decay, decayDry float64, p *Params, wtfac float64) float64 {
	if wtfac >= p.WatDecayWet {
		return decay
	}
	if wtfac <= p.WatDecayDry {
		return decayDry
	}
	return decayDry - (decayDry-decay)*
		(wtfac-p.WatDecayDry)/(p.WatDecayWet-p.WatDecayDry)
}

// deciduousLeafFall drops the canopy linearly over the leaf-fall window
// so that the foliage pool is empty when the window closes.
func (d *GDAY) deciduousLeafFall() {
	p, s, f := d.Params, d.State, d.Fluxes

	f.DeadLeaves = 0.0
	f.DeadLeafN = 0.0
	d.leafFallN = 0.0

	fallEnd := p.SenescenceDoy + int(p.StoreTransferLen)
	if d.Doy < p.SenescenceDoy || d.Doy >= fallEnd {
		return
	}
	daysLeft := float64(fallEnd - d.Doy)
	f.DeadLeaves = s.Shoot / daysLeft
	d.leafFallN = s.ShootN / daysLeft
	f.DeadLeafN = d.leafFallN * (1.0 - p.Fretrans)
}
