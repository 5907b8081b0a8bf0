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
	"reflect"

	"gonum.org/v1/gonum/floats"
)

// Unit conversions. All pool masses are in tonnes of C or N per hectare.
const (
	daysInYr     = 365.25
	gM2ToTonnesHa = 0.01   // g m-2 -> t ha-1
	m2AsHa        = 0.0001 // m2 -> ha
	kgAsTonnes    = 0.001
	kgAsG         = 1000.0
	tonnesAsKg    = 1000.0
	tonnesHaToGM2 = 100.0
	tonnesHaToKgM2 = 0.1
	kgM2ToTonnesHa = 10.0
)

// pool indices into decay rate and CO2 arrays.
const (
	iStructSurf = iota // surface structural litter
	iMetabSurf         // surface metabolic litter
	iStructSoil        // soil structural litter
	iMetabSoil         // soil metabolic litter
	iActive            // active SOM
	iSlow              // slow SOM
	iPassive           // passive SOM
	nSoilPools
)

// State holds every model pool plus derived quantities. Mass pools are
// non-negative at the end of every day; precision control drives
// near-zero pools to exactly zero.
type State struct {
	// Plant carbon pools.
	Shoot   float64 `desc:"Foliage carbon" units:"t/ha"`
	Root    float64 `desc:"Fine root carbon" units:"t/ha"`
	Croot   float64 `desc:"Coarse root carbon" units:"t/ha"`
	Branch  float64 `desc:"Branch carbon" units:"t/ha"`
	Stem    float64 `desc:"Stem carbon" units:"t/ha"`
	Sapwood float64 `desc:"Sapwood carbon" units:"t/ha"`

	// Plant nitrogen pools. Stem N is split into an immobile structural
	// fraction, fixed once laid down, and a retranslocatable mobile
	// fraction.
	ShootN   float64 `desc:"Foliage nitrogen" units:"t/ha"`
	RootN    float64 `desc:"Fine root nitrogen" units:"t/ha"`
	CrootN   float64 `desc:"Coarse root nitrogen" units:"t/ha"`
	BranchN  float64 `desc:"Branch nitrogen" units:"t/ha"`
	StemNImm float64 `desc:"Immobile stem nitrogen" units:"t/ha"`
	StemNMob float64 `desc:"Mobile stem nitrogen" units:"t/ha"`
	StemN    float64 `desc:"Total stem nitrogen" units:"t/ha"`

	// Litter pools.
	StructSurf  float64 `desc:"Surface structural litter carbon" units:"t/ha"`
	MetabSurf   float64 `desc:"Surface metabolic litter carbon" units:"t/ha"`
	StructSoil  float64 `desc:"Soil structural litter carbon" units:"t/ha"`
	MetabSoil   float64 `desc:"Soil metabolic litter carbon" units:"t/ha"`
	StructSurfN float64 `desc:"Surface structural litter nitrogen" units:"t/ha"`
	MetabSurfN  float64 `desc:"Surface metabolic litter nitrogen" units:"t/ha"`
	StructSoilN float64 `desc:"Soil structural litter nitrogen" units:"t/ha"`
	MetabSoilN  float64 `desc:"Soil metabolic litter nitrogen" units:"t/ha"`

	// Soil organic matter pools.
	ActiveSoil   float64 `desc:"Active SOM carbon" units:"t/ha"`
	SlowSoil     float64 `desc:"Slow SOM carbon" units:"t/ha"`
	PassiveSoil  float64 `desc:"Passive SOM carbon" units:"t/ha"`
	ActiveSoilN  float64 `desc:"Active SOM nitrogen" units:"t/ha"`
	SlowSoilN    float64 `desc:"Slow SOM nitrogen" units:"t/ha"`
	PassiveSoilN float64 `desc:"Passive SOM nitrogen" units:"t/ha"`

	InorgN float64 `desc:"Plant-available mineral nitrogen" units:"t/ha"`

	// Canopy and derived state.
	LAI               float64 `desc:"Leaf area index" units:"m2/m2"`
	SLA               float64 `desc:"Specific leaf area" units:"m2/kg DW"`
	NContent          float64 `desc:"Canopy nitrogen content" units:"g/m2"`
	LightInterception float64 `desc:"Fraction of radiation intercepted" units:"-"`
	ShootNC           float64 `desc:"Foliage N:C ratio" units:"-"`
	RootNC            float64 `desc:"Fine root N:C ratio" units:"-"`
	BranchNC          float64 `desc:"Branch N:C ratio" units:"-"`
	Age               float64 `desc:"Stand age" units:"yr"`
	RootDepth         float64 `desc:"Rooting depth" units:"m"`

	// Soil water state.
	PawaterTsoil float64 `desc:"Plant-available water, topsoil" units:"mm"`
	PawaterRoot  float64 `desc:"Plant-available water, root zone" units:"mm"`
	WtfacTsoil   float64 `desc:"Topsoil moisture availability factor" units:"-"`
	WtfacRoot    float64 `desc:"Root zone moisture availability factor" units:"-"`

	// Carbon allocation fractions; their sum is exactly 1.
	AlLeaf   float64 `desc:"Allocation fraction, foliage" units:"-"`
	AlRoot   float64 `desc:"Allocation fraction, fine root" units:"-"`
	AlCroot  float64 `desc:"Allocation fraction, coarse root" units:"-"`
	AlBranch float64 `desc:"Allocation fraction, branch" units:"-"`
	AlStem   float64 `desc:"Allocation fraction, stem" units:"-"`

	// N:C slopes of new SOM vs the mineral N pool.
	ActNCSlope  float64 `desc:"Active SOM N:C slope" units:"1/(t/ha)"`
	SlowNCSlope float64 `desc:"Slow SOM N:C slope" units:"1/(t/ha)"`
	PassNCSlope float64 `desc:"Passive SOM N:C slope" units:"1/(t/ha)"`

	// Deciduous stores, filled over a year and spent the next.
	CStore float64 `desc:"Stored carbon for deciduous regrowth" units:"t/ha"`
	NStore float64 `desc:"Stored nitrogen for deciduous regrowth" units:"t/ha"`
	ANPP   float64 `desc:"Annual NPP accumulator" units:"t/ha/yr"`

	CToAllocShoot  float64 `desc:"Annual C allocation, foliage" units:"t/ha"`
	CToAllocRoot   float64 `desc:"Annual C allocation, fine root" units:"t/ha"`
	CToAllocCroot  float64 `desc:"Annual C allocation, coarse root" units:"t/ha"`
	CToAllocBranch float64 `desc:"Annual C allocation, branch" units:"t/ha"`
	CToAllocStem   float64 `desc:"Annual C allocation, stem" units:"t/ha"`
	NToAllocShoot  float64 `desc:"Annual N allocation, foliage" units:"t/ha"`
	NToAllocRoot   float64 `desc:"Annual N allocation, fine root" units:"t/ha"`

	// Aggregates, refreshed at the end of every day.
	PlantC   float64 `desc:"Total plant carbon" units:"t/ha"`
	PlantN   float64 `desc:"Total plant nitrogen" units:"t/ha"`
	LitterC  float64 `desc:"Total litter carbon" units:"t/ha"`
	LitterN  float64 `desc:"Total litter nitrogen" units:"t/ha"`
	LitterAG float64 `desc:"Aboveground litter carbon" units:"t/ha"`
	LitterBG float64 `desc:"Belowground litter carbon" units:"t/ha"`
	SoilC    float64 `desc:"Total soil carbon" units:"t/ha"`
	SoilN    float64 `desc:"Total soil nitrogen" units:"t/ha"`
	TotalC   float64 `desc:"Total system carbon" units:"t/ha"`
	TotalN   float64 `desc:"Total system nitrogen" units:"t/ha"`
}

// Fluxes is the per-day scratch record of named flows. It is recomputed
// from scratch each day; nothing reads stale values across days.
type Fluxes struct {
	// Production.
	GPP       float64 `desc:"Gross primary production" units:"t/ha/day"`
	NPP       float64 `desc:"Net primary production" units:"t/ha/day"`
	AutoResp  float64 `desc:"Autotrophic respiration" units:"t/ha/day"`
	HeteroResp float64 `desc:"Heterotrophic respiration" units:"t/ha/day"`
	NEP       float64 `desc:"Net ecosystem production" units:"t/ha/day"`

	// Carbon allocated to each organ.
	CpLeaf   float64 `desc:"C production, foliage" units:"t/ha/day"`
	CpRoot   float64 `desc:"C production, fine root" units:"t/ha/day"`
	CpCroot  float64 `desc:"C production, coarse root" units:"t/ha/day"`
	CpBranch float64 `desc:"C production, branch" units:"t/ha/day"`
	CpStem   float64 `desc:"C production, stem" units:"t/ha/day"`

	// Nitrogen allocated to each organ.
	NpLeaf    float64 `desc:"N allocation, foliage" units:"t/ha/day"`
	NpRoot    float64 `desc:"N allocation, fine root" units:"t/ha/day"`
	NpCroot   float64 `desc:"N allocation, coarse root" units:"t/ha/day"`
	NpBranch  float64 `desc:"N allocation, branch" units:"t/ha/day"`
	NpStemImm float64 `desc:"N allocation, immobile stem" units:"t/ha/day"`
	NpStemMob float64 `desc:"N allocation, mobile stem" units:"t/ha/day"`

	// Litter production.
	DeadLeaves  float64 `desc:"Foliage litterfall C" units:"t/ha/day"`
	DeadRoots   float64 `desc:"Fine root litterfall C" units:"t/ha/day"`
	DeadCroots  float64 `desc:"Coarse root litterfall C" units:"t/ha/day"`
	DeadBranch  float64 `desc:"Branch litterfall C" units:"t/ha/day"`
	DeadStems   float64 `desc:"Stem litterfall C" units:"t/ha/day"`
	DeadSapwood float64 `desc:"Sapwood turnover C" units:"t/ha/day"`
	DeadLeafN   float64 `desc:"Foliage litterfall N" units:"t/ha/day"`
	DeadRootN   float64 `desc:"Fine root litterfall N" units:"t/ha/day"`
	DeadCrootN  float64 `desc:"Coarse root litterfall N" units:"t/ha/day"`
	DeadBranchN float64 `desc:"Branch litterfall N" units:"t/ha/day"`
	DeadStemN   float64 `desc:"Stem litterfall N" units:"t/ha/day"`

	// Grazing.
	CEaten  float64 `desc:"Leaf C eaten by grazers" units:"t/ha/day"`
	NEaten  float64 `desc:"Leaf N eaten by grazers" units:"t/ha/day"`
	FaecesC float64 `desc:"Grazer faeces C to litter" units:"t/ha/day"`
	NUrine  float64 `desc:"Grazer urine N to mineral pool" units:"t/ha/day"`

	// Litter partitioning into the soil model.
	SurfStructLitter  float64 `desc:"Litter C to surface structural pool" units:"t/ha/day"`
	SurfMetabLitter   float64 `desc:"Litter C to surface metabolic pool" units:"t/ha/day"`
	SoilStructLitter  float64 `desc:"Litter C to soil structural pool" units:"t/ha/day"`
	SoilMetabLitter   float64 `desc:"Litter C to soil metabolic pool" units:"t/ha/day"`
	NSurfStructLitter float64 `desc:"Litter N to surface structural pool" units:"t/ha/day"`
	NSurfMetabLitter  float64 `desc:"Litter N to surface metabolic pool" units:"t/ha/day"`
	NSoilStructLitter float64 `desc:"Litter N to soil structural pool" units:"t/ha/day"`
	NSoilMetabLitter  float64 `desc:"Litter N to soil metabolic pool" units:"t/ha/day"`

	// Respiration loss by source pool.
	CO2ToAir [nSoilPools]float64

	// Nitrogen cycling.
	NInflow         float64 `desc:"Atmospheric N deposition" units:"t/ha/day"`
	NGross          float64 `desc:"Gross N mineralization" units:"t/ha/day"`
	NImmob          float64 `desc:"N immobilization into new SOM" units:"t/ha/day"`
	NMineralisation float64 `desc:"Net N mineralization" units:"t/ha/day"`
	NLittRelease    float64 `desc:"Litter pool N:C band correction" units:"t/ha/day"`
	NUptake         float64 `desc:"Plant N uptake" units:"t/ha/day"`
	NLoss           float64 `desc:"Mineral N leaching/volatilization" units:"t/ha/day"`
	Retrans         float64 `desc:"N retranslocated from senescing tissue" units:"t/ha/day"`

	// Water balance.
	ERain         float64 `desc:"Effective rainfall reaching the soil" units:"mm/day"`
	Interception  float64 `desc:"Canopy rainfall interception loss" units:"mm/day"`
	Transpiration float64 `desc:"Canopy transpiration" units:"mm/day"`
	ET            float64 `desc:"Evapotranspiration" units:"mm/day"`
	Runoff        float64 `desc:"Drainage and runoff" units:"mm/day"`

	// SOM holds the day's carbon transfer amounts through the
	// decomposition cascade. It is produced by the carbon step and
	// consumed by the nitrogen step of the same day.
	SOM SOMTransfer
}

// SOMTransfer records the carbon amounts moved between litter and SOM
// pools on one day, together with the decay rates that produced them.
// The nitrogen regulator mirrors these transfers using source-pool N:C
// ratios.
type SOMTransfer struct {
	DecayRate [nSoilPools]float64

	SurfStructToSlow   float64
	SurfStructToActive float64
	SoilStructToSlow   float64
	SoilStructToActive float64
	SurfMetabToActive  float64
	SoilMetabToActive  float64
	ActiveToSlow       float64
	ActiveToPassive    float64
	SlowToActive       float64
	SlowToPassive      float64
	PassiveToActive    float64

	CIntoActive  float64
	CIntoSlow    float64
	CIntoPassive float64
}

// Reset zeroes the flux record. It is run at the start of every day so
// that no stage can read a stale value from the previous day.
func (f *Fluxes) Reset() {
	*f = Fluxes{}
}

// DayEnd recalculates the derived values from the state variables:
// plant N:C ratios, and the plant, litter, soil and system totals used
// by the spin-up convergence check and output reporting.
func DayEnd() DomainManipulator {
	return func(d *GDAY) error {
		s := d.State
		s.deriveFrom(d.Params)
		if d.Params.PassiveConst {
			s.PassiveSoil = d.Params.PassiveSoilZ
			s.PassiveSoilN = d.Params.PassiveSoilNZ
		}
		s.Age += 1.0 / float64(d.daysInYear)
		return nil
	}
}

func (s *State) deriveFrom(p *Params) {
	if s.Shoot > 0 {
		s.ShootNC = s.ShootN / s.Shoot
	} else {
		s.ShootNC = 0
	}
	if s.Root > 0 {
		s.RootNC = maxf(0, s.RootN/s.Root)
	} else {
		s.RootNC = 0
	}
	s.StemN = s.StemNImm + s.StemNMob

	s.SoilN = s.InorgN + s.ActiveSoilN + s.SlowSoilN + s.PassiveSoilN
	s.LitterN = s.StructSurfN + s.MetabSurfN + s.StructSoilN + s.MetabSoilN
	s.PlantN = s.ShootN + s.RootN + s.CrootN + s.BranchN + s.StemN
	s.TotalN = s.PlantN + s.LitterN + s.SoilN

	s.SoilC = floats.Sum([]float64{s.ActiveSoil, s.SlowSoil, s.PassiveSoil})
	s.LitterAG = s.StructSurf + s.MetabSurf
	s.LitterBG = s.StructSoil + s.MetabSoil
	s.LitterC = s.LitterAG + s.LitterBG
	s.PlantC = floats.Sum([]float64{s.Shoot, s.Root, s.Croot, s.Branch, s.Stem})
	s.TotalC = s.PlantC + s.LitterC + s.SoilC
}

// OutputOptions returns the names, descriptions and units of the scalars
// available for output, drawn from the State and Fluxes struct tags.
func (d *GDAY) OutputOptions() (names, descriptions, units []string) {
	for _, v := range []interface{}{d.State, d.Fluxes} {
		t := reflect.TypeOf(v).Elem()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Type.Kind() != reflect.Float64 {
				continue
			}
			names = append(names, f.Name)
			descriptions = append(descriptions, f.Tag.Get("desc"))
			units = append(units, f.Tag.Get("units"))
		}
	}
	return
}

// Value returns the current value of the named state or flux scalar.
func (d *GDAY) Value(name string) (float64, error) {
	for _, v := range []interface{}{d.State, d.Fluxes} {
		val := reflect.ValueOf(v).Elem().FieldByName(name)
		if val.IsValid() && val.Kind() == reflect.Float64 {
			return val.Float(), nil
		}
	}
	return 0, fmt.Errorf("gday: undefined variable name '%s'", name)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
