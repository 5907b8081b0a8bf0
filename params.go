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

import "fmt"

// AssimModel selects the photosynthesis collaborator. The choice is made
// once at configuration time.
type AssimModel int

const (
	// AssimFixedLUE computes GPP as a fixed light-use efficiency applied
	// to intercepted radiation, modified by water stress and canopy N.
	AssimFixedLUE AssimModel = iota
)

func (m AssimModel) String() string {
	switch m {
	case AssimFixedLUE:
		return "LUE"
	}
	return fmt.Sprintf("AssimModel(%d)", int(m))
}

// ParseAssimModel converts a configuration string into an AssimModel.
func ParseAssimModel(s string) (AssimModel, error) {
	switch s {
	case "LUE", "lue":
		return AssimFixedLUE, nil
	}
	return -1, fmt.Errorf("gday: unknown assimilation model '%s'", s)
}

// AllocModel selects how daily carbon allocation fractions are computed.
type AllocModel int

const (
	// AllocFixed interpolates each organ's fraction between its zero-N
	// and N-replete end members using the leaf nitrogen factor.
	AllocFixed AllocModel = iota
	// AllocAllometric goal-seeks the fractions toward height and
	// biomass derived structural targets.
	AllocAllometric
)

func (m AllocModel) String() string {
	switch m {
	case AllocFixed:
		return "FIXED"
	case AllocAllometric:
		return "ALLOMETRIC"
	}
	return fmt.Sprintf("AllocModel(%d)", int(m))
}

// ParseAllocModel converts a configuration string into an AllocModel.
func ParseAllocModel(s string) (AllocModel, error) {
	switch s {
	case "FIXED", "fixed":
		return AllocFixed, nil
	case "ALLOMETRIC", "allometric":
		return AllocAllometric, nil
	}
	return -1, fmt.Errorf("gday: unknown C allocation model '%s'", s)
}

// NUptakeModel selects the plant nitrogen uptake submodel.
type NUptakeModel int

const (
	// NUptakeConstant takes up nitrogen at a fixed rate.
	NUptakeConstant NUptakeModel = iota
	// NUptakeProportional takes up a fixed fraction of the mineral N
	// pool each day.
	NUptakeProportional
	// NUptakeSaturating saturates with fine root mass
	// (Dewar and McMurtrie, 1996).
	NUptakeSaturating
	// NUptakeSaturatingMoist is the saturating model additionally
	// modulated by topsoil moisture and soil temperature.
	NUptakeSaturatingMoist
)

func (m NUptakeModel) String() string {
	switch m {
	case NUptakeConstant:
		return "CONSTANT"
	case NUptakeProportional:
		return "RATE"
	case NUptakeSaturating:
		return "SATURATING"
	case NUptakeSaturatingMoist:
		return "SATURATING_MOIST"
	}
	return fmt.Sprintf("NUptakeModel(%d)", int(m))
}

// ParseNUptakeModel converts a configuration string into an NUptakeModel.
func ParseNUptakeModel(s string) (NUptakeModel, error) {
	switch s {
	case "CONSTANT", "constant":
		return NUptakeConstant, nil
	case "RATE", "rate", "PROPORTIONAL", "proportional":
		return NUptakeProportional, nil
	case "SATURATING", "saturating":
		return NUptakeSaturating, nil
	case "SATURATING_MOIST", "saturating_moist", "SATURATINGMOIST", "saturatingmoist":
		return NUptakeSaturatingMoist, nil
	}
	return -1, fmt.Errorf("gday: unknown N uptake model '%s'", s)
}

// Params holds the model parameters and control switches, plus the
// initial pool snapshot. Rate constants are configured per year and
// converted to per day before a run.
type Params struct {
	// Model selection.
	Assim     AssimModel
	Alloc     AllocModel
	NUptake   NUptakeModel
	Deciduous bool // deciduous phenology instead of evergreen

	FixedStemNC  bool // fixed stem N:C instead of the Jeffreys (1999) relation
	FixLeafNC    bool // hold leaf N:C fixed; disables the NPP markdown
	PassiveConst bool // hold the passive SOM pool constant
	Grazing      bool // grazer C/N removal and return pathway
	StrFloat     bool // structural litter N:C floats as a fraction of metabolic
	UseEffNC     bool // litter N:C from LitEffNC instead of dead tissue ratios
	WaterStress  bool // apply soil moisture limitation to production
	ModelOptRoot bool // optimal rooting depth N uptake (Newton solve)

	// Site.
	Finesoil float64 // silt + clay fraction
	Latitude float64 // degrees, negative for south

	// Photosynthesis.
	LUE      float64 // light-use efficiency (t C ha-1 per MJ m-2 intercepted)
	CUE      float64 // carbon use efficiency, NPP:GPP
	Kext     float64 // canopy light extinction coefficient
	NCrit    float64 // critical leaf N:C for unreduced production
	SLAInit  float64 // specific leaf area (m2 one-sided/kg DW)
	SLAZero  float64 // SLA of new foliage at zero leaf N:C
	SLAMax   float64 // SLA of new foliage at maximum leaf N:C
	LAICover float64 // one-sided LAI for complete ground cover
	Cfracts  float64 // carbon fraction of dry biomass

	// Carbon allocation at the critical and zero leaf N:C.
	CAllocF, CAllocFz   float64 // foliage
	CAllocR, CAllocRz   float64 // fine root
	CAllocCR, CAllocCRz float64 // coarse root
	CAllocB, CAllocBz   float64 // branch

	// Allometric allocation.
	NfMin, NfMax     float64 // leaf N:C limits for the N limitation factor
	ArMin, ArMax     float64 // fine root allocation limits
	AfMax, AbMax     float64 // maximum foliage/branch allocation
	AcrMax           float64 // maximum coarse root allocation
	TargSens         float64 // allocation target sensitivity
	Heighto, HtPower float64 // stem mass to height allometry
	Height0, Height1 float64 // heights bounding the leaf:sapwood target
	LeafSap0, LeafSap1 float64
	Branch0, Branch1 float64 // stem mass to branch mass allometry
	Croot0, Croot1   float64 // stem mass to coarse root mass allometry
	Density          float64 // wood density (kg DW m-3)

	// Grazing.
	FractEaten float64 // fraction of leaf production eaten
	FracFaeces float64 // fraction of grazed C to faeces
	LigFaeces  float64 // faeces lignin fraction
	FaecesCN   float64 // faeces C:N ratio
	FracToSoil float64 // fraction of grazed N recycled to soil

	// Nitrogen cycling. Rates are per year until corrected.
	RateUptake float64 // uptake rate from the mineral N pool (/yr)
	RateLoss   float64 // loss rate from the mineral N pool (/yr)
	Fretrans   float64 // foliage N retranslocation fraction
	Rretrans   float64 // fine root N retranslocation fraction
	Crretrans  float64 // coarse root N retranslocation fraction
	Bretrans   float64 // branch N retranslocation fraction
	Wretrans   float64 // mobile stem N retranslocation fraction
	RetransMob float64 // fraction of mobile stem N retranslocated (/yr)
	Uo         float64 // mineral N supply rate for saturating uptake
	Kr         float64 // root C at half-maximum N uptake (t/ha)
	NUptakeZ   float64 // constant N uptake (/yr)

	// Nitrogen allocation targets.
	NcwNew, NcwNewZ float64 // mobile stem N:C at critical/zero leaf N:C
	NcwImm, NcwImmZ float64 // immobile stem N:C at critical/zero leaf N:C
	NcbNew, NcbNewZ float64 // branch N:C at critical/zero leaf N:C
	NccNew, NccNewZ float64 // coarse root N:C at critical/zero leaf N:C
	NcrFac          float64 // fine root:leaf N:C of new production
	Fhw             float64 // stemwood N:C scalar, Jeffreys relation
	AgeYoung        float64 // stand age of the highest max leaf N:C
	AgeOld          float64 // stand age of the lowest max leaf N:C
	NcMaxFYoung     float64 // max foliage N:C in a young stand
	NcMaxFOld       float64 // max foliage N:C in an old stand

	// Litterfall. Rates are per year until corrected.
	Fdecay, FdecayDry float64 // foliage turnover, wet/dry soil
	Rdecay, RdecayDry float64 // fine root turnover, wet/dry soil
	Bdecay            float64 // branch turnover
	Wdecay            float64 // stem turnover
	Crdecay           float64 // coarse root turnover
	Sapdecay          float64 // sapwood turnover
	WatDecayDry       float64 // water factor below which dry rates apply
	WatDecayWet       float64 // water factor above which wet rates apply
	LigShoot          float64 // leaf litter lignin fraction
	LigRoot           float64 // root litter lignin fraction
	Brabove           float64 // aboveground fraction of branch litter
	StructCN          float64 // C:N of structural litter input
	StructRat         float64 // structural N:C as a fraction of metabolic
	LitEffNC          float64

	// Decomposition rate constants (/yr until corrected).
	Kdec1, Kdec2, Kdec3, Kdec4, Kdec5, Kdec6, Kdec7 float64

	// N:C bands of new SOM.
	ActNCMax, ActNCMin   float64
	SlowNCMax, SlowNCMin float64
	PassNCMax, PassNCMin float64
	NMinCrit             float64 // mineral N at the maximum SOM N:C (g/m2)
	NMin0                float64 // mineral N at the minimum SOM N:C (g/m2)

	// Water balance.
	WcapacRoot   float64 // max plant-available water, root zone (mm)
	WcapacTop    float64 // max plant-available water, topsoil (mm)
	FractUpSoil  float64 // fraction of water uptake from the topsoil
	WUE          float64 // water use efficiency (t C ha-1 per mm transpired)
	WetLoss      float64 // daily interception loss per unit LAI (mm)
	SoilWP       float64 // wilting point as a fraction of capacity
	SoilCP       float64 // critical point as a fraction of capacity

	// Rooting depth model.
	D0x          float64 // length scale for the decline of max uptake with depth
	R0           float64 // root C at half-maximum N uptake (kg C m-3)
	TopSoilDepth float64 // m

	// Deciduous phenology.
	BudBreakDoy  int // leaf out day of year
	SenescenceDoy int // start of senescence
	StoreTransferLen float64 // days over which stores are spent

	PassiveSoilZ  float64
	PassiveSoilNZ float64

	// Initial pool snapshot.
	InitShoot, InitShootN         float64
	InitRoot, InitRootN           float64
	InitCroot, InitCrootN         float64
	InitBranch, InitBranchN       float64
	InitStem, InitStemNImm        float64
	InitStemNMob, InitSapwood     float64
	InitStructSurf, InitStructSurfN float64
	InitMetabSurf, InitMetabSurfN   float64
	InitStructSoil, InitStructSoilN float64
	InitMetabSoil, InitMetabSoilN   float64
	InitActiveSoil, InitActiveSoilN float64
	InitSlowSoil, InitSlowSoilN     float64
	InitPassiveSoil, InitPassiveSoilN float64
	InitInorgN                      float64
	InitAge                         float64

	ratesAreDaily bool
}

// DefaultParams returns the default parameter set for a temperate
// evergreen stand. Values follow the forest version of CENTURY
// (Parton et al. 1993) and Comins and McMurtrie (1993) where noted in
// the field comments.
func DefaultParams() *Params {
	return &Params{
		Assim:       AssimFixedLUE,
		Alloc:       AllocFixed,
		NUptake:     NUptakeProportional,
		FixedStemNC: true,
		WaterStress: true,

		Finesoil: 0.5,
		Latitude: 39.12,

		LUE:      0.000964, // ~1.93 gC/MJ APAR at CUE 0.5
		CUE:      0.5,
		Kext:     0.5,
		NCrit:    0.04,
		SLAInit:  3.9,
		SLAZero:  3.9,
		SLAMax:   3.9,
		LAICover: 0.5,
		Cfracts:  0.5,

		CAllocF: 0.25, CAllocFz: 0.25,
		CAllocR: 0.05, CAllocRz: 0.05,
		CAllocCR: 0.05, CAllocCRz: 0.05,
		CAllocB: 0.2, CAllocBz: 0.2,

		NfMin: 0.015, NfMax: 0.04,
		ArMin: 0.05, ArMax: 0.3,
		AfMax: 0.5, AbMax: 0.3,
		AcrMax: 0.2,
		TargSens: 0.5,
		Heighto:  4.826, HtPower: 0.35,
		Height0: 5.0, Height1: 30.0,
		LeafSap0: 8000.0, LeafSap1: 3060.0,
		Branch0: 5.61, Branch1: 0.346,
		Croot0: 0.34, Croot1: 0.84,
		Density: 420.0,

		FractEaten: 0.5,
		FracFaeces: 0.3,
		LigFaeces:  0.25,
		FaecesCN:   25.0,
		FracToSoil: 0.85,

		RateUptake: 5.7,
		RateLoss:   0.5,
		Fretrans:   0.5,
		Uo:         2.737850787e-4,
		Kr:         0.5,

		NcwNew: 0.003, NcwNewZ: 0.003,
		NcwImm: 0.003, NcwImmZ: 0.003,
		NcbNew: 0.003, NcbNewZ: 0.003,
		NccNew: 0.003, NccNewZ: 0.003,
		NcrFac:      0.8,
		Fhw:         0.8,
		AgeYoung:    0.0,
		AgeOld:      1000.0,
		NcMaxFYoung: 0.04,
		NcMaxFOld:   0.04,

		Fdecay: 0.5, FdecayDry: 0.5,
		Rdecay: 0.5, RdecayDry: 0.5,
		Bdecay:      0.03,
		Wdecay:      0.02,
		Crdecay:     0.03,
		Sapdecay:    0.1,
		WatDecayDry: 0.0,
		WatDecayWet: 0.1,
		LigShoot:    0.25,
		LigRoot:     0.25,
		Brabove:     0.5,
		StructCN:    150.0,

		Kdec1: 3.965571,
		Kdec2: 14.61,
		Kdec3: 4.904786,
		Kdec4: 18.262499,
		Kdec5: 7.305,
		Kdec6: 0.198279,
		Kdec7: 0.006783,

		ActNCMax: 1.0 / 3.0, ActNCMin: 1.0 / 15.0,
		SlowNCMax: 1.0 / 15.0, SlowNCMin: 1.0 / 40.0,
		PassNCMax: 1.0 / 7.0, PassNCMin: 1.0 / 10.0,
		NMinCrit: 2.0,
		NMin0:    0.0,

		WcapacRoot:  240.0,
		WcapacTop:   100.0,
		FractUpSoil: 0.5,
		WUE:         0.0003,
		WetLoss:     0.5,
		SoilWP:      0.1,
		SoilCP:      0.6,

		D0x:          0.35,
		R0:           0.1325,
		TopSoilDepth: 0.3,

		BudBreakDoy:      107,
		SenescenceDoy:    278,
		StoreTransferLen: 40.0,

		PassiveSoilZ:  1.0,
		PassiveSoilNZ: 1.0,

		InitShoot: 0.5, InitShootN: 0.015,
		InitRoot: 0.2, InitRootN: 0.006,
		InitCroot: 0.1, InitCrootN: 0.0003,
		InitBranch: 0.2, InitBranchN: 0.0006,
		InitStem: 1.0, InitStemNImm: 0.003,
		InitStemNMob: 0.0003, InitSapwood: 0.5,
		InitActiveSoil: 1.0, InitActiveSoilN: 0.1,
		InitSlowSoil: 5.0, InitSlowSoilN: 0.25,
		InitPassiveSoil: 20.0, InitPassiveSoilN: 2.0,
		InitInorgN: 0.005,
	}
}

// Ft returns the fraction of the active pool outflow respired as CO2,
// an effect of soil texture on turnover.
func (p *Params) Ft() float64 { return 0.85 - 0.68*p.Finesoil }

// rateConstants lists the per-year rates that must be rescaled to the
// model's daily timestep.
func (p *Params) rateConstants() []*float64 {
	return []*float64{
		&p.RateUptake, &p.RateLoss, &p.RetransMob,
		&p.Fdecay, &p.FdecayDry, &p.Rdecay, &p.RdecayDry,
		&p.Bdecay, &p.Wdecay, &p.Crdecay, &p.Sapdecay,
		&p.Kdec1, &p.Kdec2, &p.Kdec3, &p.Kdec4, &p.Kdec5, &p.Kdec6, &p.Kdec7,
		&p.NUptakeZ,
	}
}

// CorrectRateConstants converts the per-year rate constants to per-day
// values (toDaily true) or back (false). It is safe to call repeatedly;
// only the first call in each direction has an effect.
func (p *Params) CorrectRateConstants(toDaily bool) {
	if p.ratesAreDaily == toDaily {
		return
	}
	for _, r := range p.rateConstants() {
		if toDaily {
			*r /= daysInYr
		} else {
			*r *= daysInYr
		}
	}
	p.ratesAreDaily = toDaily
}

// InitialState builds a pool store from the parameter snapshot.
func (p *Params) InitialState() *State {
	s := &State{
		Shoot: p.InitShoot, ShootN: p.InitShootN,
		Root: p.InitRoot, RootN: p.InitRootN,
		Croot: p.InitCroot, CrootN: p.InitCrootN,
		Branch: p.InitBranch, BranchN: p.InitBranchN,
		Stem: p.InitStem, StemNImm: p.InitStemNImm,
		StemNMob: p.InitStemNMob, Sapwood: p.InitSapwood,
		StructSurf: p.InitStructSurf, StructSurfN: p.InitStructSurfN,
		MetabSurf: p.InitMetabSurf, MetabSurfN: p.InitMetabSurfN,
		StructSoil: p.InitStructSoil, StructSoilN: p.InitStructSoilN,
		MetabSoil: p.InitMetabSoil, MetabSoilN: p.InitMetabSoilN,
		ActiveSoil: p.InitActiveSoil, ActiveSoilN: p.InitActiveSoilN,
		SlowSoil: p.InitSlowSoil, SlowSoilN: p.InitSlowSoilN,
		PassiveSoil: p.InitPassiveSoil, PassiveSoilN: p.InitPassiveSoilN,
		InorgN: p.InitInorgN,
		Age:    p.InitAge,
	}
	s.SLA = p.SLAInit
	s.LAI = p.SLAInit * m2AsHa / kgAsTonnes / p.Cfracts * s.Shoot
	s.PawaterRoot = p.WcapacRoot
	s.PawaterTsoil = p.WcapacTop
	s.WtfacTsoil = 1.0
	s.WtfacRoot = 1.0
	s.deriveFrom(p)
	return s
}
