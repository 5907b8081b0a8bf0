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

package gdayutil

import (
	"fmt"
	"os"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/forestlab/gday"
	"github.com/sirupsen/logrus"
)

// Run simulates the stand over the met forcing in metFile, writing the
// configured output variables to outputFile one row per day. If
// restartFile is non-empty the model starts from that snapshot instead
// of the default initial pools.
func Run(metFile, outputFile, restartFile string, outputVars map[string]string, p *gday.Params) error {
	met, err := readMetFile(metFile)
	if err != nil {
		return err
	}
	d := gday.NewSimulation(p, met)

	if restartFile != "" {
		r, err := os.Open(restartFile)
		if err != nil {
			return fmt.Errorf("gday: opening restart file: %v", err)
		}
		defer r.Close()
		d.InitFuncs = append(
			[]gday.DomainManipulator{gday.LoadSnapshot(r)}, d.InitFuncs...)
	}

	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("gday: creating output file: %v", err)
	}
	defer w.Close()

	o, err := gday.NewOutputter(w, outputVars)
	if err != nil {
		return err
	}
	d.InitFuncs = append(d.InitFuncs, o.CheckOutput())

	l := logrus.New()
	summary := &annualSummary{}

	// Output, accounting and logging run after the science stages but
	// before the calendar advances.
	n := len(d.RunFuncs)
	d.RunFuncs = append(d.RunFuncs[:n-1],
		o.Output(), summary.record(), gday.Log(l), gday.NextDay())

	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return err
	}
	summary.log(l)
	return nil
}

// SpinUp repeats the met forcing in metFile until the plant and soil
// carbon pools converge, then saves the spun-up model to snapshotFile.
func SpinUp(metFile, snapshotFile string, tol float64, maxCycles int, p *gday.Params) error {
	met, err := readMetFile(metFile)
	if err != nil {
		return err
	}
	d := gday.NewSimulation(p, met)
	if err := d.Init(); err != nil {
		return err
	}

	l := logrus.New()
	if err := d.SpinUp(tol, maxCycles); err != nil {
		return err
	}
	l.WithFields(logrus.Fields{
		"plantC": d.State.PlantC,
		"soilC":  d.State.SoilC,
		"totalN": d.State.TotalN,
	}).Info("spin-up converged")

	w, err := os.Create(snapshotFile)
	if err != nil {
		return fmt.Errorf("gday: creating snapshot file: %v", err)
	}
	defer w.Close()
	return gday.SaveSnapshot(w)(d)
}

// annualSummary accumulates production and respiration by simulation
// year so the run can be summarised after the fact.
type annualSummary struct {
	npp, hetero, nep []float64
}

// record returns a function that adds the day's fluxes to the current
// year's totals. It must run before the calendar advances.
func (a *annualSummary) record() gday.DomainManipulator {
	return func(d *gday.GDAY) error {
		for len(a.npp) <= d.YearIndex {
			a.npp = append(a.npp, 0)
			a.hetero = append(a.hetero, 0)
			a.nep = append(a.nep, 0)
		}
		f := d.Fluxes
		a.npp[d.YearIndex] += f.NPP
		a.hetero[d.YearIndex] += f.HeteroResp
		a.nep[d.YearIndex] += f.NEP
		return nil
	}
}

// log reports summary statistics of the annual totals.
func (a *annualSummary) log(l *logrus.Logger) {
	if len(a.npp) == 0 {
		return
	}
	fields := logrus.Fields{
		"years":   len(a.npp),
		"meanNPP": stats.StatsMean(a.npp),
		"meanRh":  stats.StatsMean(a.hetero),
		"meanNEP": stats.StatsMean(a.nep),
		"minNEP":  stats.StatsMin(a.nep),
		"maxNEP":  stats.StatsMax(a.nep),
	}
	if len(a.nep) > 1 {
		fields["sdNEP"] = stats.StatsSampleStandardDeviation(a.nep)
	}
	l.WithFields(fields).Info("annual summary (t/ha/yr)")
}
