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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forestlab/gday"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment variables
// in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		vars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return vars, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.txt")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gday: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// paramsFromConfig builds a parameter set from the default values and
// the configured overrides.
func paramsFromConfig(cfg *viper.Viper) (*gday.Params, error) {
	p := gday.DefaultParams()

	p.Latitude = cfg.GetFloat64("Params.Latitude")
	p.Deciduous = cfg.GetBool("Params.Deciduous")
	p.Grazing = cfg.GetBool("Params.Grazing")
	p.FixLeafNC = cfg.GetBool("Params.FixLeafNC")

	var err error
	if p.Assim, err = gday.ParseAssimModel(cfg.GetString("Params.Assim")); err != nil {
		return nil, fmt.Errorf("gday: reading Params.Assim: %v", err)
	}
	if p.Alloc, err = gday.ParseAllocModel(cfg.GetString("Params.Alloc")); err != nil {
		return nil, fmt.Errorf("gday: reading Params.Alloc: %v", err)
	}
	if p.NUptake, err = gday.ParseNUptakeModel(cfg.GetString("Params.NUptake")); err != nil {
		return nil, fmt.Errorf("gday: reading Params.NUptake: %v", err)
	}
	return p, nil
}

// readMetFile reads the daily met forcing from path.
func readMetFile(path string) (*gday.MetData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gday: opening met forcing: %v", err)
	}
	defer f.Close()
	met, err := gday.ReadMet(f)
	if err != nil {
		return nil, fmt.Errorf("gday: reading met forcing %s: %v", path, err)
	}
	return met, nil
}

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json object
// if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for GetStringMapString variable %s: %#v", varName, i))
	}
}
