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
	"reflect"
	"testing"

	"github.com/forestlab/gday"
)

func TestParamsFromConfig(t *testing.T) {
	p, err := paramsFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Latitude != 50.0 {
		t.Errorf("latitude = %g, want 50", p.Latitude)
	}
	if p.Alloc != gday.AllocFixed {
		t.Errorf("alloc = %v, want fixed", p.Alloc)
	}

	Cfg.Set("Params.Alloc", "allometric")
	defer Cfg.Set("Params.Alloc", "fixed")
	Cfg.Set("Params.Deciduous", true)
	defer Cfg.Set("Params.Deciduous", false)

	p, err = paramsFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Alloc != gday.AllocAllometric {
		t.Errorf("alloc = %v, want allometric", p.Alloc)
	}
	if !p.Deciduous {
		t.Error("deciduous override not applied")
	}
}

func TestParamsFromConfigBadModel(t *testing.T) {
	Cfg.Set("Params.NUptake", "banana")
	defer Cfg.Set("Params.NUptake", "proportional")
	if _, err := paramsFromConfig(Cfg); err == nil {
		t.Error("expected an error for an unknown uptake model")
	}
}

func TestGetStringMapString(t *testing.T) {
	// flag values arrive as JSON strings
	want := map[string]string{"NEP": "NPP - HeteroResp", "LAI": "LAI"}
	Cfg.Set("testVars", `{"NEP": "NPP - HeteroResp", "LAI": "LAI"}`)
	if got := GetStringMapString("testVars", Cfg); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// config file values arrive as maps
	Cfg.Set("testVars2", map[string]interface{}{"LAI": "LAI"})
	want = map[string]string{"LAI": "LAI"}
	if got := GetStringMapString("testVars2", Cfg); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCheckOutputVars(t *testing.T) {
	if _, err := checkOutputVars(map[string]string{}); err == nil {
		t.Error("expected an error for empty output variables")
	}
	vars, err := checkOutputVars(map[string]string{"NEP": "NPP -\nHeteroResp"})
	if err != nil {
		t.Fatal(err)
	}
	if vars["NEP"] != "NPP - HeteroResp" {
		t.Errorf("newline not scrubbed: %q", vars["NEP"])
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected an error for an empty output path")
	}
	if _, err := checkOutputFile("no/such/dir/out.txt"); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if _, err := checkOutputFile("out.txt"); err != nil {
		t.Errorf("current directory should be accepted: %v", err)
	}
}
