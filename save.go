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
	"encoding/gob"
	"fmt"
	"io"
)

// snapshot is the on-disk form of a model: the parameter set with
// per-year rate constants and the complete pool state, typically the
// end point of a spin-up.
type snapshot struct {
	Params Params
	State  State
}

// SaveSnapshot returns a function that writes the parameter set and
// current pool state to w in gob encoding. Rate constants are stored
// in their per-year form so a restored run converts them exactly once.
func SaveSnapshot(w io.Writer) DomainManipulator {
	return func(d *GDAY) error {
		p := *d.Params
		p.CorrectRateConstants(false)
		if err := gob.NewEncoder(w).Encode(snapshot{Params: p, State: *d.State}); err != nil {
			return fmt.Errorf("encoding snapshot: %v", err)
		}
		return nil
	}
}

// LoadSnapshot returns an init function that replaces the model's
// parameters and pool state with a previously saved snapshot. It must
// run before InitCalendar so the restored rate constants are converted
// to the daily timestep.
func LoadSnapshot(r io.Reader) DomainManipulator {
	return func(d *GDAY) error {
		var snap snapshot
		if err := gob.NewDecoder(r).Decode(&snap); err != nil {
			return fmt.Errorf("decoding snapshot: %v", err)
		}
		*d.Params = snap.Params
		*d.State = snap.State
		return nil
	}
}
