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
	"io"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// Outputter writes one row per simulated day of user-chosen output
// variables. Each variable is an expression over the model's named
// state and flux scalars, for example "NPP - HeteroResp", so derived
// quantities need no code changes.
type Outputter struct {
	w           io.Writer
	names       []string
	expressions map[string]*govaluate.EvaluableExpression
	wroteHeader bool
}

// outputFunctions are helpers available inside output expressions.
var outputFunctions = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs: need 1 argument, got %d", len(args))
		}
		return math.Abs(args[0].(float64)), nil
	},
	"min": func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("min: need at least 1 argument")
		}
		m := math.Inf(1)
		for _, a := range args {
			m = math.Min(m, a.(float64))
		}
		return m, nil
	},
	"max": func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("max: need at least 1 argument")
		}
		m := math.Inf(-1)
		for _, a := range args {
			m = math.Max(m, a.(float64))
		}
		return m, nil
	},
}

// NewOutputter parses the output variable expressions and prepares a
// writer for them. Columns appear in sorted name order after the year
// and day-of-year columns.
func NewOutputter(w io.Writer, outputVariables map[string]string) (*Outputter, error) {
	o := &Outputter{
		w:           w,
		expressions: make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputVariables {
		parsed, err := govaluate.NewEvaluableExpressionWithFunctions(expr, outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("gday: parsing output variable %s=%q: %v", name, expr, err)
		}
		o.expressions[name] = parsed
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o, nil
}

// CheckOutput returns an init function that verifies every scalar
// referenced by the output expressions exists in the model, so typos
// fail at startup instead of mid-run.
func (o *Outputter) CheckOutput() DomainManipulator {
	return func(d *GDAY) error {
		for _, name := range o.names {
			for _, v := range o.expressions[name].Vars() {
				if _, err := d.Value(v); err != nil {
					return fmt.Errorf("output variable %s: %v", name, err)
				}
			}
		}
		return nil
	}
}

// Output returns a function that evaluates the output expressions
// against the day's state and writes a tab-delimited row. A header
// row is written first.
func (o *Outputter) Output() DomainManipulator {
	return func(d *GDAY) error {
		if !o.wroteHeader {
			fmt.Fprint(o.w, "year\tdoy")
			for _, name := range o.names {
				fmt.Fprintf(o.w, "\t%s", name)
			}
			fmt.Fprintln(o.w)
			o.wroteHeader = true
		}

		fmt.Fprintf(o.w, "%d\t%d", d.Met.Year[d.Day], d.Doy+1)
		for _, name := range o.names {
			expr := o.expressions[name]
			params := make(map[string]interface{})
			for _, v := range expr.Vars() {
				val, err := d.Value(v)
				if err != nil {
					return fmt.Errorf("output variable %s: %v", name, err)
				}
				params[v] = val
			}
			result, err := expr.Evaluate(params)
			if err != nil {
				return fmt.Errorf("evaluating output variable %s: %v", name, err)
			}
			fval, ok := result.(float64)
			if !ok {
				return fmt.Errorf("output variable %s: expression %q is not numeric", name, expr)
			}
			fmt.Fprintf(o.w, "\t%g", fval)
		}
		fmt.Fprintln(o.w)
		return nil
	}
}
