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

// Package gdayutil holds the command-line interface for the gday forest
// biogeochemistry model.
package gdayutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/forestlab/gday"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gday.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MetFile",
			usage: `
              MetFile is the path to the daily meteorological forcing,
              a whitespace-delimited file with columns year, tair,
              tsoil, rain, par and ndep. It can include environment
              variables.`,
			shorthand:  "m",
			defaultVal: "met.dat",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired tab-delimited daily
              output location. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "gday_output.txt",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              included in the output file. Each variable is an
              expression over the model's named state and flux scalars,
              so derived quantities need no code changes.`,
			defaultVal: map[string]string{
				"NEP":    "NPP - HeteroResp",
				"LAI":    "LAI",
				"PlantC": "PlantC",
				"SoilC":  "SoilC",
				"InorgN": "InorgN",
			},
			flagsets: []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "RestartFile",
			usage: `
              RestartFile is the path to a snapshot written by the
              spinup command. If set, the run starts from the snapshot's
              parameters and pool state instead of the defaults.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SnapshotFile",
			usage: `
              SnapshotFile is the path where the spinup command saves
              the converged model, for later use as a RestartFile.`,
			defaultVal: "gday_spinup.gob",
			flagsets:   []*pflag.FlagSet{spinupCmd.Flags()},
		},
		{
			name: "Spinup.Tolerance",
			usage: `
              Spinup.Tolerance is the maximum change in the plant and
              soil carbon pools (t/ha) between consecutive passes over
              the forcing for the spin-up to be considered converged.`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{spinupCmd.Flags()},
		},
		{
			name: "Spinup.MaxCycles",
			usage: `
              Spinup.MaxCycles is the number of passes over the forcing
              after which an unconverged spin-up gives up.`,
			defaultVal: 2000,
			flagsets:   []*pflag.FlagSet{spinupCmd.Flags()},
		},
		{
			name: "Params.Latitude",
			usage: `
              Params.Latitude is the site latitude in decimal degrees,
              negative in the southern hemisphere.`,
			defaultVal: 50.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.Deciduous",
			usage: `
              Params.Deciduous switches the stand to deciduous
              phenology: growth is paid for out of stores accumulated
              the previous season and the canopy drops every autumn.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.Grazing",
			usage: `
              Params.Grazing enables removal of a fraction of leaf
              production by grazers and its partial return to the soil
              as faeces and urine.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.Assim",
			usage: `
              Params.Assim selects the assimilation model. "LUE" is
              currently the only option: GPP is a fixed light-use
              efficiency applied to absorbed radiation, modified by leaf
              N status and soil water.`,
			defaultVal: "LUE",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.Alloc",
			usage: `
              Params.Alloc selects the carbon allocation model: "fixed"
              interpolates each organ's fraction with leaf N status,
              "allometric" goal-seeks foliage, branch and coarse root
              allocation toward structural targets.`,
			defaultVal: "fixed",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.NUptake",
			usage: `
              Params.NUptake selects the plant N uptake model:
              "constant", "proportional" (alias "rate"), "saturating"
              or "saturatingmoist".`,
			defaultVal: "proportional",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
		{
			name: "Params.FixLeafNC",
			usage: `
              Params.FixLeafNC holds foliage N:C at its current value
              instead of letting nitrogen availability mark production
              down.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), spinupCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GDAY")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(spinupCmd)
	Root.AddCommand(dumpConfigCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gday: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gday",
	Short: "A daily forest biogeochemistry model.",
	Long: `gday simulates daily carbon, nitrogen and water cycling in a forest
stand: plant production and allocation, litterfall, and a CENTURY-style
soil decomposition cascade. Use the subcommands specified below to
access the model functionality.

Refer to the subcommand documentation for configuration options and
default settings. Configuration can be changed by using a configuration
file (and providing the path to the file using the --config flag), by
using command-line arguments, or by setting environment variables in
the format 'GDAY_var' where 'var' is the name of the variable to be
set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gday.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("gday v%s\n", gday.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates the stand over the full met forcing, writing one
tab-delimited row of the configured output variables per simulated day
and an annual summary to the log. Start from a spun-up state by setting
RestartFile to a snapshot written by the spinup command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		p, err := paramsFromConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(
			os.ExpandEnv(Cfg.GetString("MetFile")),
			outputFile,
			os.ExpandEnv(Cfg.GetString("RestartFile")),
			outputVars,
			p)
	},
	DisableAutoGenTag: true,
}

var dumpConfigCmd = &cobra.Command{
	Use:   "dump-config",
	Short: "Print the current configuration",
	Long: `dump-config prints the configuration that would be used by the
other commands, after merging the defaults, the configuration file,
environment variables and command-line flags, as indented JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := make(map[string]interface{})
		for _, option := range options {
			config[option.name] = Cfg.Get(option.name)
		}
		e := json.NewEncoder(cmd.OutOrStdout())
		e.SetIndent("", "  ")
		return e.Encode(config)
	},
	DisableAutoGenTag: true,
}

var spinupCmd = &cobra.Command{
	Use:   "spinup",
	Short: "Spin the model up to steady state.",
	Long: `spinup repeats the met forcing until the plant and soil carbon
pools stop changing between passes, then saves the converged parameters
and pool state to SnapshotFile for use as a RestartFile in later runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paramsFromConfig(Cfg)
		if err != nil {
			return err
		}
		return SpinUp(
			os.ExpandEnv(Cfg.GetString("MetFile")),
			os.ExpandEnv(Cfg.GetString("SnapshotFile")),
			Cfg.GetFloat64("Spinup.Tolerance"),
			Cfg.GetInt("Spinup.MaxCycles"),
			p)
	},
	DisableAutoGenTag: true,
}
