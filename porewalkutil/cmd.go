/*
Copyright © 2026 the PoreWalk authors.
This file is part of PoreWalk.

PoreWalk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreWalk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreWalk.  If not, see <http://www.gnu.org/licenses/>.
*/

package porewalkutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/porewalk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// option is a configuration option. The type of defaultVal determines
// the type of the flag. Map options are JSON strings on the command line.
type option struct {
	name, usage, shorthand string
	defaultVal             interface{}

	// flagsets are the flag sets the option belongs to. The flag is
	// created in the first and shared with the others.
	flagsets []*pflag.FlagSet
}

// options are the configuration options available to PoreWalk.
var options []option

// addFlag adds a flag for o to set.
func (o option) addFlag(set *pflag.FlagSet) {
	switch v := o.defaultVal.(type) {
	case string:
		set.StringP(o.name, o.shorthand, v, o.usage)
	case int:
		set.IntP(o.name, o.shorthand, v, o.usage)
	case []int:
		set.IntSliceP(o.name, o.shorthand, v, o.usage)
	case float64:
		set.Float64P(o.name, o.shorthand, v, o.usage)
	case map[string]string:
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		set.StringP(o.name, o.shorthand, string(b), o.usage)
	default:
		panic(fmt.Errorf("porewalkutil: option %s has invalid type %T", o.name, v))
	}
}

func init() {
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the netCDF file holding the
              three-dimensional grayscale image. It can be a local path,
              an http(s) URL, or a blob storage location such as
              gs://bucket/image.ncf, s3://bucket/image.ncf, or
              file://dir/image.ncf. It can include environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags(), porosityCmd.Flags(), surfaceAreaCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the name of the netCDF variable in InputFile
              that holds the grayscale values. It must have three
              dimensions, ordered (x, y, z).`,
			defaultVal: "gray",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags(), porosityCmd.Flags(), surfaceAreaCmd.Flags()},
		},
		{
			name: "VoxelLength",
			usage: `
              VoxelLength is the edge length of a voxel [m]. If it is not
              greater than zero, the 'voxelLength' attribute of InputFile
              is used instead.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags(), porosityCmd.Flags(), surfaceAreaCmd.Flags()},
		},
		{
			name: "Cutoff",
			usage: `
              Cutoff is the inclusive range [low, high] of grayscale
              values that belong to the pore space.`,
			shorthand:  "c",
			defaultVal: []int{0, 127},
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags(), porosityCmd.Flags(), surfaceAreaCmd.Flags()},
		},
		{
			name: "NumParticles",
			usage: `
              NumParticles is the number of walkers in the production walk.`,
			shorthand:  "n",
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "MeanFreePath",
			usage: `
              MeanFreePath is the mean distance between collisions of a
              walker with the bulk gas, in voxels.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "MeanVelocity",
			usage: `
              MeanVelocity is the mean speed of a walker [m/s].`,
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "RandomSeed",
			usage: `
              RandomSeed seeds the random number generators of the walkers.
              Calculations with the same seed and inputs give the same
              results regardless of NumThreads.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "TotalWalkLength",
			usage: `
              TotalWalkLength is the path length each walker travels during
              the production walk, in voxels.`,
			defaultVal: 10000.0,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "NumThreads",
			usage: `
              NumThreads is the number of goroutines used for the
              calculation. Values less than 1 or greater than 1000 mean
              that the number of processors will be used.`,
			shorthand:  "t",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags(), surfaceAreaCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the netCDF output file should be
              written. It can be a blob storage location and can include
              environment variables.`,
			shorthand:  "o",
			defaultVal: "porewalk_output.ncf",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which result variables should be
              written to OutputFile. Keys are output names and values are
              expressions of result variables (for example, "Dx * 2") or
              of the functions exp(), sum(), and mean(). When set from the
              command line it should be a JSON object.`,
			defaultVal: map[string]string{
				"Tx":       "Tx",
				"Ty":       "Ty",
				"Tz":       "Tz",
				"Dx":       "Dx",
				"Dy":       "Dy",
				"Dz":       "Dz",
				"MIL":      "MIL",
				"Porosity": "Porosity",
				"MSDx":     "MSDx",
				"MSDy":     "MSDy",
				"MSDz":     "MSDz",
				"Time":     "Time",
			},
			flagsets: []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              logfile will be saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is an optional path where a plot of mean squared
              displacement against time should be saved. The image format
              is taken from the file extension (for example .png or .svg).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "ResultFile",
			usage: `
              ResultFile is an optional path where the complete result
              should be saved in Go's gob format for later analysis.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
		{
			name: "SurfaceAreaMethod",
			usage: `
              SurfaceAreaMethod is the method used to calculate the pore
              surface area: either 'voxel', which counts exposed voxel
              faces, or 'marchingcubes', which sums the areas of the
              isosurface triangles.`,
			defaultVal: porewalk.MarchingCubesMethod.String(),
			flagsets:   []*pflag.FlagSet{surfaceAreaCmd.Flags()},
		},
		{
			name: "SurfaceCacheSize",
			usage: `
              SurfaceCacheSize is the number of surface caches kept in memory
              between calculations.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{tortuosityCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("POREWALK")
	Cfg.AutomaticEnv()

	for _, o := range options {
		o.addFlag(o.flagsets[0])
		flag := o.flagsets[0].Lookup(o.name)
		for _, set := range o.flagsets[1:] {
			set.AddFlag(flag)
		}
		Cfg.BindPFlag(o.name, flag)
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(configCmd)
	Root.AddCommand(tortuosityCmd)
	Root.AddCommand(porosityCmd)
	Root.AddCommand(surfaceAreaCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("porewalk: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "porewalk",
	Short: "Random-walk tortuosity of porous media.",
	Long: `PoreWalk calculates the tortuosity and effective diffusivity of the
pore space in three-dimensional grayscale images using a Monte-Carlo
random walk. Use the subcommands specified below to access the model
functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'POREWALK_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PoreWalk.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PoreWalk v%s\n", porewalk.Version)
	},
	DisableAutoGenTag: true,
}

// configCmd prints the configuration in TOML format, which can be used
// as a starting point for a configuration file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long: `config prints the current configuration, including default values,
in TOML format. The output can be saved and used with the --config flag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfig(cmd.OutOrStdout(), Cfg)
	},
	DisableAutoGenTag: true,
}

// tortuosityCmd is a command that calculates tortuosity.
var tortuosityCmd = &cobra.Command{
	Use:   "tortuosity",
	Short: "Calculate tortuosity and diffusivity",
	Long: `tortuosity calculates the diffusion coefficient, diffusivity, and
tortuosity of the pore space of the image in InputFile along each axis
and writes the variables in OutputVariables to OutputFile.

	Result variables available in OutputVariables:
	Dx, Dy, Dz: Diffusion coefficients [m² s⁻¹]
	Diffx, Diffy, Diffz: Diffusivities [-]
	Tx, Ty, Tz: Tortuosities [-]
	FitDx, FitDy, FitDz: Least-squares diffusion coefficients [m² s⁻¹]
	R2x, R2y, R2z: Coefficients of determination of the least-squares fits [-]
	MIL: Mean intercept length of the pore space [m]
	Dp: Bosanquet diffusion coefficient [m² s⁻¹]
	Porosity: Pore fraction of the image [-]
	WalkerCount, Skipped: Numbers of valid and discarded walkers
	MSDx, MSDy, MSDz: Mean squared displacement for each interval [m²]
	Time: Mean elapsed time for each interval [s]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		outputVars, err = checkOutputVars(outputVars)
		if err != nil {
			return err
		}
		cutoff, err := getCutoff(Cfg)
		if err != nil {
			return err
		}
		return Tortuosity(
			cmd,
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputFile),
			os.ExpandEnv(Cfg.GetString("InputFile")),
			os.ExpandEnv(Cfg.GetString("Variable")),
			Cfg.GetFloat64("VoxelLength"),
			cutoff,
			Cfg.GetInt("NumParticles"),
			Cfg.GetFloat64("MeanFreePath"),
			Cfg.GetFloat64("MeanVelocity"),
			int64(Cfg.GetInt("RandomSeed")),
			Cfg.GetFloat64("TotalWalkLength"),
			Cfg.GetInt("NumThreads"),
			outputFile,
			outputVars,
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			os.ExpandEnv(Cfg.GetString("ResultFile")),
			Cfg.GetInt("SurfaceCacheSize"),
		)
	},
	DisableAutoGenTag: true,
}

// porosityCmd is a command that calculates porosity.
var porosityCmd = &cobra.Command{
	Use:   "porosity",
	Short: "Calculate porosity",
	Long: `porosity prints the fraction of voxels in the image in InputFile whose
grayscale values fall within Cutoff.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := getCutoff(Cfg)
		if err != nil {
			return err
		}
		return Porosity(
			cmd,
			os.ExpandEnv(Cfg.GetString("InputFile")),
			os.ExpandEnv(Cfg.GetString("Variable")),
			Cfg.GetFloat64("VoxelLength"),
			cutoff,
		)
	},
	DisableAutoGenTag: true,
}

// surfaceAreaCmd is a command that calculates the pore surface area.
var surfaceAreaCmd = &cobra.Command{
	Use:   "surfacearea",
	Short: "Calculate pore surface area",
	Long: `surfacearea prints the area [m²] of the interface between the pore
space and the solid in the image in InputFile, calculated using
SurfaceAreaMethod.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := getCutoff(Cfg)
		if err != nil {
			return err
		}
		method, err := porewalk.ParseSurfaceAreaMethod(os.ExpandEnv(Cfg.GetString("SurfaceAreaMethod")))
		if err != nil {
			return err
		}
		return SurfaceArea(
			cmd,
			os.ExpandEnv(Cfg.GetString("InputFile")),
			os.ExpandEnv(Cfg.GetString("Variable")),
			Cfg.GetFloat64("VoxelLength"),
			cutoff,
			method,
			Cfg.GetInt("NumThreads"),
		)
	},
	DisableAutoGenTag: true,
}

// writeConfig writes the value of every option in cfg to w in TOML
// format.
func writeConfig(w io.Writer, cfg *viper.Viper) error {
	c := make(map[string]interface{})
	for _, o := range options {
		if o.name == "config" {
			continue
		}
		switch o.defaultVal.(type) {
		case []int:
			v, err := toIntSliceE(cfg.Get(o.name))
			if err != nil {
				return fmt.Errorf("porewalk: %s: %v", o.name, err)
			}
			c[o.name] = v
		case map[string]string:
			v, err := GetStringMapString(o.name, cfg)
			if err != nil {
				return err
			}
			c[o.name] = v
		case int:
			c[o.name] = cfg.GetInt(o.name)
		case float64:
			c[o.name] = cfg.GetFloat64(o.name)
		default:
			c[o.name] = cfg.GetString(o.name)
		}
	}
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("porewalk: writing configuration: %v", err)
	}
	return nil
}
