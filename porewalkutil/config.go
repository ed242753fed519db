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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/porewalk"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.ncf")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		if _, _, err := openBlob(context.TODO(), f); err != nil {
			return f, fmt.Errorf("porewalk: error when checking OutputFile location: %v", err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("porewalk: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified. Log files are always written locally, so a blob storage
// output location gives a log file in the working directory.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		if IsBlob(outputFile) {
			outputFile = filepath.Base(outputFile)
		}
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// getCutoff reads the pore cutoff from cfg.
func getCutoff(cfg *viper.Viper) (porewalk.Cutoff, error) {
	c, err := toIntSliceE(cfg.Get("Cutoff"))
	if err != nil {
		return porewalk.Cutoff{}, fmt.Errorf("porewalk: reading 'Cutoff': %v", err)
	}
	if len(c) != 2 {
		return porewalk.Cutoff{}, fmt.Errorf("porewalk: 'Cutoff' must have 2 values but has %d", len(c))
	}
	cutoff := porewalk.Cutoff{Low: c[0], High: c[1]}
	if err := cutoff.Check(); err != nil {
		return cutoff, err
	}
	return cutoff, nil
}

// toIntSliceE converts a configuration value to a slice of ints,
// accounting for the fact that it might be JSON if it was set from
// a command line argument.
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case []interface{}:
		o := make([]int, len(v))
		for i, val := range v {
			var err error
			if o[i], err = cast.ToIntE(val); err != nil {
				return nil, err
			}
		}
		return o, nil
	case string:
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToIntSliceE(s)
	}
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return make(map[string]string), nil
		}
		b := bytes.NewBuffer([]byte(v))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("porewalk: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for GetStringMapString variable %s: %#v", varName, i)
	}
}
