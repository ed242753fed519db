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

package porewalk

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// voxelLengthAttribute is the netCDF attribute holding the voxel edge
// length [m].
const voxelLengthAttribute = "voxelLength"

// LoadField reads three-dimensional variable from the netCDF file in rw.
// The dimensions of the variable are interpreted as (x, y, z). If
// voxelLength is not positive, it is read from the variable's
// "voxelLength" attribute or the global attribute of the same name.
func LoadField(rw cdf.ReaderWriterAt, variable string, voxelLength float64) (*Field, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("porewalk: opening field file: %v", err)
	}
	dims := f.Header.Lengths(variable)
	if dims == nil {
		return nil, fmt.Errorf("porewalk: variable '%s' is not in the field file; available variables are %v",
			variable, f.Header.Variables())
	}
	if len(dims) != 3 {
		return nil, fmt.Errorf("porewalk: variable '%s' has %d dimensions but needs 3", variable, len(dims))
	}
	n := dims[0] * dims[1] * dims[2]

	r := f.Reader(variable, nil, nil)
	buf := r.Zero(n)
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("porewalk: reading variable '%s': %v", variable, err)
	}

	data := sparse.ZerosDense(dims...)
	switch v := buf.(type) {
	case []uint8:
		for i, val := range v {
			data.Elements[i] = float64(val)
		}
	case []int16:
		for i, val := range v {
			data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range v {
			data.Elements[i] = float64(val)
		}
	case []float32:
		for i, val := range v {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, v)
	default:
		return nil, fmt.Errorf("porewalk: variable '%s' has unsupported type %T", variable, buf)
	}

	if !(voxelLength > 0) {
		voxelLength = attributeFloat(f.Header, variable, voxelLengthAttribute)
	}
	if !(voxelLength > 0) {
		voxelLength = attributeFloat(f.Header, "", voxelLengthAttribute)
	}
	if !(voxelLength > 0) {
		return nil, fmt.Errorf("porewalk: voxel length is not specified and is not in the field file")
	}
	return &Field{Data: data, Length: voxelLength}, nil
}

func attributeFloat(h *cdf.Header, variable, attribute string) float64 {
	switch v := h.GetAttribute(variable, attribute).(type) {
	case []float64:
		if len(v) > 0 {
			return v[0]
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0])
		}
	}
	return math.NaN()
}

// SaveField writes field to w in netCDF format as a variable with the
// given name and dimensions (x, y, z).
func SaveField(w cdf.ReaderWriterAt, field GrayscaleField, variable string) error {
	nx, ny, nz := field.X(), field.Y(), field.Z()
	h := cdf.NewHeader([]string{"x", "y", "z"}, []int{nx, ny, nz})
	h.AddVariable(variable, []string{"x", "y", "z"}, []float32{0})
	h.AddAttribute(variable, "description", "Grayscale intensity")
	h.AddAttribute(variable, voxelLengthAttribute, []float64{field.VoxelLength()})
	h.AddAttribute("", voxelLengthAttribute, []float64{field.VoxelLength()})
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("porewalk: field file header: %v", errs)
	}
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("porewalk: creating field file: %v", err)
	}
	data := make([]float32, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				data = append(data, float32(field.Get(i, j, k)))
			}
		}
	}
	if _, err = f.Writer(variable, nil, nil).Write(data); err != nil {
		return fmt.Errorf("porewalk: writing field: %v", err)
	}
	return nil
}

var (
	diffusionDims = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	areaDims      = unit.Dimensions{unit.LengthDim: 2}
	lengthDims    = unit.Dimensions{unit.LengthDim: 1}
	timeDims      = unit.Dimensions{unit.TimeDim: 1}
)

// resultVariable is a variable of a Result that can be used in an
// output expression.
type resultVariable struct {
	value func(r *Result) interface{}
	dims  unit.Dimensions
}

func scalar(f func(r *Result) float64, dims unit.Dimensions) resultVariable {
	return resultVariable{value: func(r *Result) interface{} { return f(r) }, dims: dims}
}

func series(f func(r *Result) []float64, dims unit.Dimensions) resultVariable {
	return resultVariable{value: func(r *Result) interface{} { return f(r) }, dims: dims}
}

// resultVariables holds the variables available in output expressions.
var resultVariables = map[string]resultVariable{
	"Dx":          scalar(func(r *Result) float64 { return r.DiffusionCoefficient[0] }, diffusionDims),
	"Dy":          scalar(func(r *Result) float64 { return r.DiffusionCoefficient[1] }, diffusionDims),
	"Dz":          scalar(func(r *Result) float64 { return r.DiffusionCoefficient[2] }, diffusionDims),
	"Diffx":       scalar(func(r *Result) float64 { return r.Diffusivity[0] }, unit.Dimless),
	"Diffy":       scalar(func(r *Result) float64 { return r.Diffusivity[1] }, unit.Dimless),
	"Diffz":       scalar(func(r *Result) float64 { return r.Diffusivity[2] }, unit.Dimless),
	"Tx":          scalar(func(r *Result) float64 { return r.Tortuosity[0] }, unit.Dimless),
	"Ty":          scalar(func(r *Result) float64 { return r.Tortuosity[1] }, unit.Dimless),
	"Tz":          scalar(func(r *Result) float64 { return r.Tortuosity[2] }, unit.Dimless),
	"FitDx":       scalar(func(r *Result) float64 { return r.FitDiffusionCoefficient[0] }, diffusionDims),
	"FitDy":       scalar(func(r *Result) float64 { return r.FitDiffusionCoefficient[1] }, diffusionDims),
	"FitDz":       scalar(func(r *Result) float64 { return r.FitDiffusionCoefficient[2] }, diffusionDims),
	"R2x":         scalar(func(r *Result) float64 { return r.FitR2[0] }, unit.Dimless),
	"R2y":         scalar(func(r *Result) float64 { return r.FitR2[1] }, unit.Dimless),
	"R2z":         scalar(func(r *Result) float64 { return r.FitR2[2] }, unit.Dimless),
	"MIL":         scalar(func(r *Result) float64 { return r.MeanInterceptLength * r.VoxelLength }, lengthDims),
	"Porosity":    scalar(func(r *Result) float64 { return r.Porosity }, unit.Dimless),
	"Dp":          scalar(func(r *Result) float64 { return r.BosanquetDiffusionCoefficient }, diffusionDims),
	"WalkerCount": scalar(func(r *Result) float64 { return float64(r.WalkerCount) }, unit.Dimless),
	"Skipped":     scalar(func(r *Result) float64 { return float64(r.SkippedWalkers) }, unit.Dimless),
	"MSDx":        series(func(r *Result) []float64 { return r.MSD[0] }, areaDims),
	"MSDy":        series(func(r *Result) []float64 { return r.MSD[1] }, areaDims),
	"MSDz":        series(func(r *Result) []float64 { return r.MSD[2] }, areaDims),
	"Time":        series(func(r *Result) []float64 { return r.Time }, timeDims),
}

// ResultVariables returns the names of the variables that can be used
// in output expressions.
func ResultVariables() []string {
	names := make([]string, 0, len(resultVariables))
	for n := range resultVariables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Outputter is a holder for output parameters.
//
// outputVariables maps the names of the variables for which data
// should be written to expressions that define how the data should be
// calculated from the variables of a Result (see ResultVariables)
// and functions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	expressions     map[string]*govaluate.EvaluableExpression
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'sum(x)' which sums a series variable across all intervals.
//
// 'mean(x)' which averages a series variable across all intervals.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("porewalk: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			x, ok := arg[0].(float64)
			if !ok {
				return nil, fmt.Errorf("porewalk: argument to function 'exp' must be a scalar")
			}
			return math.Exp(x), nil
		},
		"sum": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("porewalk: got %d arguments for function 'sum', but needs 1", len(arg))
			}
			x, ok := arg[0].([]float64)
			if !ok {
				return nil, fmt.Errorf("porewalk: argument to function 'sum' must be a series")
			}
			return floats.Sum(x), nil
		},
		"mean": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("porewalk: got %d arguments for function 'mean', but needs 1", len(arg))
			}
			x, ok := arg[0].([]float64)
			if !ok {
				return nil, fmt.Errorf("porewalk: argument to function 'mean' must be a series")
			}
			return stat.Mean(x, nil), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
		outputFunctions: defaultOutputFuncs,
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	for name, expr := range outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("porewalk: output variable '%s': %v", name, err)
		}
		for _, v := range expression.Vars() {
			if _, ok := resultVariables[v]; !ok {
				return nil, fmt.Errorf("porewalk: output variable '%s': undefined variable name '%s'", name, v)
			}
		}
		o.expressions[name] = expression
	}
	return o, nil
}

// checkOutputNames checks that output variable names are valid netCDF
// variable names.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		if !valid.MatchString(key) {
			return fmt.Errorf("porewalk: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Results evaluates the output expressions for r. Scalar outputs are
// returned as slices of length 1.
func (o *Outputter) Results(r *Result) (map[string][]float64, error) {
	params := make(map[string]interface{}, len(resultVariables))
	for name, v := range resultVariables {
		params[name] = v.value(r)
	}
	out := make(map[string][]float64, len(o.expressions))
	for name, expression := range o.expressions {
		val, err := expression.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("porewalk: evaluating output variable '%s': %v", name, err)
		}
		switch v := val.(type) {
		case float64:
			out[name] = []float64{v}
		case []float64:
			out[name] = v
		default:
			return nil, fmt.Errorf("porewalk: output variable '%s' has invalid type %T", name, val)
		}
	}
	return out, nil
}

// units returns the units of the named output variable, which are known
// when its expression is a single result variable.
func (o *Outputter) units(name string) string {
	v, ok := resultVariables[o.outputVariables[name]]
	if !ok {
		return "unknown"
	}
	if s := v.dims.String(); s != "" {
		return s
	}
	return "1"
}

// Quantities returns the scalar variables of r with their physical
// dimensions.
func Quantities(r *Result) map[string]*unit.Unit {
	q := make(map[string]*unit.Unit)
	for name, v := range resultVariables {
		if val, ok := v.value(r).(float64); ok {
			q[name] = unit.New(val, v.dims)
		}
	}
	return q
}

// Output writes the output variables for r to the Outputter's file in
// netCDF format. Scalar variables have dimension "scalar" and series
// variables have dimension "interval".
func (o *Outputter) Output(r *Result) error {
	results, err := o.Results(r)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	h := cdf.NewHeader([]string{"scalar", "interval"}, []int{1, NumIntervals})
	for _, name := range names {
		dim := "scalar"
		if len(results[name]) != 1 {
			if len(results[name]) != NumIntervals {
				return fmt.Errorf("porewalk: output variable '%s' has length %d; it must be 1 or %d",
					name, len(results[name]), NumIntervals)
			}
			dim = "interval"
		}
		h.AddVariable(name, []string{dim}, []float64{0})
		h.AddAttribute(name, "description", o.outputVariables[name])
		h.AddAttribute(name, "units", o.units(name))
	}
	h.AddAttribute("", voxelLengthAttribute, []float64{r.VoxelLength})
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("porewalk: output file header: %v", errs)
	}

	w, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("porewalk: creating output file: %v", err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("porewalk: creating output file: %v", err)
	}
	for _, name := range names {
		if _, err := f.Writer(name, nil, nil).Write(results[name]); err != nil {
			return fmt.Errorf("porewalk: writing output variable '%s': %v", name, err)
		}
	}
	return nil
}
