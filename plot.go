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
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotMSD writes a plot of the mean squared displacement along each
// axis against elapsed time to w. format is the image format, for
// example "png" or "svg".
func PlotMSD(r *Result, w io.Writer, format string) error {
	if !r.Valid() || len(r.Time) == 0 {
		return fmt.Errorf("porewalk: no mean squared displacement data to plot")
	}
	p := plot.New()
	p.Title.Text = "Mean squared displacement"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "MSD (m²)"

	var lines []interface{}
	for a, name := range []string{"x", "y", "z"} {
		xy := make(plotter.XYs, len(r.Time))
		for i, t := range r.Time {
			xy[i].X = t
			xy[i].Y = r.MSD[a][i]
		}
		lines = append(lines, name, xy)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("porewalk: plotting mean squared displacement: %v", err)
	}
	p.Y.Min = 0

	wt, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("porewalk: plotting mean squared displacement: %v", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return fmt.Errorf("porewalk: writing plot: %v", err)
	}
	return nil
}
