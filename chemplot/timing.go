/*
 * timing.go, part of pcore.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package chemplot produces plots of the timing data collected during a screening run.
package chemplot

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//DefaultBins is the number of bins used by TimingHistogram when the data allows it.
const DefaultBins = 30

func basicTimingPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//checks that the plot can be saved with the given name, and that there is data.
func checkPlot(ms []float64, plotname string) error {
	if len(ms) == 0 {
		return fmt.Errorf("chemplot: no timing data to plot")
	}
	if filepath.Ext(plotname) == "" {
		return fmt.Errorf("chemplot: the plot name %q has no extension, so the format can't be determined", plotname)
	}
	return nil
}

//TimingHistogram plots a histogram of the durations in ms (in milliseconds) and saves it
//to plotname. The format is given by the extension of plotname (png, svg, pdf...).
//The title of the plot includes the mean and standard deviation of the data.
func TimingHistogram(ms []float64, title, plotname string) error {
	if err := checkPlot(ms, plotname); err != nil {
		return err
	}
	mean, std := stat.MeanStdDev(ms, nil)
	if len(ms) < 2 {
		std = 0
	}
	p := basicTimingPlot(fmt.Sprintf("%s (%.3f ± %.3f ms)", title, mean, std), "Time (ms)", "Count")
	bins := DefaultBins
	if len(ms) < bins {
		bins = len(ms)
	}
	h, err := plotter.NewHist(plotter.Values(ms), bins)
	if err != nil {
		return fmt.Errorf("chemplot: can't build histogram: %w", err)
	}
	p.Add(h)
	return p.Save(5*vg.Inch, 4*vg.Inch, plotname)
}

//TimingSeries plots the durations in ms (milliseconds) in the order they were
//measured, and saves the plot to plotname.
func TimingSeries(ms []float64, title, plotname string) error {
	if err := checkPlot(ms, plotname); err != nil {
		return err
	}
	p := basicTimingPlot(title, "Call", "Time (ms)")
	pts := make(plotter.XYs, len(ms))
	for i, v := range ms {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("chemplot: can't build the series: %w", err)
	}
	p.Add(l)
	return p.Save(6*vg.Inch, 4*vg.Inch, plotname)
}
