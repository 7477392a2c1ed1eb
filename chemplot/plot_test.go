/*
 * plot_test.go, part of pcore.
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

/*This provides some tests for the library functions requiring gonum/plot*/

package chemplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingHistogram(Te *testing.T) {
	ms := []float64{1.2, 1.5, 1.1, 2.8, 1.3, 1.4, 1.2, 0.9}
	name := filepath.Join(Te.TempDir(), "timing.png")
	require.NoError(Te, TimingHistogram(ms, "Matching time", name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.True(Te, info.Size() > 0)
	series := filepath.Join(Te.TempDir(), "series.svg")
	require.NoError(Te, TimingSeries(ms, "Matching time", series))
}

func TestTimingHistogramErrors(Te *testing.T) {
	dir := Te.TempDir()
	assert.Error(Te, TimingHistogram(nil, "empty", filepath.Join(dir, "a.png")))
	assert.Error(Te, TimingHistogram([]float64{1}, "noext", filepath.Join(dir, "plot")))
}
