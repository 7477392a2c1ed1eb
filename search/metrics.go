/*
 * metrics.go, part of pcore.
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

package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

//MetricsNamespace prefixes the names of all the metrics of a scan.
const MetricsNamespace = "pcsearch"

//Metrics is an Observer that keeps the results of a scan as Prometheus metrics, in its own
//registry. They can be dumped in the text format with WriteTextfile, for instance for the
//textfile collector of the node exporter.
type Metrics struct {
	Registry  *prometheus.Registry
	processed prometheus.Counter
	hits      prometheus.Counter
	skipped   *prometheus.CounterVec
	matching  prometheus.Histogram
}

//NewMetrics returns the metrics for a scan with the given query and mode ("mol" or "conf"),
//which are set as constant labels.
func NewMetrics(query, mode string) *Metrics {
	labels := prometheus.Labels{"query": query, "mode": mode}
	M := &Metrics{Registry: prometheus.NewRegistry()}
	M.processed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   MetricsNamespace,
		Name:        "processed_total",
		Help:        "Units (molecules or conformer groups) scanned.",
		ConstLabels: labels,
	})
	M.hits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   MetricsNamespace,
		Name:        "hits_total",
		Help:        "Structures that matched the query.",
		ConstLabels: labels,
	})
	M.skipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   MetricsNamespace,
		Name:        "skipped_total",
		Help:        "Units skipped, by reason.",
		ConstLabels: labels,
	}, []string{"reason"})
	M.matching = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   MetricsNamespace,
		Name:        "match_duration_seconds",
		Help:        "Duration of each call to the pharmacophore matcher.",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	M.Registry.MustRegister(M.processed, M.hits, M.skipped, M.matching)
	return M
}

//Processed implements Observer.
func (M *Metrics) Processed(title string, hits int) {
	M.processed.Inc()
	M.hits.Add(float64(hits))
}

//Skipped implements Observer.
func (M *Metrics) Skipped(title string, reason SkipReason) {
	M.skipped.WithLabelValues(string(reason)).Inc()
}

//Matched implements Observer.
func (M *Metrics) Matched(d time.Duration) {
	M.matching.Observe(d.Seconds())
}

//WriteTextfile writes the metrics to the file name, in the Prometheus text format.
func (M *Metrics) WriteTextfile(name string) error {
	return prometheus.WriteToTextfile(name, M.Registry)
}
