package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecomposeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablenorm_decompose_runs_total",
			Help: "Total number of table decompositions",
		},
		[]string{"status"},
	)

	DecomposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablenorm_decompose_duration_seconds",
			Help:    "Duration of table decompositions",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
		},
	)

	RoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablenorm_decompose_rounds_total",
			Help: "Total number of decomposition rounds run",
		},
	)

	CompositeColumnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablenorm_composite_columns_total",
			Help: "Total number of composite columns synthesized",
		},
	)

	TablesExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablenorm_tables_extracted_total",
			Help: "Total number of subtables extracted",
		},
	)

	RowsLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablenorm_rows_loaded_total",
			Help: "Total number of source rows loaded",
		},
		[]string{"source"},
	)

	RowsExportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablenorm_rows_exported_total",
			Help: "Total number of rows written to export targets",
		},
		[]string{"target"},
	)
)

// WriteTextfile writes every registered metric to path in the text
// exposition format read by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
