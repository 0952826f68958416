// Package metrics exposes the prometheus instruments for partition builds
// and tree mutations. promauto registers everything against the default
// registry, so importing packages just increment.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PartitionsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgraph_partitions_built_total",
			Help: "Total number of edge partitions constructed",
		},
	)

	EdgesAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgraph_edges_added_total",
			Help: "Total number of edges inserted through addEdges",
		},
	)

	EdgesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgraph_edges_removed_total",
			Help: "Total number of edges deleted through removeEdges",
		},
	)

	TreesGrown = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgraph_trees_grown_total",
			Help: "Total number of matrix grow operations",
		},
	)

	TreesTrimmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgraph_trees_trimmed_total",
			Help: "Total number of matrix trim operations",
		},
	)

	// LiveEdges tracks the edge population across all partitions built by
	// this process.
	LiveEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pkgraph_live_edges",
			Help: "Edges currently held across constructed partitions",
		},
	)
)
