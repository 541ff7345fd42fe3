// Package metrics exposes Prometheus collectors for file operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Uploads counts upload attempts by outcome: accepted, rejected, failed.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cubby_uploads_total",
		Help: "Upload attempts by outcome.",
	}, []string{"outcome"})

	// UploadBytes tracks the size distribution of accepted uploads.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cubby_upload_bytes",
		Help:    "Size in bytes of accepted uploads.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 9), // 1 KiB .. 64 MiB
	})

	// Downloads counts issued download URLs.
	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cubby_downloads_total",
		Help: "Presigned download URLs issued.",
	})

	// Views counts issued inline view URLs.
	Views = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cubby_views_total",
		Help: "Presigned inline view URLs issued.",
	})

	// Deletes counts completed file deletions.
	Deletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cubby_deletes_total",
		Help: "Files deleted from the catalog.",
	})

	// StoreFailures counts object store operations that failed, by operation.
	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cubby_store_failures_total",
		Help: "Object store operations that returned an error.",
	}, []string{"op"})
)
