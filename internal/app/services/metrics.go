package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

const (
	outcomeSuccess     = "success"
	outcomeClientError = "client_error"
	outcomeServerError = "server_error"
)

var (
	fileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lorebase_file_operations_total",
			Help: "File operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	fileBytesStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lorebase_file_bytes_stored_total",
		Help: "Bytes of file content published to disk.",
	})

	fileCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lorebase_file_compensations_total",
			Help: "Metadata rollbacks after a committed upload could not be published.",
		},
		[]string{"result"},
	)

	catalogCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lorebase_file_type_cache_hits_total",
		Help: "File type catalog cache hits.",
	})
	catalogCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lorebase_file_type_cache_misses_total",
		Help: "File type catalog cache misses.",
	})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case apperrors.IsClientError(err):
		return outcomeClientError
	default:
		return outcomeServerError
	}
}

func observeFileOperation(operation string, err error) {
	fileOperationsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
}
