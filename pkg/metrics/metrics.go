package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Total sync passes attempted, successful or not
	SyncPasses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iam_eks_user_mapper_sync_passes_total",
			Help: "Total number of sync passes attempted",
		},
	)

	// Total failed sync passes, labeled by the phase that failed
	SyncErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_eks_user_mapper_sync_errors_total",
			Help: "Total number of failed sync passes, labeled by phase (fetch, read, write)",
		},
		[]string{"phase"},
	)

	// Number of user entries currently synced into aws-auth
	SyncedUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iam_eks_user_mapper_synced_users",
			Help: "Number of mapUsers entries currently managed by the mapper",
		},
	)

	// Number of role entries currently synced into aws-auth
	SyncedRoles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iam_eks_user_mapper_synced_roles",
			Help: "Number of mapRoles entries currently managed by the mapper",
		},
	)

	// Unix time of the last successful sync pass
	LastSyncTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iam_eks_user_mapper_last_sync_timestamp_seconds",
			Help: "Unix timestamp of the last successful sync pass",
		},
	)
)

// RegisterMetrics registers all custom metrics with the given Prometheus registry
func RegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(SyncPasses, SyncErrors, SyncedUsers, SyncedRoles, LastSyncTimestamp)
}

// IncSyncError increments the error counter for a given phase
func IncSyncError(phase string) {
	SyncErrors.WithLabelValues(phase).Inc()
}

// ObserveSuccess records the outcome of a successful pass
func ObserveSuccess(users, roles int) {
	SyncedUsers.Set(float64(users))
	SyncedRoles.Set(float64(roles))
	LastSyncTimestamp.Set(float64(time.Now().Unix()))
}
