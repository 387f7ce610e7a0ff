package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voyage_service",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	energyChargedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyage_service",
		Subsystem: "ledger",
		Name:      "energy_charged_kwh_total",
		Help:      "Cumulative energy charged into reserves, labelled by category.",
	}, []string{"category"})
	energyDeployedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyage_service",
		Subsystem: "ledger",
		Name:      "energy_deployed_kwh_total",
		Help:      "Cumulative energy deployed from reserves, labelled by category.",
	}, []string{"category"})
	legsCompletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voyage_service",
		Subsystem: "journey",
		Name:      "legs_completed_total",
		Help:      "Total journey legs completed across all tenants.",
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, energyChargedCounter, energyDeployedCounter, legsCompletedCounter)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordEnergyCharged increments the charged-energy counter for a category.
func RecordEnergyCharged(category string, kwh float64) {
	energyChargedCounter.WithLabelValues(category).Add(kwh)
}

// RecordEnergyDeployed increments the deployed-energy counter for a category.
func RecordEnergyDeployed(category string, kwh float64) {
	energyDeployedCounter.WithLabelValues(category).Add(kwh)
}

// RecordLegCompleted increments the completed-legs counter.
func RecordLegCompleted() {
	legsCompletedCounter.Inc()
}
