package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the observability surface the services report to.
type Recorder interface {
	ObserveObjectiveMutation(operation, result string)
	ObserveCascade(result string, deletedObjectives, detachedObjectives int64)
	ObserveBatchItem(operation, result string)
}

type Prometheus struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	objectiveMutations  *prometheus.CounterVec
	cascadeDeletions    *prometheus.CounterVec
	cascadeObjectives   *prometheus.CounterVec
	batchItems          *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "okr_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		objectiveMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_objective_mutations_total",
			Help: "Objective create/update/delete attempts by result",
		}, []string{"operation", "result"}),
		cascadeDeletions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_user_cascade_deletions_total",
			Help: "User deletions run through the cascade by result",
		}, []string{"result"}),
		cascadeObjectives: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_user_cascade_objectives_total",
			Help: "Objectives deleted or detached by user deletions",
		}, []string{"effect"}),
		batchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_batch_items_total",
			Help: "Items processed by bulk user operations",
		}, []string{"operation", "result"}),
	}
}

func (p *Prometheus) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	p.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	p.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveObjectiveMutation(operation, result string) {
	p.objectiveMutations.WithLabelValues(operation, result).Inc()
}

func (p *Prometheus) ObserveCascade(result string, deletedObjectives, detachedObjectives int64) {
	p.cascadeDeletions.WithLabelValues(result).Inc()
	p.cascadeObjectives.WithLabelValues("deleted").Add(float64(deletedObjectives))
	p.cascadeObjectives.WithLabelValues("detached").Add(float64(detachedObjectives))
}

func (p *Prometheus) ObserveBatchItem(operation, result string) {
	p.batchItems.WithLabelValues(operation, result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveObjectiveMutation(string, string) {}
func (Nop) ObserveCascade(string, int64, int64)     {}
func (Nop) ObserveBatchItem(string, string)         {}
