package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors.
// Each instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	UsersRegistered prometheus.Counter
	Logins          prometheus.Counter
	AuthFailures    *prometheus.CounterVec
	TokenRejections *prometheus.CounterVec
	TasksChanged    *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "todo_users_registered_total",
			Help: "Total number of users registered through the auth endpoint",
		}),
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "todo_logins_total",
			Help: "Total number of successful logins of existing users",
		}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_auth_failures_total",
			Help: "Total number of failed auth attempts by reason",
		}, []string{"reason"}),
		TokenRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_token_rejections_total",
			Help: "Total number of rejected bearer tokens by reason",
		}, []string{"reason"}),
		TasksChanged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_tasks_changed_total",
			Help: "Total number of task mutations by operation",
		}, []string{"op"}),
	}
}

// IncrementRegistered records a new user.
func (m *Metrics) IncrementRegistered() {
	m.UsersRegistered.Inc()
}

// IncrementLogin records a successful login.
func (m *Metrics) IncrementLogin() {
	m.Logins.Inc()
}

// IncrementAuthFailure records a failed login-or-register attempt.
func (m *Metrics) IncrementAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// IncrementTokenRejection records a bearer token that failed verification.
func (m *Metrics) IncrementTokenRejection(reason string) {
	m.TokenRejections.WithLabelValues(reason).Inc()
}

// IncrementTaskChanged records a task mutation.
func (m *Metrics) IncrementTaskChanged(op string) {
	m.TasksChanged.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
