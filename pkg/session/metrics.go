package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts session outcomes. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Resolutions *prometheus.CounterVec
	Logins      *prometheus.CounterVec
	Logouts     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessionkit",
			Subsystem: "session",
			Name:      "resolutions_total",
			Help:      "Session resolutions by resulting state and source.",
		}, []string{"state", "source"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessionkit",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sessionkit",
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Logouts.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Resolutions, m.Logins, m.Logouts} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) resolved(state State, source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "none"
	}
	m.Resolutions.WithLabelValues(state.String(), source).Inc()
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}
