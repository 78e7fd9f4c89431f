package metrics

import (
	"strconv"

	"blooddonor/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the application.
// A nil *Metrics records nothing.
type Metrics struct {
	DonorsRegistered  *prometheus.CounterVec
	DirectoryFailures *prometheus.CounterVec
	Searches          *prometheus.CounterVec
	SignIns           *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DonorsRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blooddonor_donors_registered_total",
			Help: "Donor self-registrations accepted by the directory",
		}, []string{"blood_type"}),
		DirectoryFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blooddonor_directory_failures_total",
			Help: "Directory store calls that failed",
		}, []string{"op"}),
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blooddonor_searches_total",
			Help: "Donor searches by outcome",
		}, []string{"outcome"}),
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blooddonor_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blooddonor_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) DonorRegistered(bloodType types.BloodType) {
	if m == nil {
		return
	}
	m.DonorsRegistered.WithLabelValues(string(bloodType)).Inc()
}

func (m *Metrics) DirectoryFailure(op string) {
	if m == nil {
		return
	}
	m.DirectoryFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Search(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
