package metrics

import (
	"testing"

	"blooddonor/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DonorRegistered(types.BloodTypeOPositive)
	m.DonorRegistered(types.BloodTypeOPositive)
	m.DirectoryFailure("list")
	m.Search("empty")
	m.SignIn("invalid")
	m.HTTPRequest("GET", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DonorsRegistered.WithLabelValues("O+")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryFailures.WithLabelValues("list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignIns.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.DonorRegistered(types.BloodTypeONegative)
		m.DirectoryFailure("update")
		m.Search("stale")
		m.SignIn("success")
		m.HTTPRequest("POST", 500)
	})
}
