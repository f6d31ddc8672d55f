package util

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestSumMetricValues(t *testing.T) {
	opts := prometheus.CounterOpts{}
	opts.Name = "testo_rows_total"
	opts.Help = "test counter"
	counterVec := prometheus.NewCounterVec(opts, []string{"stream"})
	counterVec.WithLabelValues("cats").Add(3)
	counterVec.WithLabelValues("dogs").Add(4)
	assert.Equal(t, 7.0, SumMetricValues(counterVec))

	gaugeOpts := prometheus.GaugeOpts{}
	gaugeOpts.Name = "testo_pending"
	gaugeOpts.Help = "test gauge"
	gaugeVec := prometheus.NewGaugeVec(gaugeOpts, []string{"stream"})
	gaugeVec.WithLabelValues("cats").Set(2)
	assert.Equal(t, 2.0, SumMetricValues(gaugeVec))
}
