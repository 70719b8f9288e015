package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

func TestInit_Disabled(t *testing.T) {
	require.NoError(t, Init(nil, logger.NewTestLogger(t)))
	require.NoError(t, Init(&config.TracingConfig{Enabled: false, TraceExporter: "bogus"}, logger.NewTestLogger(t)))
}

func TestInit_UnsupportedExporters(t *testing.T) {
	log := logger.NewTestLogger(t)

	err := Init(&config.TracingConfig{Enabled: true, TraceExporter: "carrier"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	err = Init(&config.TracingConfig{Enabled: true, MetricsExporter: "prometheus, graphite"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metrics exporter: graphite")
}

func TestInit_MissingExporterSettings(t *testing.T) {
	log := logger.NewTestLogger(t)

	for _, name := range []string{"jaeger", "zipkin", "stackdriver", "datadog", "xray"} {
		t.Run(name, func(t *testing.T) {
			err := Init(&config.TracingConfig{Enabled: true, TraceExporter: name, SamplingProbability: 1}, log)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to create "+name)
		})
	}
}

func TestInit_NoExporters(t *testing.T) {
	err := Init(&config.TracingConfig{
		Enabled:             true,
		ServiceName:         "ampmailer",
		SamplingProbability: 0.5,
		TraceExporter:       "none",
		MetricsExporter:     "none",
	}, logger.NewTestLogger(t))
	assert.NoError(t, err)
}

func TestMetricsExporterNames(t *testing.T) {
	assert.Equal(t, []string{"prometheus", "stackdriver", "datadog"}, metricsExporterNames("prometheus, Stackdriver,  datadog,, prometheus"))
	assert.Nil(t, metricsExporterNames("none"))
	assert.Nil(t, metricsExporterNames(""))
}

func TestRegisterViews_Twice(t *testing.T) {
	require.NoError(t, RegisterViews())
	require.NoError(t, RegisterViews())
}
