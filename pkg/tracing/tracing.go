package tracing

import (
	"fmt"
	"net/http"
	"strings"

	"contrib.go.opencensus.io/exporter/aws"
	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/stackdriver"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

type traceExporterFactory func(cfg *config.TracingConfig) (trace.Exporter, error)

type metricsExporterFactory func(cfg *config.TracingConfig, log logger.Logger) (view.Exporter, error)

var traceExporters = map[string]traceExporterFactory{
	"jaeger":      newJaegerExporter,
	"zipkin":      newZipkinExporter,
	"stackdriver": newStackdriverExporter,
	"datadog":     newDatadogExporter,
	"xray":        newXRayExporter,
}

var metricsExporters = map[string]metricsExporterFactory{
	"prometheus": newPrometheusExporter,
	"stackdriver": func(cfg *config.TracingConfig, _ logger.Logger) (view.Exporter, error) {
		e, err := stackdriverExporter(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	},
	"datadog": func(cfg *config.TracingConfig, _ logger.Logger) (view.Exporter, error) {
		e, err := datadogExporter(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	},
}

// Init configures sampling, the trace exporter and the metrics exporters
// named in cfg and registers the HTTP, SQL and mailer views. It is a no-op
// when tracing is disabled.
func Init(cfg *config.TracingConfig, log logger.Logger) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	if name := normalize(cfg.TraceExporter); name != "" {
		factory, ok := traceExporters[name]
		if !ok {
			return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
		}
		exporter, err := factory(cfg)
		if err != nil {
			return fmt.Errorf("failed to create %s trace exporter: %w", name, err)
		}
		trace.RegisterExporter(exporter)
		log.WithField("exporter", name).Info("Trace exporter registered")
	}

	for _, name := range metricsExporterNames(cfg.MetricsExporter) {
		factory, ok := metricsExporters[name]
		if !ok {
			return fmt.Errorf("unsupported metrics exporter: %s", name)
		}
		exporter, err := factory(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to create %s metrics exporter: %w", name, err)
		}
		view.RegisterExporter(exporter)
		log.WithField("exporter", name).Info("Metrics exporter registered")
	}

	if err := RegisterViews(); err != nil {
		return err
	}
	return nil
}

// RegisterViews registers the HTTP server, database and mailer views
func RegisterViews() error {
	if err := view.Register(ochttp.DefaultServerViews...); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}
	if err := view.Register(ocsql.DefaultViews...); err != nil {
		return fmt.Errorf("failed to register database views: %w", err)
	}
	if err := view.Register(MailerViews...); err != nil {
		return fmt.Errorf("failed to register mailer views: %w", err)
	}
	return nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "none" {
		return ""
	}
	return name
}

// metricsExporterNames splits a comma separated exporter list
func metricsExporterNames(list string) []string {
	var names []string
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		name := normalize(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func newJaegerExporter(cfg *config.TracingConfig) (trace.Exporter, error) {
	if cfg.JaegerEndpoint == "" {
		return nil, fmt.Errorf("jaeger endpoint is required")
	}
	e, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		ServiceName:       cfg.ServiceName,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
		},
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newZipkinExporter(cfg *config.TracingConfig) (trace.Exporter, error) {
	if cfg.ZipkinEndpoint == "" {
		return nil, fmt.Errorf("zipkin endpoint is required")
	}
	reporter := zipkinhttp.NewReporter(cfg.ZipkinEndpoint)
	return zipkin.NewExporter(reporter, nil), nil
}

func newStackdriverExporter(cfg *config.TracingConfig) (trace.Exporter, error) {
	e, err := stackdriverExporter(cfg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// stackdriverExporter serves both traces and metrics
func stackdriverExporter(cfg *config.TracingConfig) (*stackdriver.Exporter, error) {
	if cfg.StackdriverProjectID == "" {
		return nil, fmt.Errorf("stackdriver project id is required")
	}
	return stackdriver.NewExporter(stackdriver.Options{
		ProjectID:    cfg.StackdriverProjectID,
		MetricPrefix: cfg.ServiceName,
	})
}

func newDatadogExporter(cfg *config.TracingConfig) (trace.Exporter, error) {
	e, err := datadogExporter(cfg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func datadogExporter(cfg *config.TracingConfig) (*datadog.Exporter, error) {
	if cfg.DatadogAgentAddress == "" {
		return nil, fmt.Errorf("datadog agent address is required")
	}
	opts := datadog.Options{
		Service:   cfg.ServiceName,
		TraceAddr: cfg.DatadogAgentAddress,
		StatsAddr: cfg.DatadogAgentAddress,
		Tags:      []string{"env:" + cfg.Environment},
	}
	if cfg.DatadogAPIKey != "" {
		opts.GlobalTags = map[string]interface{}{"api_key": cfg.DatadogAPIKey}
	}
	return datadog.NewExporter(opts)
}

func newXRayExporter(cfg *config.TracingConfig) (trace.Exporter, error) {
	if cfg.XRayRegion == "" {
		return nil, fmt.Errorf("aws region is required for x-ray")
	}
	e, err := aws.NewExporter(
		aws.WithRegion(cfg.XRayRegion),
		aws.WithVersion("latest"),
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// newPrometheusExporter also serves /metrics on PrometheusPort when set
func newPrometheusExporter(cfg *config.TracingConfig, log logger.Logger) (view.Exporter, error) {
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: strings.ReplaceAll(cfg.ServiceName, "-", "_"),
		OnError: func(err error) {
			log.Error(fmt.Sprintf("Prometheus exporter error: %v", err))
		},
	})
	if err != nil {
		return nil, err
	}

	if cfg.PrometheusPort > 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", pe)
			addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
			log.WithField("addr", addr).Info("Starting Prometheus metrics server")
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				log.Error(fmt.Sprintf("Prometheus metrics server stopped: %v", err))
			}
		}()
	}
	return pe, nil
}
