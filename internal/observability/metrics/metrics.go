package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const exportInterval = 10 * time.Second

// Config configures the OTLP meter provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

type counter int

const (
	songsSaved counter = iota
	ledgerRejections
	catalogLookups
	catalogCache
	statusChanges
	counterCount
)

var counterDefs = [counterCount]struct {
	name string
	desc string
}{
	songsSaved:       {"royalti_songs_saved_total", "Songs persisted, by operation."},
	ledgerRejections: {"royalti_ledger_rejections_total", "Saves and previews refused by the royalty ledger, by reason."},
	catalogLookups:   {"royalti_catalog_lookups_total", "Outbound catalog calls, by provider and outcome."},
	catalogCache:     {"royalti_catalog_cache_total", "Catalog cache reads, by outcome."},
	statusChanges:    {"royalti_song_status_changes_total", "Song workflow transitions, by target status."},
}

// Labels allowed on domain counters. Anything else is dropped.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"operation":   {},
	"endpoint":    {},
	"status_code": {},
	"status":      {},
	"provider":    {},
	"outcome":     {},
	"reason":      {},
}

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	counters [counterCount]metric.Int64Counter
}

// NewProvider installs the global meter provider. It is a noop provider
// unless telemetry export is enabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("metrics export enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "royalti"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	for i, def := range counterDefs {
		c, err := meter.Int64Counter(def.name, metric.WithDescription(def.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.name, err)
		}
		m.counters[i] = c
	}
	return m, nil
}

func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

func (m *Metrics) add(ctx context.Context, c counter, attrs ...attribute.KeyValue) {
	if m == nil || m.counters[c] == nil {
		return
	}
	m.counters[c].Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordSongSaved counts a persisted save. operation is create or update.
func (m *Metrics) RecordSongSaved(ctx context.Context, operation string) {
	m.add(ctx, songsSaved, attribute.String("operation", strings.TrimSpace(operation)))
}

func (m *Metrics) RecordLedgerRejection(ctx context.Context, code string) {
	m.add(ctx, ledgerRejections, attribute.String("reason", strings.TrimSpace(code)))
}

func (m *Metrics) RecordCatalogLookup(ctx context.Context, provider, outcome string) {
	m.add(ctx, catalogLookups,
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
}

func (m *Metrics) RecordCatalogCache(ctx context.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.add(ctx, catalogCache, attribute.String("outcome", outcome))
}

func (m *Metrics) RecordStatusChange(ctx context.Context, status string) {
	m.add(ctx, statusChanges, attribute.String("status", strings.TrimSpace(status)))
}

// FilterAttributes keeps only low-cardinality labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := attrs[:0:0]
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch p := strings.ToLower(strings.TrimSpace(protocol)); p {
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", p)
	}
}
