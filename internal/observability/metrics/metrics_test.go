package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("operation", "create"),
		attribute.String("user_id", "456"),
		attribute.String("reason", "out_of_range"),
	)
	assert.Len(t, attrs, 2)

	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("operation"))
	assert.Contains(t, keys, attribute.Key("reason"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSongSaved(context.Background(), "create")
		m.RecordLedgerRejection(context.Background(), "unbalanced_ledger")
		m.RecordCatalogCache(context.Background(), true)
	})
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoop()
	assert.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.RecordCatalogLookup(context.Background(), "spotify", "ok")
		m.RecordStatusChange(context.Background(), "approved")
	})
}
