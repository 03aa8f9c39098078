package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributes(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/songs"),
		attribute.String("session_token", "abc"),
		attribute.String("long", strings.Repeat("x", 400)),
	)
	assert.Len(t, attrs, 2)
	assert.Len(t, attrs[1].Value.AsString(), maxAttributeLength)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("persistence_failure")), "persistence_failure")
	assert.EqualError(t, SafeError(errors.New("bad password for user")), "redacted error")
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	_, err := newExporter("thrift", "collector:4317")
	assert.ErrorContains(t, err, "thrift")
}
