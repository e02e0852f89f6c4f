package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	tp, err := NewTracerProvider(t.Context(), Config{Enabled: false}, zaptest.NewLogger(t))

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Nil(t, tp.provider)
	assert.NoError(t, tp.Shutdown(t.Context()))
}

func TestSamplerForRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{0.0, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.TraceIDRatioBased(0.25).Description()},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, samplerFor(tt.ratio).Description())
	}
}
