package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/agbru/fibseq/internal/sequence"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

// The engine records its spans through the global provider.
func TestEngineSpansAreExported(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	exporter := tracetest.NewInMemoryExporter()
	shutdown := install(sdktrace.WithSyncer(exporter), resource.Empty())
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	req, err := sequence.ParseRequest("50", "", "")
	require.NoError(t, err)
	_, err = sequence.NewEngine(sequence.Options{}).Compute(context.Background(), req)
	require.NoError(t, err)
	_, err = sequence.Term(context.Background(), 50, nil, nil, sequence.TermOptions{})
	require.NoError(t, err)

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "sequence.Compute")
	assert.Contains(t, names, "sequence.Term")
}
