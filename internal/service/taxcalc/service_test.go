package taxcalc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func compute(t *testing.T, sector string, revenue any) map[string]any {
	t.Helper()
	out, err := newTestService().Call(context.Background(), "compute", map[string]any{
		"sector":  sector,
		"revenue": revenue,
	})
	require.NoError(t, err)
	return out
}

func TestComputeInformalBands(t *testing.T) {
	cases := []struct {
		revenue string
		amount  float64
		band    string
	}{
		{"300000", 20_000, "A"},
		{"750000", 30_000, "B"},
		{"2000000", 60_000, "C"},
		{"4999999", 150_000, "D"},
	}

	for _, tc := range cases {
		out := compute(t, "informal", tc.revenue)
		assert.Equal(t, tc.amount, out["amount"], "revenue %s", tc.revenue)
		assert.Equal(t, tc.band, out["band"], "revenue %s", tc.revenue)
		assert.Equal(t, "XAF", out["currency"])
	}
}

func TestComputeInformalAboveBandsFallsToFormal(t *testing.T) {
	out := compute(t, "informal", "10000000")
	assert.Equal(t, "formal", out["band"])
	assert.Equal(t, 220_000.0, out["amount"])
}

func TestComputeFormal(t *testing.T) {
	out := compute(t, "formal", "5000000")
	assert.Equal(t, 110_000.0, out["amount"])

	// The formal regime never goes below the minimum.
	out = compute(t, "formal", "100000")
	assert.Equal(t, 50_000.0, out["amount"])
}

func TestComputeRejectsBadInput(t *testing.T) {
	svc := newTestService()

	_, err := svc.Call(context.Background(), "compute", map[string]any{
		"sector": "agricole", "revenue": "1000",
	})
	assert.Error(t, err)

	_, err = svc.Call(context.Background(), "compute", map[string]any{
		"sector": "formal", "revenue": "beaucoup",
	})
	assert.Error(t, err)

	_, err = svc.Call(context.Background(), "facture", nil)
	assert.Error(t, err)
}
