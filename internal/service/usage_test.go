package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stojkeex/testaii/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageServiceDisabled(t *testing.T) {
	s := NewUsageService(nil)

	// Record is a no-op; Totals answers zeros instead of touching a repo.
	s.Record(context.Background(), uuid.New(), &domain.GenerationResult{PromptTokens: 12, CompletionTokens: 5})

	totals, err := s.Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, totals.Requests)
	assert.Zero(t, totals.PromptTokens)
	assert.Zero(t, totals.CompletionTokens)
	assert.True(t, totals.Cost.IsZero())
}

func TestEstimateCost(t *testing.T) {
	// 1M prompt tokens at $0.10 plus 1M completion tokens at $0.40
	cost := EstimateCost(1_000_000, 1_000_000)
	assert.True(t, cost.Equal(decimal.RequireFromString("0.5")), "got %s", cost)

	assert.True(t, EstimateCost(0, 0).IsZero())

	// 12 prompt + 5 completion tokens stay in fractions of a cent
	small := EstimateCost(12, 5)
	assert.True(t, small.GreaterThan(decimal.Zero))
	assert.True(t, small.LessThan(decimal.RequireFromString("0.00001")))
}
