package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
	"github.com/stojkeex/testaii/internal/repository"
)

var (
	million         = decimal.NewFromInt(1_000_000)
	promptPrice     = decimal.RequireFromString(config.PromptPricePerMTok)
	completionPrice = decimal.RequireFromString(config.CompletionPricePerMTok)
)

// UsageService records the token counts each generation reports and the
// estimated cost at the configured per-1M-token prices. A nil repo disables
// the ledger.
type UsageService struct {
	repo *repository.UsageRepo
}

func NewUsageService(repo *repository.UsageRepo) *UsageService {
	return &UsageService{repo: repo}
}

// Record logs one generation's usage. Bookkeeping never fails the request;
// errors are logged and swallowed.
func (s *UsageService) Record(ctx context.Context, profileID uuid.UUID, result *domain.GenerationResult) {
	if s.repo == nil {
		return
	}
	cost := EstimateCost(result.PromptTokens, result.CompletionTokens)
	if err := s.repo.Record(ctx, profileID, result.PromptTokens, result.CompletionTokens, cost); err != nil {
		slog.Error("record usage", "error", err, "profile_id", profileID)
	}
}

// Totals reports the aggregated ledger; zero totals when disabled.
func (s *UsageService) Totals(ctx context.Context) (*repository.UsageTotals, error) {
	if s.repo == nil {
		return &repository.UsageTotals{}, nil
	}
	return s.repo.Totals(ctx)
}

// EstimateCost converts token counts into USD.
func EstimateCost(promptTokens, completionTokens int) decimal.Decimal {
	in := decimal.NewFromInt(int64(promptTokens)).Mul(promptPrice).Div(million)
	out := decimal.NewFromInt(int64(completionTokens)).Mul(completionPrice).Div(million)
	return in.Add(out)
}
