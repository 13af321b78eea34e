package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// UsageRepo keeps the token usage ledger for cost estimates.
type UsageRepo struct {
	db *pgxpool.Pool
}

func NewUsageRepo(db *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{db: db}
}

type UsageTotals struct {
	Requests         int64
	PromptTokens     int64
	CompletionTokens int64
	Cost             decimal.Decimal
}

func (r *UsageRepo) Record(ctx context.Context, profileID uuid.UUID, promptTokens, completionTokens int, cost decimal.Decimal) error {
	var pid any
	if profileID != uuid.Nil {
		pid = profileID
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO usage_log (profile_id, prompt_tokens, completion_tokens, cost)
		VALUES ($1, $2, $3, $4)`,
		pid, promptTokens, completionTokens, cost,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (r *UsageRepo) Totals(ctx context.Context) (*UsageTotals, error) {
	var t UsageTotals
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(cost), 0)
		FROM usage_log`,
	).Scan(&t.Requests, &t.PromptTokens, &t.CompletionTokens, &t.Cost)
	if err != nil {
		return nil, fmt.Errorf("usage totals: %w", err)
	}
	return &t, nil
}
