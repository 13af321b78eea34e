package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
)

// FallbackEmptyReply substitutes for a success response that carries no
// candidate text.
const FallbackEmptyReply = "hmm nekaj ni ok..."

// namePrefix matches a leaked "Speaker: " prefix at the start of a group
// reply, across Latin, Latin-extended and Cyrillic scripts.
var namePrefix = regexp.MustCompile(`^[A-Za-z\x{00C0}-\x{017F}\x{0400}-\x{04FF}]+\s*:\s*`)

// ChatService drives one generation end-to-end: payload assembly, paced
// dispatch, bounded retry on upstream 429s, and reply sanitization.
type ChatService struct {
	client    *GeminiClient
	gate      *PacingGate
	assembler *PromptAssembler
	rng       *rand.Rand

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewChatService(client *GeminiClient, gate *PacingGate, assembler *PromptAssembler, rng *rand.Rand) *ChatService {
	return &ChatService{
		client:    client,
		gate:      gate,
		assembler: assembler,
		rng:       rng,
		sleep:     sleepCtx,
	}
}

// Generate produces one persona reply for the request. The credential check
// short-circuits before any network activity.
func (s *ChatService) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if !s.client.HasCredential() {
		return nil, domain.ErrMissingAPIKey
	}
	if req.Prompt == "" {
		return nil, domain.ErrMissingPrompt
	}
	if req.Persona.Name == "" {
		return nil, domain.ErrMissingPersona
	}

	payload := s.assembler.Assemble(req)

	res, err := s.dispatchWithRetry(ctx, payload)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(res.body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	text := parsed.FirstText()
	if text == "" {
		text = FallbackEmptyReply
	}
	if req.Mode == domain.ModeGroup {
		text = namePrefix.ReplaceAllString(text, "")
	}

	return &domain.GenerationResult{
		Text:             text,
		PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
		CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}, nil
}

// dispatchWithRetry runs the bounded attempt loop. Only 429 is retried; any
// other status ends the loop at once.
func (s *ChatService) dispatchWithRetry(ctx context.Context, payload *geminiRequest) (*dispatchResult, error) {
	for attempt := 0; attempt < config.MaxGenerateAttempts; attempt++ {
		if err := s.gate.AcquireSlot(ctx); err != nil {
			return nil, err
		}

		res, err := s.client.Dispatch(ctx, payload)
		if err != nil {
			return nil, err
		}

		if res.status == http.StatusTooManyRequests {
			delay := backoffDelay(attempt, s.rng)
			slog.Warn("upstream rate limited, backing off",
				"attempt", attempt+1,
				"delay", delay,
			)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if res.status != http.StatusOK {
			return nil, &domain.UpstreamError{Status: res.status, Body: string(res.body)}
		}
		return res, nil
	}
	return nil, domain.ErrRateLimitExhausted
}

// backoffDelay doubles from the base each attempt, plus jitter so retries
// from concurrent requests spread out.
func backoffDelay(attempt int, rng *rand.Rand) time.Duration {
	base := config.BackoffBase << attempt
	jitter := time.Duration(rng.Int63n(int64(config.BackoffJitterMax)))
	return base + jitter
}
