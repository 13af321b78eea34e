package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedUpstream plays a fixed status sequence, answering the last status
// for any extra calls.
type scriptedUpstream struct {
	mu        sync.Mutex
	statuses  []int
	replyText string
	calls     int
}

func (u *scriptedUpstream) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		i := u.calls
		u.calls++
		u.mu.Unlock()

		if i >= len(u.statuses) {
			i = len(u.statuses) - 1
		}
		status := u.statuses[i]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":5,"totalTokenCount":17}}`, u.replyText)
			return
		}
		fmt.Fprintf(w, `{"error":{"code":%d}}`, status)
	}
}

func (u *scriptedUpstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// newTestChat wires a ChatService against the scripted upstream with an
// unthrottled gate and recorded backoff sleeps.
func newTestChat(t *testing.T, upstream *scriptedUpstream, apiKey string) (*ChatService, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	rng := rand.New(rand.NewSource(42))
	chat := NewChatService(
		NewGeminiClient(apiKey, srv.URL),
		NewPacingGate(0),
		NewPromptAssembler(rng),
		rng,
	)

	var slept []time.Duration
	chat.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return chat, &slept
}

func individualRequest() *domain.GenerationRequest {
	return &domain.GenerationRequest{
		Prompt:  "hey",
		Persona: testPersona(),
		User:    testUser(),
		Mode:    domain.ModeIndividual,
	}
}

func TestGenerateMissingCredentialShortCircuits(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "zdravo"}
	chat, _ := newTestChat(t, upstream, "")

	_, err := chat.Generate(context.Background(), individualRequest())

	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	assert.Zero(t, upstream.callCount(), "no network call may be attempted")
}

func TestGenerateSuccess(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "zdravo"}
	chat, slept := newTestChat(t, upstream, "test-key")

	result, err := chat.Generate(context.Background(), individualRequest())

	require.NoError(t, err)
	assert.Equal(t, "zdravo", result.Text)
	assert.Equal(t, 12, result.PromptTokens)
	assert.Equal(t, 5, result.CompletionTokens)
	assert.Equal(t, 1, upstream.callCount())
	assert.Empty(t, *slept)
}

func TestGenerateRetriesOn429ThenSucceeds(t *testing.T) {
	upstream := &scriptedUpstream{
		statuses: []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK},
		replyText: "tu sem",
	}
	chat, slept := newTestChat(t, upstream, "test-key")

	result, err := chat.Generate(context.Background(), individualRequest())

	require.NoError(t, err)
	assert.Equal(t, "tu sem", result.Text)
	assert.Equal(t, 3, upstream.callCount())

	// Backoff between attempts 1→2 and 2→3, strictly increasing.
	require.Len(t, *slept, 2)
	assert.Greater(t, (*slept)[1], (*slept)[0])
}

func TestGenerateExhaustsRetriesOn429(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusTooManyRequests}}
	chat, _ := newTestChat(t, upstream, "test-key")

	_, err := chat.Generate(context.Background(), individualRequest())

	assert.ErrorIs(t, err, domain.ErrRateLimitExhausted)
	assert.Equal(t, config.MaxGenerateAttempts, upstream.callCount(), "a 5th attempt must never happen")
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusInternalServerError}}
	chat, slept := newTestChat(t, upstream, "test-key")

	_, err := chat.Generate(context.Background(), individualRequest())

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.Status)
	assert.Equal(t, 1, upstream.callCount())
	assert.Empty(t, *slept)
}

func TestGenerateStripsSpeakerPrefixInGroupMode(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "Ana: hey there"}
	chat, _ := newTestChat(t, upstream, "test-key")

	req := individualRequest()
	req.Mode = domain.ModeGroup
	req.Topic = "travel experiences"

	result, err := chat.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "hey there", result.Text)
}

func TestGenerateKeepsPrefixInIndividualMode(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "Ana: hey there"}
	chat, _ := newTestChat(t, upstream, "test-key")

	result, err := chat.Generate(context.Background(), individualRequest())

	require.NoError(t, err)
	assert.Equal(t, "Ana: hey there", result.Text)
}

func TestGenerateStripsCyrillicSpeakerPrefix(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "Саша: привет"}
	chat, _ := newTestChat(t, upstream, "test-key")

	req := individualRequest()
	req.Mode = domain.ModeGroup
	req.Topic = "random thoughts"

	result, err := chat.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "привет", result.Text)
}

func TestGenerateFallbackWhenNoCandidates(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}}
	chat, _ := newTestChat(t, upstream, "test-key")

	// replyText empty: the scripted body still contains a candidate with an
	// empty text part, which counts as missing content.
	result, err := chat.Generate(context.Background(), individualRequest())

	require.NoError(t, err)
	assert.Equal(t, FallbackEmptyReply, result.Text)
}

func TestGenerateValidation(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusOK}, replyText: "zdravo"}
	chat, _ := newTestChat(t, upstream, "test-key")

	req := individualRequest()
	req.Prompt = ""
	_, err := chat.Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingPrompt)

	req = individualRequest()
	req.Persona.Name = ""
	_, err = chat.Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingPersona)

	assert.Zero(t, upstream.callCount())
}

// Concurrent requests draw topic picks and backoff jitter from the one rand
// shared across services; the race detector flags an unguarded source here.
func TestGenerateConcurrentDrawsFromSharedRand(t *testing.T) {
	upstream := &scriptedUpstream{statuses: []int{http.StatusTooManyRequests}}
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	rng := NewRand(42)
	chat := NewChatService(
		NewGeminiClient("test-key", srv.URL),
		NewPacingGate(0),
		NewPromptAssembler(rng),
		rng,
	)
	chat.sleep = func(context.Context, time.Duration) error { return nil }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := individualRequest()
			// Group mode with no topic forces a topic draw on top of the
			// jitter draws.
			req.Mode = domain.ModeGroup
			_, err := chat.Generate(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrRateLimitExhausted)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*config.MaxGenerateAttempts, upstream.callCount())
}

func TestBackoffDelayDoublesWithJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for attempt := 0; attempt < config.MaxGenerateAttempts; attempt++ {
		base := config.BackoffBase << attempt
		for i := 0; i < 50; i++ {
			d := backoffDelay(attempt, rng)
			assert.GreaterOrEqual(t, d, base)
			assert.Less(t, d, base+config.BackoffJitterMax)
		}
	}
}
