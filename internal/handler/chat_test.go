package handler

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChatHandler builds a handler whose chat service talks to a fake
// upstream that always answers the given status and text.
func newChatHandler(t *testing.T, apiKey string, upstreamStatus int, upstreamText string) *Handler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstreamStatus)
		if upstreamStatus == http.StatusOK {
			fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, upstreamText)
		}
	}))
	t.Cleanup(srv.Close)

	rng := rand.New(rand.NewSource(1))
	chat := service.NewChatService(
		service.NewGeminiClient(apiKey, srv.URL),
		service.NewPacingGate(0),
		service.NewPromptAssembler(rng),
		rng,
	)

	return New(Deps{
		Cfg:   &config.Config{GeminiAPIKey: apiKey},
		Chat:  chat,
		Usage: service.NewUsageService(nil),
	})
}

const chatBody = `{
	"prompt": "hey",
	"profile": {"name": "Ana", "age": 24, "gender": "girl", "nationality": "Slovenia", "traits": ["funny"]},
	"userProfile": {"name": "Miha", "gender": "male", "location": "Ljubljana"},
	"history": [],
	"isGroup": false
}`

func postChat(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func TestHandleChatSuccess(t *testing.T) {
	h := newChatHandler(t, "test-key", http.StatusOK, "zivjo miha")

	rec := postChat(h, chatBody)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "zivjo miha", resp["response"])
	assert.Empty(t, resp["error"])
}

func TestHandleChatMissingAPIKey(t *testing.T) {
	h := newChatHandler(t, "", http.StatusOK, "unused")

	rec := postChat(h, chatBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_API_KEY", resp["error"])
	assert.NotEmpty(t, resp["response"])
}

func TestHandleChatUpstreamFailureYieldsFallback(t *testing.T) {
	h := newChatHandler(t, "test-key", http.StatusServiceUnavailable, "")

	rec := postChat(h, chatBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp["error"], "only the missing key case carries a code")
	assert.NotEmpty(t, resp["response"], "the UI always gets a renderable message")
}

func TestHandleChatInvalidJSON(t *testing.T) {
	h := newChatHandler(t, "test-key", http.StatusOK, "unused")

	rec := postChat(h, "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatGroupMode(t *testing.T) {
	h := newChatHandler(t, "test-key", http.StatusOK, "Ana: dobar dan svima")

	body := strings.Replace(chatBody, `"isGroup": false`, `"isGroup": true, "groupTopic": "food you love"`, 1)
	rec := postChat(h, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dobar dan svima", resp["response"], "leaked speaker prefix must be stripped")
}
