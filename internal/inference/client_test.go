package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/logger"
)

func chatReply(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(endpoint string, minGap time.Duration) *HTTPClient {
	return NewHTTPClient(&config.InferenceConfig{
		Endpoint:   endpoint,
		APIKey:     "test-key",
		Model:      "gpt-4o-mini",
		Timeout:    5 * time.Second,
		MinCallGap: minGap,
	}, logger.NewNoOp())
}

func TestComplete(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotBody = req.Messages[0].Content

		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Zero(t, req.Temperature)

		_, _ = w.Write([]byte(chatReply("value: 42")))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, time.Millisecond).Complete(context.Background(), "extract the price")
	require.NoError(t, err)

	assert.Equal(t, "value: 42", got)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "extract the price", gotBody)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Millisecond).Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Millisecond).Complete(context.Background(), "prompt")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestComplete_EnforcesMinimumCallGap(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(chatReply("ok")))
	}))
	defer srv.Close()

	const gap = 100 * time.Millisecond
	client := newTestClient(srv.URL, gap)

	// Concurrent callers share one limiter; the gap applies across them.
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Complete(context.Background(), "prompt")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), gap-10*time.Millisecond,
			"calls %d and %d arrived closer than the minimum gap", i-1, i)
	}
}

func TestComplete_ContextCancelledWhileWaiting(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", time.Hour)

	// Consume the initial token, then cancel the waiter.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _ = client.Complete(ctx, "first")
	_, err := client.Complete(ctx, "second")
	require.Error(t, err)
}
