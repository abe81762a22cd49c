package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
)

func testClient(t *testing.T, baseURL string) *client {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return &client{
		log:        log,
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "test-model",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: 1,
	}
}

func TestFlattenContent_PlainString(t *testing.T) {
	got := flattenContent(json.RawMessage(`"hello world"`))
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestFlattenContent_PartsList(t *testing.T) {
	raw := json.RawMessage(`[{"type":"text","text":"foo"},{"type":"output_text","content":"bar"}]`)
	if got := flattenContent(raw); got != "foobar" {
		t.Fatalf("got %q", got)
	}
}

func TestFlattenContent_EmptyAndGarbage(t *testing.T) {
	if got := flattenContent(nil); got != "" {
		t.Fatalf("nil raw: got %q", got)
	}
	if got := flattenContent(json.RawMessage(`{"not":"a shape we know"}`)); got != "" {
		t.Fatalf("object raw: got %q", got)
	}
	if got := flattenContent(json.RawMessage(`null`)); got != "" {
		t.Fatalf("null raw: got %q", got)
	}
}

func TestStreamSSE_SplitsEventsOnBlankLines(t *testing.T) {
	input := ": comment to ignore\n" +
		"event: message\n" +
		"data: first\n" +
		"\n" +
		"data: second-a\n" +
		"data: second-b\n" +
		"\n"
	var events []string
	err := streamSSE(strings.NewReader(input), func(event, data string) error {
		events = append(events, event+"|"+data)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(events), events)
	}
	if events[0] != "message|first" {
		t.Fatalf("first event: %q", events[0])
	}
	if events[1] != "|second-a\nsecond-b" {
		t.Fatalf("multi-line data not joined: %q", events[1])
	}
}

func TestStreamSSE_FlushesTrailingEventAtEOF(t *testing.T) {
	var got string
	err := streamSSE(strings.NewReader("data: tail"), func(event, data string) error {
		got = data
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tail" {
		t.Fatalf("trailing event lost: %q", got)
	}
}

func TestComplete_ReturnsFlattenedChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Stream {
			t.Errorf("non-streaming call must not set stream")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"a title"}}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a title" {
		t.Fatalf("got %q", got)
	}
}

func TestComplete_RetriesOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestComplete_DoesNotRetryOn400(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("client error must not retry, got %d calls", calls)
	}
}

func TestIsRetryableErr_ContextErrorsAreTerminal(t *testing.T) {
	if isRetryableErr(context.Canceled) {
		t.Fatalf("cancellation must not be retried")
	}
	if isRetryableErr(context.DeadlineExceeded) {
		t.Fatalf("an expired deadline must not be retried")
	}
	if isRetryableErr(fmt.Errorf("call upstream: %w", context.Canceled)) {
		t.Fatalf("wrapped cancellation must not be retried")
	}
	if !isRetryableErr(&openAIHTTPError{StatusCode: 429}) {
		t.Fatalf("429 must stay retryable")
	}
}

func TestStreamChat_AccumulatesDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if !req.Stream {
			t.Errorf("streaming call must set stream")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(
			`data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n\n" +
				`data: {"choices":[{"delta":{"content":"lo"}}]}` + "\n\n" +
				"data: [DONE]\n\n",
		))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	var deltas []string
	full, err := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.7, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "Hello" {
		t.Fatalf("full = %q", full)
	}
	if len(deltas) != 2 || deltas[0] != "Hel" || deltas[1] != "lo" {
		t.Fatalf("deltas = %v", deltas)
	}
}

func TestStreamChat_ErrorChunkIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(
			`data: {"choices":[{"delta":{"content":"part"}}]}` + "\n\n" +
				`data: {"error":{"message":"capacity"}}` + "\n\n",
		))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.7, nil)
	if err == nil || !strings.Contains(err.Error(), "capacity") {
		t.Fatalf("expected stream error, got %v", err)
	}
}
