// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session maintains the ordered conversation for the active user and
// mediates outbound chat requests.
package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/genie-tui/internal/genie"
	"github.com/jeranaias/genie-tui/internal/model"
)

// newTestLog wires a log to an httptest handler.
func newTestLog(t *testing.T, handler http.HandlerFunc) (*Log, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := genie.NewClientWithConfig(&genie.ClientConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
	return NewLog(client), srv
}

// =============================================================================
// SEND VALIDATION TESTS
// =============================================================================

func TestSend_EmptyIsNoOp(t *testing.T) {
	called := false
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, text := range []string{"", "   ", "\n\t "} {
		cmd, ok := log.Send(text)
		if ok || cmd != nil {
			t.Errorf("Send(%q) should be a no-op", text)
		}
	}

	if log.Len() != 0 {
		t.Errorf("no messages should be appended, got %d", log.Len())
	}
	if called {
		t.Error("no request should be issued for empty input")
	}
}

func TestSend_RejectedWhilePending(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "ok"}`))
	})

	cmd1, ok := log.Send("first")
	if !ok {
		t.Fatal("first send should be accepted")
	}

	// Second send while the first has not resolved
	cmd2, ok := log.Send("second")
	if ok || cmd2 != nil {
		t.Error("send while pending should be a no-op")
	}
	if log.Len() != 1 {
		t.Errorf("only the first user message should be present, got %d", log.Len())
	}

	log.ApplySendResult(cmd1().(SendResultMsg))
	if log.Pending() {
		t.Error("pending should clear after the send resolves")
	}
}

// =============================================================================
// SEND LIFECYCLE TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "You have 85% attendance"}`))
	})

	if log.Pending() {
		t.Fatal("pending should be false before send")
	}

	cmd, ok := log.Send("What's my attendance?")
	if !ok {
		t.Fatal("send should be accepted")
	}
	if !log.Pending() {
		t.Error("pending should be true while in flight")
	}

	msgs := log.Messages()
	if len(msgs) != 1 || msgs[0].Sender != model.SenderUser {
		t.Fatalf("user message should be appended optimistically, got %d messages", len(msgs))
	}

	log.ApplySendResult(cmd().(SendResultMsg))

	msgs = log.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != model.SenderUser || msgs[0].Text != "What's my attendance?" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Sender != model.SenderBot || msgs[1].Text != "You have 85% attendance" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
	if msgs[1].IsError {
		t.Error("successful reply should not be an error message")
	}
	if log.Pending() {
		t.Error("pending should be false after resolution")
	}
	if log.Err() != "" {
		t.Errorf("no error should be surfaced, got %q", log.Err())
	}
}

func TestSend_BackendFailure(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	cmd, _ := log.Send("What's my attendance?")
	log.ApplySendResult(cmd().(SendResultMsg))

	msgs := log.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user + error message, got %d", len(msgs))
	}
	if !msgs[1].IsError {
		t.Error("bot message should be flagged as error")
	}
	if msgs[1].Text != FallbackErrorText {
		t.Errorf("error text = %q", msgs[1].Text)
	}
	if log.Err() == "" {
		t.Error("an error string should be surfaced")
	}
	if log.Pending() {
		t.Error("pending should clear even on failure")
	}
}

// =============================================================================
// CLEAR TESTS
// =============================================================================

func TestClear_SynchronousAndLocalOnly(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "ok"}`))
	})

	cmd, _ := log.Send("hello")
	log.ApplySendResult(cmd().(SendResultMsg))

	if c := log.Clear(); c != nil {
		t.Error("Clear with no user should not issue a server delete")
	}
	if log.Len() != 0 {
		t.Errorf("log should be empty immediately after Clear, got %d", log.Len())
	}
}

func TestClear_ServerDeleteFailureNotSurfaced(t *testing.T) {
	var method string
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			method = r.Method
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	})

	// Login fetch, then discard its result to keep the test focused.
	fetch := log.SetUser("u1")
	log.ApplyHistory(fetch().(HistoryMsg))

	cmd := log.Clear()
	if cmd == nil {
		t.Fatal("Clear with a user should issue a server delete")
	}
	if log.Len() != 0 {
		t.Error("log should be empty synchronously, before the delete resolves")
	}

	log.ApplyClearResult(cmd().(ClearServerMsg))
	if method != http.MethodDelete {
		t.Error("a DELETE request should have been issued")
	}
	if log.Err() != "" {
		t.Errorf("delete failure should not be surfaced, got %q", log.Err())
	}
}

// =============================================================================
// STALE COMPLETION TESTS
// =============================================================================

func TestStaleSendCompletionDiscarded(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "late reply"}`))
	})

	cmd, _ := log.Send("slow question")
	log.Clear() // bumps the generation while the send is "in flight"

	if applied := log.ApplySendResult(cmd().(SendResultMsg)); applied {
		t.Error("stale completion should report not-applied")
	}

	if log.Len() != 0 {
		t.Errorf("stale completion must not resurrect messages, got %d", log.Len())
	}
	if log.Pending() {
		t.Error("pending must still be released by a stale completion")
	}
}

func TestStaleHistoryDiscarded(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id": "r1", "query": "q", "response": "a", "timestamp": "2025-03-01T10:00:00Z"}]`))
	})

	fetch := log.SetUser("u1")
	log.SetUser("") // logout before the fetch resolves

	if applied := log.ApplyHistory(fetch().(HistoryMsg)); applied {
		t.Error("stale history fetch should report not-applied")
	}
	if log.Len() != 0 {
		t.Errorf("history from a previous user must not land after logout, got %d", log.Len())
	}
}

// =============================================================================
// USER / HISTORY TESTS
// =============================================================================

func TestSetUser_LoginReplacesLog(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"history": [{"_id": "r1", "query": "old q", "response": "old a", "timestamp": "2025-03-01T10:00:00Z"}]}`))
	})

	fetch := log.SetUser("u1")
	if fetch == nil {
		t.Fatal("login should trigger a history fetch")
	}
	log.ApplyHistory(fetch().(HistoryMsg))

	msgs := log.Messages()
	if len(msgs) != 2 {
		t.Fatalf("one record should expand to 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "old q" || msgs[1].Text != "old a" {
		t.Errorf("unexpected messages: %q / %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestSetUser_LogoutClears(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "ok"}`))
	})

	cmd, _ := log.Send("hi")
	log.ApplySendResult(cmd().(SendResultMsg))

	if c := log.SetUser(""); c != nil {
		t.Error("logout should not issue any request")
	}
	if log.Len() != 0 {
		t.Error("logout should clear the log unconditionally")
	}
}

func TestApplyHistory_ErrorSurfaced(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	fetch := log.SetUser("u1")
	log.ApplyHistory(fetch().(HistoryMsg))

	if !strings.Contains(log.Err(), "history") {
		t.Errorf("history failure should surface an error string, got %q", log.Err())
	}
}

// =============================================================================
// RATING TESTS
// =============================================================================

func TestRate_OnlyRatingFieldChanges(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "the answer"}`))
	})

	cmd, _ := log.Send("a question")
	log.ApplySendResult(cmd().(SendResultMsg))

	before := log.Messages()
	botID := before[1].ID

	rate := log.Rate(botID, model.RatingUp)
	if rate == nil {
		t.Fatal("Rate should return a command for a known message")
	}

	// Not optimistic: nothing changes until the server acknowledges.
	if log.Messages()[1].Rating != model.RatingNone {
		t.Error("rating must not change before acknowledgment")
	}

	log.ApplyRating(rate().(RatingMsg))

	after := log.Messages()
	if after[1].Rating != model.RatingUp {
		t.Errorf("rating = %q, want up", after[1].Rating)
	}

	// Structural equality for everything except the rating field.
	for i := range before {
		b, a := *before[i], *after[i]
		b.Rating, a.Rating = model.RatingNone, model.RatingNone
		if b != a {
			t.Errorf("message %d changed beyond the rating field: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestRate_FailureLeavesStateUntouched(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/rate" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"response": "the answer"}`))
	})

	cmd, _ := log.Send("a question")
	log.ApplySendResult(cmd().(SendResultMsg))
	botID := log.Messages()[1].ID

	rate := log.Rate(botID, model.RatingDown)
	log.ApplyRating(rate().(RatingMsg))

	if log.Messages()[1].Rating != model.RatingNone {
		t.Error("failed rating must not mutate local state")
	}
	if log.Err() != "" {
		t.Errorf("rating failures are silent, got %q", log.Err())
	}
}

func TestRate_InvalidInputs(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {})

	if log.Rate("msg_unknown", model.RatingUp) != nil {
		t.Error("rating an unknown message should be a no-op")
	}
	if log.Rate("msg_x", model.Rating("sideways")) != nil {
		t.Error("an invalid rating should be a no-op")
	}
}

// =============================================================================
// RECORDER TESTS
// =============================================================================

type captureRecorder struct {
	queries   []string
	responses []string
}

func (c *captureRecorder) Record(query, response string, ts time.Time) error {
	c.queries = append(c.queries, query)
	c.responses = append(c.responses, response)
	return nil
}

func TestRecorder_ReceivesSuccessfulExchanges(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "recorded answer"}`))
	})

	rec := &captureRecorder{}
	log.SetRecorder(rec)

	cmd, _ := log.Send("record me")
	log.ApplySendResult(cmd().(SendResultMsg))

	if len(rec.queries) != 1 || rec.queries[0] != "record me" {
		t.Errorf("recorder queries = %v", rec.queries)
	}
	if len(rec.responses) != 1 || rec.responses[0] != "recorded answer" {
		t.Errorf("recorder responses = %v", rec.responses)
	}
}

func TestRecorder_NotCalledOnFailure(t *testing.T) {
	log, _ := newTestLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := &captureRecorder{}
	log.SetRecorder(rec)

	cmd, _ := log.Send("doomed")
	log.ApplySendResult(cmd().(SendResultMsg))

	if len(rec.queries) != 0 {
		t.Error("recorder must not see failed exchanges")
	}
}
