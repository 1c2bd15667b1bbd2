package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestSummarizer(t *testing.T, fn http.HandlerFunc, timeout time.Duration) *Summarizer {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)
	return New(NewRemote(srv.URL+"/v1", "test-key", "test-model"), timeout)
}

func TestSummarizeRemoteSuccess(t *testing.T) {
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Students found the session clear overall."}}]}`))
	}, time.Second)

	sum := s.Summarize(context.Background(), []string{"very clear", "well explained"})
	if !sum.UsedRemoteModel {
		t.Fatal("expected the remote strategy to be used")
	}
	if sum.Text != "Students found the session clear overall." {
		t.Errorf("unexpected summary text %q", sum.Text)
	}
	if len(sum.SampleComments) != 2 {
		t.Errorf("expected 2 sample comments, got %d", len(sum.SampleComments))
	}
}

func TestSummarizeRemoteColdStart(t *testing.T) {
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model warming up"}}`, http.StatusServiceUnavailable)
	}, time.Second)

	sum := s.Summarize(context.Background(), []string{"this was confusing"})
	if sum.UsedRemoteModel {
		t.Fatal("503 response must fall back to the rule-based strategy")
	}
	if !strings.Contains(sum.Text, "Areas for improvement") {
		t.Errorf("expected rule-based output, got %q", sum.Text)
	}
}

func TestSummarizeRemoteEmptyChoices(t *testing.T) {
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, time.Second)

	sum := s.Summarize(context.Background(), []string{"too fast"})
	if sum.UsedRemoteModel {
		t.Fatal("empty choices must fall back to the rule-based strategy")
	}
}

func TestSummarizeRemoteEmptyContent(t *testing.T) {
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
	}, time.Second)

	sum := s.Summarize(context.Background(), []string{"too fast"})
	if sum.UsedRemoteModel {
		t.Fatal("blank summary must fall back to the rule-based strategy")
	}
}

func TestSummarizeRemoteTimeout(t *testing.T) {
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"late"}}]}`))
	}, 50*time.Millisecond)

	start := time.Now()
	sum := s.Summarize(context.Background(), []string{"unclear in parts"})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Summarize took %v, expected the timeout to bound it", elapsed)
	}
	if sum.UsedRemoteModel {
		t.Fatal("timed-out call must fall back to the rule-based strategy")
	}
	if sum.Text == "" {
		t.Error("fallback must still produce a usable summary")
	}
	if len(sum.SampleComments) != 1 {
		t.Errorf("expected 1 sample comment, got %d", len(sum.SampleComments))
	}
}
