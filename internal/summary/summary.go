// Package summary reduces a set of free-text student comments to one
// descriptive sentence plus a bounded sample. Three strategies sit behind a
// single contract: a remote model, a keyword-phrase analyzer used when the
// remote call fails, and an extractive frequency analyzer used when no
// remote capability is configured at all. Summarize never fails: every
// error path resolves to one of the local strategies.
package summary

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Summary is the output of every strategy.
type Summary struct {
	Text            string   `json:"summary"`
	SampleComments  []string `json:"sampleComments"`
	UsedRemoteModel bool     `json:"usedRemoteModel"`
	Keywords        []string `json:"keywords,omitempty"`
}

const (
	// maxSampleComments bounds the raw sample returned with every summary.
	maxSampleComments = 8
	// maxRemoteComments bounds how many comments are sent to the remote model.
	maxRemoteComments = 50
	// DefaultTimeout bounds the remote summarization call.
	DefaultTimeout = 15 * time.Second

	emptyText = "No comments to summarize."
)

// Summarizer selects a strategy per invocation. It holds no mutable state;
// concurrent calls are independent.
type Summarizer struct {
	remote  *RemoteClient // nil when no remote capability is configured
	timeout time.Duration
}

func New(remote *RemoteClient, timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Summarizer{remote: remote, timeout: timeout}
}

// Summarize runs the strategy chain over the given comments. Blank comments
// are dropped first; the sample is always the first comments in arrival
// order, unchanged.
func (s *Summarizer) Summarize(ctx context.Context, comments []string) Summary {
	kept := filterBlank(comments)
	if len(kept) == 0 {
		return Summary{Text: emptyText, SampleComments: []string{}}
	}
	sample := firstN(kept, maxSampleComments)

	if s.remote == nil {
		sum := extractiveFrequencyFallback(kept)
		sum.SampleComments = sample
		return sum
	}

	joined := strings.Join(firstN(kept, maxRemoteComments), ". ")
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.remote.Summarize(callCtx, joined)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			slog.Warn("remote summarization unavailable, using rule-based fallback", "error", err)
		} else {
			slog.Warn("remote model returned an empty summary, using rule-based fallback")
		}
		sum := keywordPhraseFallback(kept)
		sum.SampleComments = sample
		return sum
	}

	return Summary{
		Text:            strings.TrimSpace(text),
		SampleComments:  sample,
		UsedRemoteModel: true,
	}
}

func filterBlank(comments []string) []string {
	var kept []string
	for _, c := range comments {
		if strings.TrimSpace(c) != "" {
			kept = append(kept, c)
		}
	}
	return kept
}

func firstN(comments []string, n int) []string {
	if len(comments) > n {
		comments = comments[:n]
	}
	out := make([]string, len(comments))
	copy(out, comments)
	return out
}
