// Package analytics computes read-side aggregates over stored feedback.
// There are no running counters anywhere: every call re-scans the full entry
// set for the session, so correctness never depends on write-side bookkeeping.
package analytics

import (
	"errors"
	"sort"
	"strconv"

	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/store"
)

// ErrSessionNotFound reports an analytics request for an unregistered
// session identifier. Callers must render a not-found outcome, not a zero
// response count.
var ErrSessionNotFound = errors.New("session not found")

// Impact score policy: 70% weight on rating quality, 30% on response volume,
// with volume saturating at 30 responses. Display heuristic only.
const (
	ratingWeight     = 70.0
	volumeWeight     = 30.0
	volumeSaturation = 30.0
)

// Aggregator reads the session registry and the feedback store.
type Aggregator struct {
	store *store.Store
}

func New(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Aggregate returns the response count, mean rating and full raw entry list
// for a session, plus the session metadata downstream consumers need.
// The mean includes every stored entry, even ratings outside 1..5; only the
// distribution buckets exclude them.
func (a *Aggregator) Aggregate(sessionID string) (*model.AnalyticsResult, error) {
	sess, err := a.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	entries, err := a.store.ListFeedback(sessionID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.FeedbackEntry{}
	}

	total := len(entries)
	avg := 0.0
	if total > 0 {
		sum := 0
		for _, e := range entries {
			sum += e.Rating
		}
		avg = float64(sum) / float64(total)
	}

	return &model.AnalyticsResult{
		SessionID:      sess.SessionID,
		ClassName:      sess.ClassName,
		Section:        sess.Section,
		Subject:        sess.Subject,
		Teacher:        sess.Teacher,
		Topic:          sess.Topic,
		TotalResponses: total,
		AvgRating:      avg,
		Feedbacks:      entries,
	}, nil
}

// Distribution counts entries with rating exactly 1..5. Ratings outside the
// range are silently excluded. All five buckets are always present.
func Distribution(entries []model.FeedbackEntry) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, e := range entries {
		if e.Rating >= 1 && e.Rating <= 5 {
			dist[e.Rating]++
		}
	}
	return dist
}

// TrendPoint is one sample of the rating trend chart.
type TrendPoint struct {
	Label  string `json:"label"`
	Rating int    `json:"rating"`
}

// Trend orders entries by submission time ascending and labels them
// sequentially. The trend is order of submission, not wall-clock spacing.
func Trend(entries []model.FeedbackEntry) []TrendPoint {
	sorted := make([]model.FeedbackEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	points := make([]TrendPoint, len(sorted))
	for i, e := range sorted {
		points[i] = TrendPoint{
			Label:  "Response " + strconv.Itoa(i+1),
			Rating: e.Rating,
		}
	}
	return points
}

// ImpactScore folds rating quality and response volume into a 0-100 score
// used in reports.
func ImpactScore(avgRating float64, totalResponses int) float64 {
	volume := volumeWeight * float64(totalResponses) / volumeSaturation
	if volume > volumeWeight {
		volume = volumeWeight
	}
	return ratingWeight*(avgRating/5) + volume
}
