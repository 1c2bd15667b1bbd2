package report

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/summary"
)

func TestShareLink(t *testing.T) {
	sess := &model.Session{
		SessionID: "abc-123",
		Subject:   "Physics",
		Teacher:   "Ms. Ray",
		Topic:     "Optics & Light",
		ClassName: "10",
	}
	link := ShareLink("http://localhost:8080/", sess)

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Path != "/student" {
		t.Errorf("path = %q, want /student", u.Path)
	}
	q := u.Query()
	if got := q.Get("sessionId"); got != "abc-123" {
		t.Errorf("sessionId = %q", got)
	}
	if got := q.Get("topic"); got != "Optics & Light" {
		t.Errorf("topic = %q", got)
	}
	if q.Has("section") {
		t.Error("empty section should be omitted from the link")
	}
	if strings.Contains(link, "//student") {
		t.Errorf("trailing base slash not trimmed: %q", link)
	}
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("http://localhost:8080/student?sessionId=abc", 256)
	if err != nil {
		t.Fatalf("QRPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("output is not a PNG")
	}
}

func TestDistributionChartPNG(t *testing.T) {
	if _, err := DistributionChartPNG(map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}); !errors.Is(err, ErrNoData) {
		t.Errorf("all-zero distribution: err = %v, want ErrNoData", err)
	}

	png, err := DistributionChartPNG(map[int]int{4: 2, 5: 3})
	if err != nil {
		t.Fatalf("DistributionChartPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("output is not a PNG")
	}
}

func TestTrendChartPNG(t *testing.T) {
	if _, err := TrendChartPNG([]analytics.TrendPoint{{Label: "Response 1", Rating: 4}}); !errors.Is(err, ErrNoData) {
		t.Errorf("single point: err = %v, want ErrNoData", err)
	}

	points := []analytics.TrendPoint{
		{Label: "Response 1", Rating: 3},
		{Label: "Response 2", Rating: 4},
		{Label: "Response 3", Rating: 5},
	}
	png, err := TrendChartPNG(points)
	if err != nil {
		t.Fatalf("TrendChartPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("output is not a PNG")
	}
}

func TestCompose(t *testing.T) {
	now := time.Now()
	res := &model.AnalyticsResult{
		SessionID:      "abc-123",
		Subject:        "Physics",
		Teacher:        "Ms. Ray",
		Topic:          "Optics",
		TotalResponses: 3,
		AvgRating:      4.0,
		Feedbacks: []model.FeedbackEntry{
			{Rating: 3, Comment: "too fast", CreatedAt: now},
			{Rating: 4, Comment: "good examples", CreatedAt: now.Add(time.Minute)},
			{Rating: 5, Comment: "very clear", CreatedAt: now.Add(2 * time.Minute)},
		},
	}
	sum := summary.Summary{
		Text:           "Students found the material clear overall.",
		SampleComments: []string{"too fast", "good examples", "very clear"},
	}

	c := NewComposer("http://localhost:8080")
	pdf, err := c.Compose(res, sum)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Error("output is not a PDF")
	}
}

func TestComposeEmptySession(t *testing.T) {
	res := &model.AnalyticsResult{
		SessionID: "empty-1",
		Subject:   "Math",
		Teacher:   "Mr. Lee",
		Topic:     "Fractions",
		Feedbacks: []model.FeedbackEntry{},
	}
	sum := summary.Summary{Text: "No comments to summarize."}

	pdf, err := NewComposer("http://localhost:8080").Compose(res, sum)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Error("output is not a PDF")
	}
}
