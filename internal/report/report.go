// Package report assembles aggregator and summarizer output into shareable
// artifacts: the student-facing link, its QR code, chart images and the
// exported PDF document. It consumes the derived values as-is and recomputes
// nothing.
package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/summary"
)

// Composer builds PDF reports and share links for sessions.
type Composer struct {
	baseURL string
}

func NewComposer(baseURL string) *Composer {
	return &Composer{baseURL: strings.TrimRight(baseURL, "/")}
}

// ShareLink builds the link students open to submit feedback. The extra
// query parameters only pre-populate the feedback form header; the server
// never re-validates them against the stored session.
func ShareLink(baseURL string, sess *model.Session) string {
	v := url.Values{}
	v.Set("sessionId", sess.SessionID)
	if sess.ClassName != "" {
		v.Set("className", sess.ClassName)
	}
	if sess.Section != "" {
		v.Set("section", sess.Section)
	}
	if sess.Subject != "" {
		v.Set("subject", sess.Subject)
	}
	if sess.Teacher != "" {
		v.Set("teacher", sess.Teacher)
	}
	if sess.Topic != "" {
		v.Set("topic", sess.Topic)
	}
	return strings.TrimRight(baseURL, "/") + "/student?" + v.Encode()
}

// ShareLink builds the share link using the composer's configured base URL.
func (c *Composer) ShareLink(sess *model.Session) string {
	return ShareLink(c.baseURL, sess)
}

// QRPNG renders the share link as a PNG QR code of the given pixel size.
func QRPNG(link string, size int) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}
	return png, nil
}

// Compose lays out the full session report: metadata, aggregates, both
// charts, the comment summary and a bounded raw sample.
func (c *Composer) Compose(res *model.AnalyticsResult, sum summary.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Classroom Feedback Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	metaRow(pdf, "Session ID", res.SessionID)
	metaRow(pdf, "Subject", res.Subject)
	metaRow(pdf, "Topic", res.Topic)
	metaRow(pdf, "Teacher", res.Teacher)
	if res.ClassName != "" {
		metaRow(pdf, "Class", res.ClassName)
	}
	if res.Section != "" {
		metaRow(pdf, "Section", res.Section)
	}
	pdf.Ln(4)

	impact := analytics.ImpactScore(res.AvgRating, res.TotalResponses)
	metaRow(pdf, "Total responses", fmt.Sprintf("%d", res.TotalResponses))
	metaRow(pdf, "Average rating", fmt.Sprintf("%.1f / 5", res.AvgRating))
	metaRow(pdf, "Session impact score", fmt.Sprintf("%.0f / 100", impact))
	pdf.Ln(6)

	if png, err := DistributionChartPNG(analytics.Distribution(res.Feedbacks)); err == nil {
		embedPNG(pdf, "distribution", png, 90)
	}
	if png, err := TrendChartPNG(analytics.Trend(res.Feedbacks)); err == nil {
		embedPNG(pdf, "trend", png, 170)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Comment Summary")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, sum.Text, "", "L", false)
	pdf.SetFont("Helvetica", "I", 9)
	if sum.UsedRemoteModel {
		pdf.Cell(0, 6, "Generated by the remote summarization model.")
	} else {
		pdf.Cell(0, 6, "Generated by the offline rule-based analyzer.")
	}
	pdf.Ln(8)
	if len(sum.Keywords) > 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, "Keywords: "+strings.Join(sum.Keywords, ", "))
		pdf.Ln(8)
	}

	if len(sum.SampleComments) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Sample Comments")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
		for _, comment := range sum.SampleComments {
			pdf.MultiCell(0, 5, "- "+comment, "", "L", false)
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("compose report: %w", err)
	}
	return buf.Bytes(), nil
}

func metaRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(50, 7, label)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, value)
	pdf.Ln(7)
}

func embedPNG(pdf *gofpdf.Fpdf, name string, png []byte, width float64) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), width, 0, true, opts, 0, "")
	pdf.Ln(4)
}
