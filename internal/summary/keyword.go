package summary

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Keyword sets for the rule-based analyzer. Counts are regexp match counts
// over the joined, lowercased comment text.
var (
	reUnderstanding = regexp.MustCompile(`not understand|confus|difficult|hard|unclear|don't get|didn't get`)
	rePace          = regexp.MustCompile(`fast|slow|pace|speed|rushed|too quick`)
	reExamples      = regexp.MustCompile(`example|instance|case|demonstrat|show how`)
	rePositive      = regexp.MustCompile(`clear|well explained|good|understand|helpful|great|excellent`)
	reVisual        = regexp.MustCompile(`diagram|graph|chart|visual|picture|see|show`)
)

// keywordPhraseFallback composes a summary from fixed phrase lists: an
// affirming clause when positive matches exceed 30% of the comments, issue
// clauses for each matched concern, and a fixed mixed-feedback sentence when
// nothing matches. Deterministic and offline.
func keywordPhraseFallback(comments []string) Summary {
	text := strings.ToLower(strings.Join(comments, " "))
	total := len(comments)

	understanding := len(reUnderstanding.FindAllString(text, -1))
	pace := len(rePace.FindAllString(text, -1))
	examples := len(reExamples.FindAllString(text, -1))
	positive := len(rePositive.FindAllString(text, -1))
	visual := len(reVisual.FindAllString(text, -1))

	var positives, issues []string

	if float64(positive) > float64(total)*0.3 {
		positives = append(positives,
			fmt.Sprintf("Most students (%d%%) found the session clear and helpful", percent(positive, total)))
	}

	if float64(understanding) > float64(total)*0.2 {
		issues = append(issues,
			fmt.Sprintf("Some students (%d%%) found concepts difficult to understand", percent(understanding, total)))
	}
	if pace > 0 {
		issues = append(issues, "Teaching pace needs adjustment based on feedback")
	}
	if examples > 0 {
		issues = append(issues, "Students requested more practical examples")
	}
	if visual > 0 {
		issues = append(issues, "Visual aids could be enhanced for better understanding")
	}

	var b strings.Builder
	if len(positives) > 0 {
		b.WriteString(strings.Join(positives, ". "))
		b.WriteString(". ")
	}
	if len(issues) > 0 {
		b.WriteString("Areas for improvement: ")
		b.WriteString(strings.Join(issues, "; "))
		b.WriteString(".")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		out = fmt.Sprintf("Received %d comments with mixed feedback. Consider reviewing specific student suggestions for detailed insights.", total)
	}
	return Summary{Text: out}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
