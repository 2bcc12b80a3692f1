package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// budget is the truncation rule for one kind of line: text longer than limit
// is cut at the last space before cut, or hard at cut when that space falls at
// or before minBreak.
type budget struct {
	limit    int
	cut      int
	minBreak int
}

var (
	commitBudget        = budget{limit: 50, cut: 47, minBreak: 20}
	pullRequestBudget   = budget{limit: 45, cut: 42, minBreak: 15}
	summaryCommitBudget = budget{limit: 40, cut: 37, minBreak: 15}
	summaryPRBudget     = budget{limit: 35, cut: 32, minBreak: 15}
)

// normalize collapses every run of whitespace into a single space.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to fit b, preferring to break between words. Lengths
// are counted in runes.
func (b budget) Truncate(s string) string {
	r := []rune(s)
	if len(r) <= b.limit {
		return s
	}

	pos := -1
	for i := b.cut - 1; i >= 0; i-- {
		if r[i] == ' ' {
			pos = i
			break
		}
	}
	if pos > b.minBreak {
		return string(r[:pos]) + "..."
	}
	return string(r[:b.cut]) + "..."
}

var pullRequestNumber = regexp.MustCompile(`^#\d+$`)

// CompressMerge rewrites "Merge pull request #N from owner/branch" as
// "Merge PR #N: branch". Other messages are returned unchanged.
func CompressMerge(msg string) string {
	parts := strings.Fields(msg)
	if len(parts) < 6 ||
		!strings.EqualFold(parts[0], "merge") ||
		!strings.EqualFold(parts[1], "pull") ||
		!strings.EqualFold(parts[2], "request") ||
		!pullRequestNumber.MatchString(parts[3]) ||
		!strings.EqualFold(parts[4], "from") {
		return msg
	}

	number, branch := parts[3], parts[5]
	if i := strings.LastIndex(branch, "/"); i >= 0 {
		return fmt.Sprintf("Merge PR %s: %s", number, branch[i+1:])
	}
	return fmt.Sprintf("Merge PR %s", number)
}

func commitLine(msg string, b budget) string {
	if msg == "" {
		msg = "No message"
	}
	return b.Truncate(CompressMerge(normalize(msg)))
}

func titleLine(title string, b budget) string {
	if title == "" {
		title = "No title"
	}
	return b.Truncate(normalize(title))
}

func shortSHA(sha string) string {
	if sha == "" {
		return "unknown"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
