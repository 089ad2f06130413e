package service

import (
	"regexp"
	"strings"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/prompts"
)

// FallbackModelName tags extraction runs produced without any LLM.
const FallbackModelName = "fallback_regex"

var wordTermRe = regexp.MustCompile(`^[a-z0-9 ]+$`)

type lexiconMatcher struct {
	term string
	re   *regexp.Regexp // nil when the term has symbols, matched by Contains
}

var lexiconMatchers = buildMatchers()

func buildMatchers() []lexiconMatcher {
	seen := make(map[string]struct{})
	var out []lexiconMatcher
	for _, group := range [][]string{
		prompts.Certifications,
		prompts.TechTerms,
		prompts.ToolTerms,
		prompts.BehavioralTerms,
	} {
		for _, term := range group {
			t := strings.ToLower(term)
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}

			m := lexiconMatcher{term: t}
			if wordTermRe.MatchString(t) {
				// Word-boundary match avoids "go" inside "algoritmo".
				m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
			}
			out = append(out, m)
		}
	}
	return out
}

// RegexExtract scans postings against the shared lexicons. Frequency is the
// number of postings that mention the term, mirroring what models are asked
// to count. Used when no model credential is configured.
func RegexExtract(postings []domain.Posting) []domain.Keyword {
	counts := make(map[string]int)
	var order []string

	for _, p := range postings {
		text := strings.ToLower(p.Title + "\n" + p.Description)
		for _, m := range lexiconMatchers {
			var hit bool
			if m.re != nil {
				hit = m.re.MatchString(text)
			} else {
				hit = strings.Contains(text, m.term)
			}
			if hit {
				if counts[m.term] == 0 {
					order = append(order, m.term)
				}
				counts[m.term]++
			}
		}
	}

	out := make([]domain.Keyword, 0, len(order))
	for _, term := range order {
		out = append(out, domain.Keyword{
			Term:      term,
			Frequency: counts[term],
			Category:  Categorize(term),
		})
	}
	return out
}
