package service

import (
	"sort"
	"strings"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/prompts"
)

// Score composition for ranked keywords. Frequency dominates, specificity
// and category break the field apart among terms of similar frequency.
const (
	frequencyWeight   = 0.5
	specificityWeight = 0.3
	categoryWeight    = 0.2
)

// categoryWeights orders categories by how actionable they are for a
// candidate tuning a resume.
var categoryWeights = map[domain.KeywordCategory]float64{
	domain.CategoryTechnical:     1.0,
	domain.CategoryTool:          0.8,
	domain.CategoryCertification: 0.6,
	domain.CategoryBehavioral:    0.4,
	domain.CategoryOther:         0.2,
}

// categoryPriority breaks ties when merged batches disagree on a term's
// category with equal votes.
var categoryPriority = map[domain.KeywordCategory]int{
	domain.CategoryTechnical:     5,
	domain.CategoryTool:          4,
	domain.CategoryCertification: 3,
	domain.CategoryBehavioral:    2,
	domain.CategoryOther:         1,
}

var (
	techTermSet          = toSet(prompts.TechTerms)
	toolTermSet          = toSet(prompts.ToolTerms)
	behavioralTermSet    = toSet(prompts.BehavioralTerms)
	certificationTermSet = toSet(prompts.Certifications)
)

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// Categorize derives a category from the term alone, used when a model
// answer carries no category or an unknown one. Certifications are checked
// first so "aws certified" does not land in technical via "aws".
func Categorize(term string) domain.KeywordCategory {
	t := strings.ToLower(strings.TrimSpace(term))
	if _, ok := certificationTermSet[t]; ok {
		return domain.CategoryCertification
	}
	for c := range certificationTermSet {
		if strings.Contains(t, c) {
			return domain.CategoryCertification
		}
	}
	if _, ok := techTermSet[t]; ok {
		return domain.CategoryTechnical
	}
	if _, ok := toolTermSet[t]; ok {
		return domain.CategoryTool
	}
	if _, ok := behavioralTermSet[t]; ok {
		return domain.CategoryBehavioral
	}
	return domain.CategoryOther
}

// Specificity scores how discriminating a term is: lexicon terms are
// precise, multi-word phrases are moderately precise, everything else is
// generic.
func Specificity(term string) float64 {
	t := strings.ToLower(strings.TrimSpace(term))
	if _, ok := techTermSet[t]; ok {
		return 1.0
	}
	if _, ok := toolTermSet[t]; ok {
		return 1.0
	}
	if _, ok := certificationTermSet[t]; ok {
		return 1.0
	}
	if len(strings.Fields(t)) > 1 {
		return 0.5
	}
	return 0.2
}

// Merge combines keyword lists from multiple batches. Frequencies for the
// same term (case-insensitive) are summed and the category is decided by
// majority vote across batches.
func Merge(batches [][]domain.Keyword) []domain.Keyword {
	type entry struct {
		term  string
		freq  int
		votes map[domain.KeywordCategory]int
	}

	merged := make(map[string]*entry)
	var order []string

	for _, batch := range batches {
		for _, kw := range batch {
			term := strings.TrimSpace(kw.Term)
			if term == "" || kw.Frequency <= 0 {
				continue
			}
			key := strings.ToLower(term)

			cat := kw.Category
			if !domain.ValidCategory(cat) {
				cat = Categorize(term)
			}

			e, ok := merged[key]
			if !ok {
				e = &entry{term: key, votes: make(map[domain.KeywordCategory]int)}
				merged[key] = e
				order = append(order, key)
			}
			e.freq += kw.Frequency
			e.votes[cat]++
		}
	}

	out := make([]domain.Keyword, 0, len(order))
	for _, key := range order {
		e := merged[key]
		out = append(out, domain.Keyword{
			Term:      e.term,
			Frequency: e.freq,
			Category:  majorityCategory(e.votes),
		})
	}
	return out
}

func majorityCategory(votes map[domain.KeywordCategory]int) domain.KeywordCategory {
	best := domain.CategoryOther
	bestVotes := -1
	for cat, n := range votes {
		if n > bestVotes || (n == bestVotes && categoryPriority[cat] > categoryPriority[best]) {
			best = cat
			bestVotes = n
		}
	}
	return best
}

// Rank scores merged keywords and returns the top n. The frequency share
// is the fraction of postings mentioning the term, capped at 1 since merged
// frequencies can exceed the posting count. Ties resolve by frequency, then
// alphabetically, so the ranking is deterministic.
func Rank(keywords []domain.Keyword, totalPostings, n int) []domain.Keyword {
	if len(keywords) == 0 {
		return nil
	}
	if totalPostings < 1 {
		totalPostings = 1
	}

	scored := make([]domain.Keyword, len(keywords))
	copy(scored, keywords)
	for i := range scored {
		freqShare := float64(scored[i].Frequency) / float64(totalPostings)
		if freqShare > 1 {
			freqShare = 1
		}
		scored[i].Score = frequencyWeight*freqShare +
			specificityWeight*Specificity(scored[i].Term) +
			categoryWeight*categoryWeights[scored[i].Category]
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Frequency != scored[j].Frequency {
			return scored[i].Frequency > scored[j].Frequency
		}
		return scored[i].Term < scored[j].Term
	})

	if n > 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// GroupByCategory splits ranked keywords into per-category lists,
// preserving rank order within each category.
func GroupByCategory(keywords []domain.Keyword) map[domain.KeywordCategory][]domain.Keyword {
	if len(keywords) == 0 {
		return nil
	}
	out := make(map[domain.KeywordCategory][]domain.Keyword)
	for _, kw := range keywords {
		out[kw.Category] = append(out[kw.Category], kw)
	}
	return out
}
