package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/llm"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/prompts"
	"github.com/heliohq/mpc/internal/registry"
	"github.com/heliohq/mpc/internal/stream"
)

const (
	// singleBatchMax is the largest collection sent to the model in one call.
	singleBatchMax = 20

	// batchSize chunks larger collections.
	batchSize = 10

	// descriptionCap bounds how much of each description enters the prompt.
	descriptionCap = 2000

	// topN is the size of the final ranking.
	topN = 10
)

// ExtractorService drives the extraction half of the pipeline: prompt the
// model chain per batch, merge and rank.
type ExtractorService struct {
	chain    *llm.Chain
	reg      *registry.Registry
	deadline time.Duration
}

// NewExtractorService wires the extractor.
func NewExtractorService(chain *llm.Chain, reg *registry.Registry, deadline time.Duration) *ExtractorService {
	return &ExtractorService{
		chain:    chain,
		reg:      reg,
		deadline: deadline,
	}
}

// GetRun returns a stored extraction run by id.
func (s *ExtractorService) GetRun(id string) (*domain.ExtractionRun, error) {
	return s.reg.Run(id)
}

// ListRuns returns summaries of all extraction runs, most recent first.
func (s *ExtractorService) ListRuns() []domain.RunSummary {
	return s.reg.ListRuns()
}

// RunsForCollection returns all runs made against a collection, oldest first.
func (s *ExtractorService) RunsForCollection(collectionID string) []*domain.ExtractionRun {
	return s.reg.RunsForCollection(collectionID)
}

// Extract runs keyword extraction against a stored collection. roleContext
// and areaContext are optional: an empty role falls back to the collection's
// query role, and the area narrows the prompt, e.g. "dados".
func (s *ExtractorService) Extract(ctx context.Context, collectionID, roleContext, areaContext string, em *stream.Emitter) (*domain.ExtractionRun, error) {
	c, err := s.reg.Collection(collectionID)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(roleContext)
	if role == "" {
		role = c.Query.Role
	}

	run := &domain.ExtractionRun{
		ID:           uuid.New().String(),
		CollectionID: c.ID,
		RoleContext:  role,
		AreaContext:  strings.TrimSpace(areaContext),
		CreatedAt:    time.Now(),
		Status:       domain.RunPending,
	}
	s.reg.PutRun(run)

	ctx = logger.SetRunID(ctx, run.ID)
	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	start := time.Now()
	em.Emit(domain.EventStarting, "iniciando extração de palavras-chave", 0, nil)

	run.Status = domain.RunCollectingContext
	s.reg.PutRun(run)
	if len(c.Postings) == 0 {
		return s.fail(ctx, run, em, "no postings in collection")
	}

	run.Status = domain.RunBatching
	run.Batches = makeBatches(c.Postings)
	s.reg.PutRun(run)
	em.Emit(domain.EventProgress,
		fmt.Sprintf("%d vagas em %d lotes", len(c.Postings), len(run.Batches)), 10, nil)

	// No model configured at all: extract offline so the pipeline still
	// answers, clearly tagged.
	if s.chain.Empty() {
		logger.CtxWarn(ctx, "no model configured, extracting with lexicon fallback")
		keywords := RegexExtract(c.Postings)
		return s.finish(ctx, run, em, keywords, FallbackModelName, len(c.Postings), start)
	}

	run.Status = domain.RunModelCalling
	s.reg.PutRun(run)

	parsed := make([][]domain.Keyword, 0, len(run.Batches))
	for i := range run.Batches {
		if ctx.Err() != nil {
			return s.fail(ctx, run, em, "deadline")
		}

		batch := &run.Batches[i]
		keywords, model, err := s.callModel(ctx, c, run, batch)
		if err != nil {
			batch.Error = err.Error()
			s.reg.PutRun(run)
			logger.CtxWarn(ctx, "batch %d failed: %v", batch.Index, err)
			continue
		}

		batch.Keywords = keywords
		if run.ModelUsed == "" {
			run.ModelUsed = model
		}
		parsed = append(parsed, keywords)
		s.reg.PutRun(run)

		em.Emit(domain.EventPartial,
			fmt.Sprintf("lote %d/%d analisado", i+1, len(run.Batches)),
			10+float64(i+1)/float64(len(run.Batches))*70,
			map[string]any{"batch": batch.Index, "keywords": len(keywords)})
	}

	if len(parsed) == 0 {
		if ctx.Err() != nil {
			return s.fail(ctx, run, em, "deadline")
		}
		return s.fail(ctx, run, em, "all batches failed")
	}

	run.Status = domain.RunMerging
	s.reg.PutRun(run)

	return s.finish(ctx, run, em, Merge(parsed), run.ModelUsed, len(c.Postings), start)
}

// callModel renders the prompt for one batch and parses the answer. A
// non-JSON answer earns exactly one retry with the reinforcement suffix.
func (s *ExtractorService) callModel(ctx context.Context, c *domain.Collection, run *domain.ExtractionRun, batch *domain.Batch) ([]domain.Keyword, string, error) {
	prompt := s.renderPrompt(c, run, batch)

	raw, model, err := s.chain.Generate(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	batch.RawResponse = raw

	keywords, parseErr := parseKeywords(raw)
	if parseErr == nil {
		return keywords, model, nil
	}

	logger.With(logger.Fields{logger.FieldModel: model}).
		Warn(ctx, "unparseable answer for batch %d, retrying: %v", batch.Index, parseErr)

	raw, model, err = s.chain.Generate(ctx, prompt+prompts.JSONOnlyReinforcement)
	if err != nil {
		return nil, "", err
	}
	batch.RawResponse = raw

	keywords, parseErr = parseKeywords(raw)
	if parseErr != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrModelParseFailure, parseErr)
	}
	return keywords, model, nil
}

func (s *ExtractorService) renderPrompt(c *domain.Collection, run *domain.ExtractionRun, batch *domain.Batch) string {
	byID := make(map[string]domain.Posting, len(c.Postings))
	for _, p := range c.Postings {
		byID[p.ID] = p
	}

	blocks := make([]string, 0, len(batch.PostingIDs))
	for i, id := range batch.PostingIDs {
		p := byID[id]
		desc := p.Description
		if len(desc) > descriptionCap {
			desc = desc[:descriptionCap]
		}
		blocks = append(blocks, prompts.PostingBlock(i+1, p.Title, p.Company, desc))
	}
	return prompts.ExtractionPrompt(run.RoleContext, run.AreaContext, blocks)
}

func (s *ExtractorService) finish(ctx context.Context, run *domain.ExtractionRun, em *stream.Emitter, merged []domain.Keyword, model string, totalPostings int, start time.Time) (*domain.ExtractionRun, error) {
	run.Status = domain.RunRanked
	run.RankedKeywords = Rank(merged, totalPostings, topN)
	run.Categories = GroupByCategory(run.RankedKeywords)
	run.ModelUsed = model
	run.Status = domain.RunSucceeded
	s.reg.PutRun(run)

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(run.RankedKeywords),
		logger.FieldModel:      model,
	}).Info(ctx, "extraction finished")

	em.Emit(domain.EventResult, "extração concluída", 100, run)
	return run, nil
}

func (s *ExtractorService) fail(ctx context.Context, run *domain.ExtractionRun, em *stream.Emitter, reason string) (*domain.ExtractionRun, error) {
	run.Status = domain.RunFailed
	s.reg.PutRun(run)

	logger.CtxWarn(ctx, "extraction failed: %s", reason)
	em.Emit(domain.EventError, "extração interrompida", 0, map[string]any{"reason": reason})

	if reason == "deadline" {
		return run, domain.ErrDeadline
	}
	return run, fmt.Errorf("extraction failed: %s", reason)
}

// makeBatches partitions postings: small collections go in one call,
// anything larger is chunked.
func makeBatches(postings []domain.Posting) []domain.Batch {
	size := len(postings)
	if size <= singleBatchMax {
		return []domain.Batch{{Index: 0, PostingIDs: postingIDs(postings)}}
	}

	var out []domain.Batch
	for i := 0; i < size; i += batchSize {
		end := i + batchSize
		if end > size {
			end = size
		}
		out = append(out, domain.Batch{
			Index:      len(out),
			PostingIDs: postingIDs(postings[i:end]),
		})
	}
	return out
}

func postingIDs(postings []domain.Posting) []string {
	out := make([]string, len(postings))
	for i, p := range postings {
		out[i] = p.ID
	}
	return out
}

// modelAnswer is the JSON document models are instructed to return.
type modelAnswer struct {
	Keywords []modelKeyword `json:"top_10_palavras_chave"`
}

type modelKeyword struct {
	Term      string `json:"termo"`
	Frequency int    `json:"frequencia"`
	Category  string `json:"categoria"`
}

// parseKeywords decodes a model answer, tolerating markdown code fences.
func parseKeywords(raw string) ([]domain.Keyword, error) {
	text := stripFences(raw)

	var answer modelAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(answer.Keywords) == 0 {
		return nil, fmt.Errorf("answer holds no keywords")
	}

	out := make([]domain.Keyword, 0, len(answer.Keywords))
	for _, kw := range answer.Keywords {
		term := strings.TrimSpace(kw.Term)
		if term == "" {
			continue
		}
		freq := kw.Frequency
		if freq <= 0 {
			freq = 1
		}
		cat := domain.KeywordCategory(strings.ToLower(strings.TrimSpace(kw.Category)))
		if !domain.ValidCategory(cat) {
			cat = Categorize(term)
		}
		out = append(out, domain.Keyword{Term: term, Frequency: freq, Category: cat})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("answer holds no usable keywords")
	}
	return out, nil
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, and falls back to the outermost JSON object otherwise.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if start := strings.Index(text, "{"); start > 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			return text[start : end+1]
		}
	}
	return text
}
