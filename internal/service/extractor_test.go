package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/llm"
	"github.com/heliohq/mpc/internal/registry"
)

// fakeModel replays canned answers in order. An entry with err set fails
// that call; the last entry repeats once exhausted.
type fakeModel struct {
	name    string
	answers []fakeAnswer
	calls   int
	prompts []string
}

type fakeAnswer struct {
	text string
	err  error
}

func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	i := m.calls
	if i >= len(m.answers) {
		i = len(m.answers) - 1
	}
	m.calls++
	a := m.answers[i]
	return a.text, a.err
}

const goodAnswer = `{"top_10_palavras_chave":[
	{"termo":"python","frequencia":3,"categoria":"technical"},
	{"termo":"sql","frequencia":2,"categoria":"technical"},
	{"termo":"comunicação","frequencia":1,"categoria":"behavioral"}
]}`

func storedCollection(t *testing.T, reg *registry.Registry, n int) *domain.Collection {
	t.Helper()
	c := &domain.Collection{
		ID:        "c1",
		CreatedAt: time.Now(),
		Query:     domain.JobQuery{Role: "desenvolvedor python", Quota: n},
		Status:    domain.CollectionSucceeded,
	}
	for i := 0; i < n; i++ {
		p := domain.Posting{
			ID:          fmt.Sprintf("p%d", i),
			Title:       fmt.Sprintf("Vaga %d", i),
			Company:     "Acme",
			Description: "Python e SQL",
			Source:      "indeed",
		}
		c.Postings = append(c.Postings, p)
	}
	reg.PutCollection(c)
	return c
}

func TestMakeBatches(t *testing.T) {
	tests := []struct {
		postings  int
		wantSizes []int
	}{
		{postings: 1, wantSizes: []int{1}},
		{postings: 20, wantSizes: []int{20}},
		{postings: 21, wantSizes: []int{10, 10, 1}},
		{postings: 25, wantSizes: []int{10, 10, 5}},
		{postings: 50, wantSizes: []int{10, 10, 10, 10, 10}},
	}

	for _, tt := range tests {
		postings := make([]domain.Posting, tt.postings)
		for i := range postings {
			postings[i] = domain.Posting{ID: fmt.Sprintf("p%d", i)}
		}

		batches := makeBatches(postings)
		if len(batches) != len(tt.wantSizes) {
			t.Errorf("%d postings: got %d batches, want %d", tt.postings, len(batches), len(tt.wantSizes))
			continue
		}

		seen := make(map[string]int)
		for i, b := range batches {
			if b.Index != i {
				t.Errorf("%d postings: batch %d has index %d", tt.postings, i, b.Index)
			}
			if len(b.PostingIDs) != tt.wantSizes[i] {
				t.Errorf("%d postings: batch %d size = %d, want %d", tt.postings, i, len(b.PostingIDs), tt.wantSizes[i])
			}
			for _, id := range b.PostingIDs {
				seen[id]++
			}
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("%d postings: %s appears in %d batches", tt.postings, id, n)
			}
		}
		if len(seen) != tt.postings {
			t.Errorf("%d postings: %d ids batched", tt.postings, len(seen))
		}
	}
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "plain JSON", raw: goodAnswer, wantLen: 3},
		{name: "fenced", raw: "```\n" + goodAnswer + "\n```", wantLen: 3},
		{name: "fenced with tag", raw: "```json\n" + goodAnswer + "\n```", wantLen: 3},
		{name: "prose wrapped", raw: "Claro! Segue o resultado:\n" + goodAnswer + "\nEspero ter ajudado.", wantLen: 3},
		{name: "garbage", raw: "não consegui analisar as vagas", wantErr: true},
		{name: "empty list", raw: `{"top_10_palavras_chave":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeywords(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("keywords = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseKeywordsRepairsFields(t *testing.T) {
	got, err := parseKeywords(`{"top_10_palavras_chave":[
		{"termo":"python","frequencia":0,"categoria":"linguagem"},
		{"termo":"  ","frequencia":3,"categoria":"technical"}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("keywords = %d, want 1", len(got))
	}
	if got[0].Frequency != 1 {
		t.Errorf("frequency = %d, want repaired to 1", got[0].Frequency)
	}
	if got[0].Category != domain.CategoryTechnical {
		t.Errorf("category = %s, want technical via lexicon", got[0].Category)
	}
}

func TestExtractHappyPath(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 3)

	model := &fakeModel{name: "gemini-test", answers: []fakeAnswer{{text: goodAnswer}}}
	svc := NewExtractorService(llm.NewChain(model), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunSucceeded {
		t.Errorf("status = %s", run.Status)
	}
	if run.ModelUsed != "gemini-test" {
		t.Errorf("model used = %q", run.ModelUsed)
	}
	if len(run.Batches) != 1 {
		t.Errorf("batches = %d, want 1", len(run.Batches))
	}
	if len(run.RankedKeywords) != 3 {
		t.Errorf("ranked = %d, want 3", len(run.RankedKeywords))
	}
	if run.Categories[domain.CategoryTechnical] == nil {
		t.Error("expected a technical category group")
	}

	if len(model.prompts) != 1 {
		t.Fatalf("model calls = %d, want 1", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, "--- VAGA 1 ---") || !strings.Contains(prompt, "--- FIM VAGA 3 ---") {
		t.Error("prompt lacks numbered posting blocks")
	}
	if !strings.Contains(prompt, "desenvolvedor python") {
		t.Error("prompt lacks the role context")
	}

	stored, err := reg.Run(run.ID)
	if err != nil {
		t.Fatalf("run not stored: %v", err)
	}
	if stored.Status != domain.RunSucceeded {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestExtractAreaContextInPrompt(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	model := &fakeModel{name: "m", answers: []fakeAnswer{{text: goodAnswer}}}
	svc := NewExtractorService(llm.NewChain(model), reg, time.Minute)

	if _, err := svc.Extract(context.Background(), "c1", "", "dados", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(model.prompts[0], "na área de dados") {
		t.Error("prompt lacks the area context")
	}
}

func TestExtractRoleOverride(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	model := &fakeModel{name: "m", answers: []fakeAnswer{{text: goodAnswer}}}
	svc := NewExtractorService(llm.NewChain(model), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "engenheiro de dados", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.RoleContext != "engenheiro de dados" {
		t.Errorf("role context = %q, want the caller's role", run.RoleContext)
	}
	if !strings.Contains(model.prompts[0], "engenheiro de dados") {
		t.Error("prompt lacks the overridden role")
	}
}

func TestExtractFallbackHop(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	primary := &fakeModel{name: "primary", answers: []fakeAnswer{{err: errors.New("quota exceeded")}}}
	secondary := &fakeModel{name: "secondary", answers: []fakeAnswer{{text: goodAnswer}}}
	svc := NewExtractorService(llm.NewChain(primary, secondary), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ModelUsed != "secondary" {
		t.Errorf("model used = %q, want secondary", run.ModelUsed)
	}
	if run.Status != domain.RunSucceeded {
		t.Errorf("status = %s", run.Status)
	}
}

func TestExtractParseRetryWithReinforcement(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	model := &fakeModel{name: "m", answers: []fakeAnswer{
		{text: "desculpe, aqui estão as palavras em texto corrido"},
		{text: goodAnswer},
	}}
	svc := NewExtractorService(llm.NewChain(model), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunSucceeded {
		t.Errorf("status = %s", run.Status)
	}
	if len(model.prompts) != 2 {
		t.Fatalf("model calls = %d, want 2", len(model.prompts))
	}
	if !strings.Contains(model.prompts[1], "SOMENTE com o objeto JSON") {
		t.Error("retry prompt lacks the JSON-only reinforcement")
	}
}

func TestExtractAllBatchesFail(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	model := &fakeModel{name: "m", answers: []fakeAnswer{{text: "nunca JSON"}}}
	svc := NewExtractorService(llm.NewChain(model), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "", "", nil)
	if err == nil {
		t.Fatal("expected error when every batch fails")
	}
	if run.Status != domain.RunFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if run.Batches[0].Error == "" {
		t.Error("batch error not recorded")
	}
}

func TestExtractNoModelUsesLexicon(t *testing.T) {
	reg := registry.New()
	storedCollection(t, reg, 2)

	svc := NewExtractorService(llm.NewChain(), reg, time.Minute)

	run, err := svc.Extract(context.Background(), "c1", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunSucceeded {
		t.Errorf("status = %s", run.Status)
	}
	if run.ModelUsed != FallbackModelName {
		t.Errorf("model used = %q, want %q", run.ModelUsed, FallbackModelName)
	}
	if len(run.RankedKeywords) == 0 {
		t.Error("lexicon fallback produced no keywords")
	}
}

func TestExtractUnknownCollection(t *testing.T) {
	svc := NewExtractorService(llm.NewChain(), registry.New(), time.Minute)
	if _, err := svc.Extract(context.Background(), "missing", "", "", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractEmptyCollectionFails(t *testing.T) {
	reg := registry.New()
	reg.PutCollection(&domain.Collection{ID: "empty", Status: domain.CollectionSucceeded})

	svc := NewExtractorService(llm.NewChain(), reg, time.Minute)
	run, err := svc.Extract(context.Background(), "empty", "", "", nil)
	if err == nil {
		t.Fatal("expected error for empty collection")
	}
	if run.Status != domain.RunFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}
