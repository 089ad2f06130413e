package indeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heliohq/mpc/internal/domain"
)

func TestSnapRadius(t *testing.T) {
	tests := []struct {
		km   int
		want string
	}{
		{km: 5, want: "5"},       // 3.1 mi
		{km: 10, want: "5"},      // 6.2 mi
		{km: 20, want: "10"},     // 12.4 mi
		{km: 25, want: "15"},     // 15.5 mi
		{km: 40, want: "25"},     // 24.9 mi
		{km: 80, want: "50"},     // 49.7 mi
		{km: 100, want: "50"},    // 62.1 mi
		{km: 0, want: "15"},      // default 25 km
		{km: 160, want: "100"},   // 99.4 mi
	}

	for _, tt := range tests {
		if got := snapRadius(tt.km); got != tt.want {
			t.Errorf("snapRadius(%d) = %s, want %s", tt.km, got, tt.want)
		}
	}
}

func TestMapItem(t *testing.T) {
	item := actorItem{
		ID:           "abc123",
		PositionName: "Desenvolvedor Backend",
		Company:      "Acme",
		Location:     "São Paulo, SP",
		Description:  "Go, PostgreSQL, Docker",
		URL:          "https://br.indeed.com/viewjob?jk=abc123",
		Salary:       "R$ 8.000 - R$ 10.000",
		JobTypes:     []string{"Efetivo CLT", "Tempo integral"},
	}

	p := mapItem(item)
	if p.Source != ProviderID {
		t.Errorf("source = %q", p.Source)
	}
	if p.Title != "Desenvolvedor Backend" {
		t.Errorf("title = %q", p.Title)
	}
	if p.JobType != "Efetivo CLT, Tempo integral" {
		t.Errorf("job type = %q", p.JobType)
	}
	if p.ID == "" {
		t.Error("expected a derived id")
	}
	if p.ID != domain.PostingID(ProviderID, "abc123") {
		t.Error("id must derive from the actor item id")
	}
}

func TestMapItemPlaceholders(t *testing.T) {
	p := mapItem(actorItem{URL: "https://br.indeed.com/viewjob?jk=x"})
	if p.Title != domain.PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", p.Title)
	}
	if p.Company != domain.PlaceholderCompany {
		t.Errorf("company = %q, want placeholder", p.Company)
	}
}

func TestRunBlockingWithoutToken(t *testing.T) {
	a := NewAdapter("", 10*time.Second)
	if a.Available() {
		t.Fatal("adapter without token must not be available")
	}

	postings, err := a.RunBlocking(context.Background(), domain.JobQuery{Role: "dev", Quota: 5}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 5 {
		t.Fatalf("expected 5 synthetic postings, got %d", len(postings))
	}
	for _, p := range postings {
		if !p.IsFallback() {
			t.Errorf("posting %s not tagged as fallback", p.ID)
		}
	}
}

func TestRunBlockingDeadlineYieldsNoSynthetics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/abort") {
			w.Write([]byte(`{"data":{"id":"run1","status":"ABORTING"}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run1","status":"READY","defaultDatasetId":"ds1"}}`))
	}))
	defer srv.Close()

	a := NewAdapter("tok", 5*time.Second)
	a.Client().SetBaseURL(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	postings, err := a.RunBlocking(ctx, domain.JobQuery{Role: "dev", Quota: 3}, 3)
	if !errors.Is(err, domain.ErrScrapeTimeout) {
		t.Fatalf("expected ErrScrapeTimeout, got %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("deadline expiry must not substitute synthetic postings, got %d", len(postings))
	}
}
