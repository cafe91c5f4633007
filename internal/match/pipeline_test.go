package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"brickmatch/internal/catalog"
	"brickmatch/internal/config"
	"brickmatch/internal/logging"
	"brickmatch/internal/marketplace"
	"brickmatch/internal/resolution"
)

type fakeSearcher struct {
	byIdentifier  map[string][]marketplace.Candidate
	byKeywords    map[string][]marketplace.Candidate
	identifierErr error
	keywordsErr   error
	queries       []string
}

func (f *fakeSearcher) SearchByIdentifier(_ context.Context, code string, _ marketplace.IdentifierKind) ([]marketplace.Candidate, error) {
	if f.identifierErr != nil {
		return nil, f.identifierErr
	}
	return f.byIdentifier[code], nil
}

func (f *fakeSearcher) SearchByKeywords(_ context.Context, query string) ([]marketplace.Candidate, error) {
	f.queries = append(f.queries, query)
	if f.keywordsErr != nil {
		return nil, f.keywordsErr
	}
	return f.byKeywords[query], nil
}

func newTestPipeline(searcher marketplace.Searcher, matching config.Matching) *Pipeline {
	if matching.MaxAlternatives == 0 {
		matching.MaxAlternatives = 3
	}
	if len(matching.BrandKeywords) == 0 {
		matching.BrandKeywords = []string{"lego"}
	}
	return NewPipeline(searcher, matching, logging.NewNop())
}

func TestResolveEANSingleCandidate(t *testing.T) {
	searcher := &fakeSearcher{
		byIdentifier: map[string][]marketplace.Candidate{
			"5702016617839": {{ASIN: "B075SDMMMV", Title: "LEGO Star Wars 75192 Millennium Falcon", Brand: "LEGO"}},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "Millennium Falcon",
		EAN:       "5702016617839",
	})
	if outcome.Status != resolution.StatusFound {
		t.Fatalf("expected found, got %s", outcome.Status)
	}
	if outcome.MatchedASIN != "B075SDMMMV" || outcome.Method != resolution.MethodEAN || outcome.Confidence != 100 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("barcode match should not fall through to keyword search, got queries %v", searcher.queries)
	}
}

func TestResolveEANMultipleCandidates(t *testing.T) {
	searcher := &fakeSearcher{
		byIdentifier: map[string][]marketplace.Candidate{
			"5702016617839": {
				{ASIN: "B075SDMMMV", Title: "LEGO Star Wars 75192 Millennium Falcon", Brand: "LEGO"},
				{ASIN: "B075SDOTHER", Title: "LEGO Star Wars Millennium Falcon Bundle", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "Millennium Falcon",
		EAN:       "5702016617839",
	})
	if outcome.Status != resolution.StatusMultiple {
		t.Fatalf("expected multiple, got %s", outcome.Status)
	}
	if outcome.MatchedASIN != "" {
		t.Fatalf("ambiguous outcome must not carry a matched ASIN, got %q", outcome.MatchedASIN)
	}
	if len(outcome.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(outcome.Alternatives))
	}
	for _, alt := range outcome.Alternatives {
		if alt.Confidence != 100 {
			t.Fatalf("ean alternatives keep the method confidence, got %+v", alt)
		}
	}
}

func TestResolveFallsThroughToUPC(t *testing.T) {
	searcher := &fakeSearcher{
		byIdentifier: map[string][]marketplace.Candidate{
			"673419340538": {{ASIN: "B09JMP4K9W", Title: "LEGO Technic 42143 Ferrari", Brand: "LEGO"}},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "42143-1",
		Name:      "Ferrari Daytona",
		EAN:       "5702016617839",
		UPC:       "673419340538",
	})
	if outcome.Status != resolution.StatusFound || outcome.Method != resolution.MethodUPC {
		t.Fatalf("expected upc match, got %+v", outcome)
	}
	if outcome.Confidence != 95 {
		t.Fatalf("expected upc confidence 95, got %d", outcome.Confidence)
	}
}

func TestResolveExactTitleRequiresSameSetNumber(t *testing.T) {
	searcher := &fakeSearcher{
		byKeywords: map[string][]marketplace.Candidate{
			"LEGO 75192": {
				{ASIN: "B075SDMMMV", Title: "LEGO Star Wars 75192 Millennium Falcon", Brand: "LEGO"},
				{ASIN: "B07H9Q2JPK", Title: "LEGO Creator 10269 Harley-Davidson", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "Millennium Falcon",
	})
	if outcome.Status != resolution.StatusFound || outcome.Method != resolution.MethodTitleExact {
		t.Fatalf("expected title_exact match, got %+v", outcome)
	}
	if outcome.MatchedASIN != "B075SDMMMV" || outcome.Confidence != 85 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(searcher.queries) == 0 || searcher.queries[0] != "LEGO 75192" {
		t.Fatalf("expected query for base set number, got %v", searcher.queries)
	}
}

func TestResolveFuzzyRanksAlternatives(t *testing.T) {
	searcher := &fakeSearcher{
		byKeywords: map[string][]marketplace.Candidate{
			"LEGO Medieval Blacksmith": {
				{ASIN: "B08KIT", Title: "LEGO Ideas Medieval Blacksmith Building Kit", Brand: "LEGO"},
				{ASIN: "B08TOY", Title: "LEGO Medieval Blacksmith Toy", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 40})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "21325-1",
		Name:      "LEGO Medieval Blacksmith",
	})
	if outcome.Status != resolution.StatusMultiple {
		t.Fatalf("expected multiple, got %+v", outcome)
	}
	if len(outcome.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(outcome.Alternatives))
	}
	if outcome.Alternatives[0].ASIN != "B08TOY" {
		t.Fatalf("expected closest title ranked first, got %+v", outcome.Alternatives)
	}
	if outcome.Alternatives[0].Confidence <= outcome.Alternatives[1].Confidence {
		t.Fatalf("alternatives should be ranked by descending confidence: %+v", outcome.Alternatives)
	}
	for _, alt := range outcome.Alternatives {
		if alt.Confidence < 60 || alt.Confidence > 80 {
			t.Fatalf("fuzzy confidence outside band: %+v", alt)
		}
	}
}

func TestResolveFuzzySetNumberTokenWinsOutright(t *testing.T) {
	searcher := &fakeSearcher{
		byKeywords: map[string][]marketplace.Candidate{
			"LEGO Millennium Falcon": {
				{ASIN: "B0GENERIC", Title: "LEGO Millennium Falcon", Brand: "LEGO"},
				{ASIN: "B075SDMMMV", Title: "LEGO Star Wars 75192 Millennium Falcon Collector", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 40})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "LEGO Millennium Falcon",
	})
	if outcome.Status != resolution.StatusFound || outcome.Method != resolution.MethodTitleFuzzy {
		t.Fatalf("expected fuzzy match, got %+v", outcome)
	}
	if outcome.MatchedASIN != "B075SDMMMV" {
		t.Fatalf("set number token should win over closer title, got %q", outcome.MatchedASIN)
	}
	if outcome.Confidence < 60 || outcome.Confidence > 80 {
		t.Fatalf("fuzzy confidence outside band: %d", outcome.Confidence)
	}
}

func TestResolveFuzzySingleCandidate(t *testing.T) {
	searcher := &fakeSearcher{
		byKeywords: map[string][]marketplace.Candidate{
			"LEGO Medieval Blacksmith": {
				{ASIN: "B08TOY", Title: "LEGO Medieval Blacksmith", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{Name: "LEGO Medieval Blacksmith"})
	if outcome.Status != resolution.StatusFound || outcome.Method != resolution.MethodTitleFuzzy {
		t.Fatalf("expected fuzzy match, got %+v", outcome)
	}
	if outcome.Confidence != 80 {
		t.Fatalf("identical fuzzy title caps at 80, got %d", outcome.Confidence)
	}
}

func TestResolveExhaustedCarriesLastError(t *testing.T) {
	searcher := &fakeSearcher{
		identifierErr: errors.New("identifier lookup: status 429"),
		keywordsErr:   errors.New("keyword search: status 503"),
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "Millennium Falcon",
		EAN:       "5702016617839",
	})
	if outcome.Status != resolution.StatusNotFound {
		t.Fatalf("expected not_found, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.LastError, "503") {
		t.Fatalf("expected last strategy error to be kept, got %q", outcome.LastError)
	}
}

func TestResolveCapsAlternatives(t *testing.T) {
	searcher := &fakeSearcher{
		byIdentifier: map[string][]marketplace.Candidate{
			"5702016617839": {
				{ASIN: "B001", Title: "LEGO A", Brand: "LEGO"},
				{ASIN: "B002", Title: "LEGO B", Brand: "LEGO"},
				{ASIN: "B003", Title: "LEGO C", Brand: "LEGO"},
				{ASIN: "B004", Title: "LEGO D", Brand: "LEGO"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60, MaxAlternatives: 2})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{EAN: "5702016617839", Name: "A"})
	if outcome.Status != resolution.StatusMultiple || len(outcome.Alternatives) != 2 {
		t.Fatalf("expected 2 capped alternatives, got %+v", outcome)
	}
}

func TestResolveFiltersIrrelevantCandidates(t *testing.T) {
	searcher := &fakeSearcher{
		byIdentifier: map[string][]marketplace.Candidate{
			"5702016617839": {
				{ASIN: "B075SDMMMV", Title: "LEGO Star Wars 75192 Millennium Falcon", Brand: "LEGO"},
				{ASIN: "B0KNOCKOFF", Title: "Building Blocks Space Freighter", Brand: "Generic"},
			},
		},
	}
	pipeline := newTestPipeline(searcher, config.Matching{FuzzyThreshold: 60})

	outcome := pipeline.Resolve(context.Background(), catalog.Record{
		SetNumber: "75192-1",
		Name:      "Millennium Falcon",
		EAN:       "5702016617839",
	})
	if outcome.Status != resolution.StatusFound || outcome.MatchedASIN != "B075SDMMMV" {
		t.Fatalf("irrelevant candidate should be filtered before counting, got %+v", outcome)
	}
}
