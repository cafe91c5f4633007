package match

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"brickmatch/internal/catalog"
	"brickmatch/internal/config"
	"brickmatch/internal/logging"
	"brickmatch/internal/marketplace"
	"brickmatch/internal/resolution"
	"brickmatch/internal/services"
)

// Pipeline runs match strategies in fixed priority order, stopping at the
// first strategy that produces an outcome.
type Pipeline struct {
	searcher        marketplace.Searcher
	filter          *Filter
	brand           string
	fuzzyThreshold  int
	maxAlternatives int
	logger          *slog.Logger
}

// NewPipeline builds a pipeline from matching configuration. The first brand
// keyword doubles as the query prefix for exact-title searches.
func NewPipeline(searcher marketplace.Searcher, matching config.Matching, logger *slog.Logger) *Pipeline {
	brand := "LEGO"
	if len(matching.BrandKeywords) > 0 {
		brand = strings.ToUpper(matching.BrandKeywords[0])
	}
	return &Pipeline{
		searcher:        searcher,
		filter:          NewFilter(matching.BrandKeywords),
		brand:           brand,
		fuzzyThreshold:  matching.FuzzyThreshold,
		maxAlternatives: matching.MaxAlternatives,
		logger:          logging.NewComponentLogger(logger, "match"),
	}
}

// Resolve runs the strategy cascade for one catalog record. It never returns
// an error: search failures are treated as "no candidates" for the failing
// strategy, and a record that exhausts every strategy comes back not_found
// with the last failure message attached for diagnosis.
func (p *Pipeline) Resolve(ctx context.Context, record catalog.Record) resolution.Outcome {
	run := &pipelineRun{Pipeline: p, record: record}

	if catalog.ValidEAN(record.EAN) {
		if outcome := run.lookupIdentifier(ctx, record.EAN, marketplace.KindEAN, resolution.MethodEAN); outcome != nil {
			return *outcome
		}
	} else if record.EAN != "" {
		p.logger.Debug("skipping ean strategy: invalid barcode",
			logging.String("set", record.SetNumber), logging.String("ean", record.EAN))
	}

	if catalog.ValidUPC(record.UPC) {
		if outcome := run.lookupIdentifier(ctx, record.UPC, marketplace.KindUPC, resolution.MethodUPC); outcome != nil {
			return *outcome
		}
	} else if record.UPC != "" {
		p.logger.Debug("skipping upc strategy: invalid barcode",
			logging.String("set", record.SetNumber), logging.String("upc", record.UPC))
	}

	if outcome := run.exactTitle(ctx); outcome != nil {
		return *outcome
	}
	if outcome := run.fuzzyTitle(ctx); outcome != nil {
		return *outcome
	}

	return resolution.Outcome{
		Status:    resolution.StatusNotFound,
		LastError: run.lastError,
	}
}

// pipelineRun carries per-record state across strategy attempts.
type pipelineRun struct {
	*Pipeline
	record    catalog.Record
	lastError string
}

// lookupIdentifier implements the EAN and UPC strategies. Exactly one
// plausible candidate resolves the record at the method's fixed confidence;
// several candidates surface as an ambiguous outcome.
func (r *pipelineRun) lookupIdentifier(ctx context.Context, code string, kind marketplace.IdentifierKind, method resolution.Method) *resolution.Outcome {
	candidates, err := r.searcher.SearchByIdentifier(ctx, code, kind)
	if err != nil {
		r.noteFailure(string(kind), err)
		return nil
	}
	plausible := r.filter.Apply(candidates)
	confidence, _ := method.ConfidenceBand()

	switch len(plausible) {
	case 0:
		return nil
	case 1:
		return &resolution.Outcome{
			Status:      resolution.StatusFound,
			MatchedASIN: plausible[0].ASIN,
			Method:      method,
			Confidence:  confidence,
		}
	default:
		return &resolution.Outcome{
			Status:       resolution.StatusMultiple,
			Alternatives: r.alternatives(plausible, func(marketplace.Candidate) int { return confidence }),
		}
	}
}

// exactTitle implements strategy 3: search "{brand} {set number}" and accept
// only candidates whose own extracted set number matches the record's.
func (r *pipelineRun) exactTitle(ctx context.Context) *resolution.Outcome {
	expected := r.expectedSetNumber()
	if expected == "" {
		return nil
	}

	query := r.brand + " " + catalog.BaseSetNumber(expected)
	candidates, err := r.searcher.SearchByKeywords(ctx, query)
	if err != nil {
		r.noteFailure("title_exact", err)
		return nil
	}

	var matching []marketplace.Candidate
	for _, candidate := range r.filter.Apply(candidates) {
		if token, ok := catalog.ExtractSetNumber(candidate.Title); ok && catalog.SameSet(token, expected) {
			matching = append(matching, candidate)
		}
	}
	confidence, _ := resolution.MethodTitleExact.ConfidenceBand()

	switch len(matching) {
	case 0:
		return nil
	case 1:
		return &resolution.Outcome{
			Status:      resolution.StatusFound,
			MatchedASIN: matching[0].ASIN,
			Method:      resolution.MethodTitleExact,
			Confidence:  confidence,
		}
	default:
		return &resolution.Outcome{
			Status:       resolution.StatusMultiple,
			Alternatives: r.alternatives(matching, func(marketplace.Candidate) int { return confidence }),
		}
	}
}

// fuzzyTitle implements strategy 4: score every filtered candidate against
// the record's display name, discard those under the threshold, and select a
// set-number match outright regardless of rank.
func (r *pipelineRun) fuzzyTitle(ctx context.Context) *resolution.Outcome {
	name := strings.TrimSpace(r.record.Name)
	if name == "" {
		return nil
	}

	candidates, err := r.searcher.SearchByKeywords(ctx, name)
	if err != nil {
		r.noteFailure("title_fuzzy", err)
		return nil
	}

	expected := r.expectedSetNumber()
	type scored struct {
		candidate marketplace.Candidate
		score     int
	}
	var remaining []scored
	for _, candidate := range r.filter.Apply(candidates) {
		score := Score(candidate.Title, name, expected)
		if score < r.fuzzyThreshold {
			continue
		}
		remaining = append(remaining, scored{candidate: candidate, score: score})
	}
	if len(remaining) == 0 {
		return nil
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].score > remaining[j].score
	})

	if expected != "" {
		for _, entry := range remaining {
			token, ok := catalog.ExtractSetNumber(entry.candidate.Title)
			if ok && catalog.SameSet(token, expected) {
				return &resolution.Outcome{
					Status:      resolution.StatusFound,
					MatchedASIN: entry.candidate.ASIN,
					Method:      resolution.MethodTitleFuzzy,
					Confidence:  clampFuzzy(entry.score),
				}
			}
		}
	}

	if len(remaining) == 1 {
		return &resolution.Outcome{
			Status:      resolution.StatusFound,
			MatchedASIN: remaining[0].candidate.ASIN,
			Method:      resolution.MethodTitleFuzzy,
			Confidence:  clampFuzzy(remaining[0].score),
		}
	}

	scores := make(map[string]int, len(remaining))
	ordered := make([]marketplace.Candidate, 0, len(remaining))
	for _, entry := range remaining {
		scores[entry.candidate.ASIN] = clampFuzzy(entry.score)
		ordered = append(ordered, entry.candidate)
	}
	return &resolution.Outcome{
		Status: resolution.StatusMultiple,
		Alternatives: r.alternatives(ordered, func(c marketplace.Candidate) int {
			return scores[c.ASIN]
		}),
	}
}

func (r *pipelineRun) expectedSetNumber() string {
	if number := strings.TrimSpace(r.record.SetNumber); number != "" {
		return number
	}
	if token, ok := catalog.ExtractSetNumber(r.record.Name); ok {
		return token
	}
	return ""
}

func (r *pipelineRun) alternatives(candidates []marketplace.Candidate, confidence func(marketplace.Candidate) int) []resolution.Alternative {
	limit := r.maxAlternatives
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	alternatives := make([]resolution.Alternative, 0, limit)
	for _, candidate := range candidates[:limit] {
		alternatives = append(alternatives, resolution.Alternative{
			ASIN:       candidate.ASIN,
			Title:      candidate.Title,
			Confidence: confidence(candidate),
		})
	}
	return alternatives
}

func (r *pipelineRun) noteFailure(strategy string, err error) {
	r.lastError = err.Error()
	attrs := logging.Args(
		logging.String("set", r.record.SetNumber),
		logging.String("strategy", strategy),
		logging.Error(err))
	if services.IsTransient(err) {
		r.logger.Warn("strategy search failed, will fall through", attrs...)
		return
	}
	r.logger.Error("strategy search failed", attrs...)
}

// clampFuzzy forces a fuzzy score into the method's confidence band.
func clampFuzzy(score int) int {
	min, max := resolution.MethodTitleFuzzy.ConfidenceBand()
	if score < min {
		return min
	}
	if score > max {
		return max
	}
	return score
}
