package vocabulary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/metrics"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Compile-time check to ensure Service implements VocabularyLookup
var _ interfaces.VocabularyLookup = (*Service)(nil)

// DefaultSuggestLimit caps autocomplete results when the caller passes
// no limit.
const DefaultSuggestLimit = 10

// Service is the lookup layer over the vocabulary store. It owns the
// staleness policy: data older than the TTL is refreshed in place before
// serving, guarded by the store's update flag so concurrent callers
// never trigger duplicate reloads. There is no process-wide singleton;
// one Service per process lifetime is sufficient.
type Service struct {
	store  interfaces.VocabularyStore
	parser interfaces.VocabularyParser
	ttl    time.Duration

	// now is injectable for TTL tests.
	now func() time.Time
}

// NewService creates a lookup service with the given refresh TTL.
func NewService(store interfaces.VocabularyStore, parser interfaces.VocabularyParser, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		parser: parser,
		ttl:    ttl,
		now:    time.Now,
	}
}

// refreshIfStale reloads the tables when they are missing or older than
// the TTL. Serving stale data is preferred over failing when a reload
// breaks and a previous load exists.
func (s *Service) refreshIfStale(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lastUpdated := s.store.GetLastUpdated()
	if !lastUpdated.IsZero() && s.now().Sub(lastUpdated) <= s.ttl {
		return nil
	}

	if !s.store.BeginUpdate() {
		// Another refresh is in flight; serve what we have unless
		// nothing was ever loaded.
		if lastUpdated.IsZero() {
			return fmt.Errorf("vocabulary not loaded yet")
		}
		return nil
	}
	defer s.store.EndUpdate()

	tables, catalog, err := s.parser.LoadAll()
	if err != nil {
		if lastUpdated.IsZero() {
			return fmt.Errorf("vocabulary load failed: %w", err)
		}
		logging.Warn("Vocabulary refresh failed, serving stale data",
			"age", s.now().Sub(lastUpdated).String(), "error", err)
		return nil
	}

	s.store.UpdateData(tables, catalog)
	return nil
}

// Lookup returns the target-language equivalent of an English term. A
// term with no mapping for the requested language is returned unchanged.
func (s *Service) Lookup(ctx context.Context, category entities.Category, englishTerm, lang string) (string, error) {
	if err := s.refreshIfStale(ctx); err != nil {
		metrics.VocabularyLookupTotal.WithLabelValues(string(category), "error").Inc()
		return "", err
	}

	table, ok := s.store.GetTables().Categories[category]
	if !ok {
		metrics.VocabularyLookupTotal.WithLabelValues(string(category), "error").Inc()
		return "", fmt.Errorf("unknown vocabulary category: %s", category)
	}

	entry, ok := table[FoldTerm(englishTerm)]
	if !ok {
		metrics.VocabularyLookupTotal.WithLabelValues(string(category), "miss").Inc()
		return englishTerm, nil
	}
	out, ok := entry[strings.ToLower(lang)]
	if !ok || out == "" {
		metrics.VocabularyLookupTotal.WithLabelValues(string(category), "miss").Inc()
		return englishTerm, nil
	}

	metrics.VocabularyLookupTotal.WithLabelValues(string(category), "hit").Inc()
	return out, nil
}

// LookupStatic returns the localized form of a fixed scaffold key
// ("take", "precautionsHeader"), falling back to the key's English form.
func (s *Service) LookupStatic(ctx context.Context, key, lang string) (string, error) {
	if err := s.refreshIfStale(ctx); err != nil {
		metrics.VocabularyLookupTotal.WithLabelValues("static", "error").Inc()
		return "", err
	}

	entry, ok := s.store.GetTables().Static[FoldTerm(key)]
	if !ok {
		metrics.VocabularyLookupTotal.WithLabelValues("static", "miss").Inc()
		return key, nil
	}
	if out, ok := entry[strings.ToLower(lang)]; ok && out != "" {
		metrics.VocabularyLookupTotal.WithLabelValues("static", "hit").Inc()
		return out, nil
	}
	if out, ok := entry[entities.LangEnglish]; ok && out != "" {
		metrics.VocabularyLookupTotal.WithLabelValues("static", "miss").Inc()
		return out, nil
	}
	metrics.VocabularyLookupTotal.WithLabelValues("static", "miss").Inc()
	return key, nil
}

// HeaderSpellings returns every localized spelling of the precautions
// header for the instruction parser. Always includes the English
// spelling so detection works before the tables are first loaded.
func (s *Service) HeaderSpellings() []string {
	spellings := []string{"Precautions"}

	entry, ok := s.store.GetTables().Static[FoldTerm(entities.StaticKeyPrecautionsHeader)]
	if !ok {
		return spellings
	}

	seen := map[string]bool{FoldTerm("Precautions"): true}
	// Stable order across calls.
	langs := make([]string, 0, len(entry))
	for lang := range entry {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		spelling := entry[lang]
		folded := FoldTerm(spelling)
		if spelling == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		spellings = append(spellings, spelling)
	}
	return spellings
}

// Suggest returns catalog medication names with the given
// case-insensitive prefix, in catalog order.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if err := s.refreshIfStale(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	folded := FoldTerm(prefix)
	if folded == "" {
		return nil, nil
	}

	var out []string
	for _, entry := range s.store.GetCatalog() {
		if strings.HasPrefix(entry.Normalized, folded) {
			out = append(out, entry.Name)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
