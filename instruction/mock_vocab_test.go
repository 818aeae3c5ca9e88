package instruction

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// MockVocab is a configurable in-memory VocabularyLookup for tests.
type MockVocab struct {
	terms     map[string]string
	static    map[string]string
	spellings []string
	catalog   []string
	delay     time.Duration
	err       error
	lookups   atomic.Int64
}

var _ interfaces.VocabularyLookup = (*MockVocab)(nil)

// MockVocabBuilder builds MockVocab instances fluently.
type MockVocabBuilder struct {
	mock *MockVocab
}

func NewMockVocabBuilder() *MockVocabBuilder {
	return &MockVocabBuilder{
		mock: &MockVocab{
			terms:  make(map[string]string),
			static: make(map[string]string),
			spellings: []string{
				"Precautions", "Voorsorgmaatreëls", "Izexwayiso", "Izilumkiso",
			},
		},
	}
}

func (b *MockVocabBuilder) WithTerm(cat entities.Category, term, lang, out string) *MockVocabBuilder {
	b.mock.terms[string(cat)+"|"+term+"|"+lang] = out
	return b
}

func (b *MockVocabBuilder) WithStatic(key, lang, out string) *MockVocabBuilder {
	b.mock.static[key+"|"+lang] = out
	return b
}

func (b *MockVocabBuilder) WithDelay(d time.Duration) *MockVocabBuilder {
	b.mock.delay = d
	return b
}

func (b *MockVocabBuilder) WithError(err error) *MockVocabBuilder {
	b.mock.err = err
	return b
}

func (b *MockVocabBuilder) WithCatalog(names ...string) *MockVocabBuilder {
	b.mock.catalog = names
	return b
}

func (b *MockVocabBuilder) Build() *MockVocab {
	return b.mock
}

// LookupCount reports how many term lookups were issued.
func (m *MockVocab) LookupCount() int64 {
	return m.lookups.Load()
}

func (m *MockVocab) Lookup(_ context.Context, cat entities.Category, term, lang string) (string, error) {
	m.lookups.Add(1)
	if m.err != nil {
		return "", m.err
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if out, ok := m.terms[string(cat)+"|"+term+"|"+lang]; ok {
		return out, nil
	}
	return term, nil
}

func (m *MockVocab) LookupStatic(_ context.Context, key, lang string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if out, ok := m.static[key+"|"+lang]; ok {
		return out, nil
	}
	switch key {
	case entities.StaticKeyTake:
		return "Take", nil
	case entities.StaticKeyPrecautionsHeader:
		return "Precautions", nil
	}
	return key, nil
}

func (m *MockVocab) HeaderSpellings() []string {
	return m.spellings
}

func (m *MockVocab) Suggest(_ context.Context, prefix string, limit int) ([]string, error) {
	var out []string
	for _, n := range m.catalog {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(prefix)) {
			out = append(out, n)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
