package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mediscript/instructions-api/instruction"
	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
)

var (
	ErrTabNotFound     = errors.New("tab not found")
	ErrLastTab         = errors.New("a session keeps at least one tab")
	ErrSessionNotFound = errors.New("session not found")
)

// Tab is one medication being edited. Each tab owns its own controller,
// so edits on one tab never touch another tab's fields or panes.
type Tab struct {
	ID         uuid.UUID
	Name       string
	Controller *instruction.Controller
}

// TabState is the serialized form of a tab written to the store.
type TabState struct {
	ID      uuid.UUID           `json:"id"`
	Name    string              `json:"name"`
	Fields  instruction.Fields  `json:"fields"`
	Display instruction.Display `json:"display"`
	Active  bool                `json:"active"`
}

// Session holds the ordered tabs of one prescription workflow. Exactly
// one tab is active at a time, and every mutation is snapshotted into
// the store so a page reload within the session restores all tabs.
type Session struct {
	mu     sync.Mutex
	id     uuid.UUID
	vocab  interfaces.VocabularyLookup
	store  *Store
	lang   string
	tabs   []*Tab
	active uuid.UUID
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// newSession creates a session with a single active default tab.
func newSession(store *Store, vocab interfaces.VocabularyLookup, lang string) *Session {
	s := &Session{
		id:    uuid.New(),
		vocab: vocab,
		store: store,
		lang:  lang,
	}
	tab := s.newTabLocked("Medication 1")
	s.tabs = []*Tab{tab}
	s.active = tab.ID
	s.persistLocked()
	return s
}

func (s *Session) newTabLocked(name string) *Tab {
	return &Tab{
		ID:         uuid.New(),
		Name:       name,
		Controller: instruction.NewController(s.vocab, s.lang),
	}
}

// AddTab appends a tab and makes it active. An empty name gets a
// positional default.
func (s *Session) AddTab(name string) TabState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		name = fmt.Sprintf("Medication %d", len(s.tabs)+1)
	}
	tab := s.newTabLocked(name)
	s.tabs = append(s.tabs, tab)
	s.active = tab.ID
	s.persistLocked()
	return s.stateLocked(tab)
}

// DeleteTab removes a tab. The last remaining tab cannot be deleted.
// Deleting the active tab activates its left neighbor, or the new
// first tab when the head was deleted.
func (s *Session) DeleteTab(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 1 {
		return ErrLastTab
	}
	idx := -1
	for i, tab := range s.tabs {
		if tab.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTabNotFound
	}
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	if s.active == id {
		next := idx - 1
		if next < 0 {
			next = 0
		}
		s.active = s.tabs[next].ID
	}
	s.persistLocked()
	return nil
}

// Activate switches the active tab.
func (s *Session) Activate(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.tabLocked(id); err != nil {
		return err
	}
	s.active = id
	s.persistLocked()
	return nil
}

func (s *Session) tabLocked(id uuid.UUID) (*Tab, error) {
	for _, tab := range s.tabs {
		if tab.ID == id {
			return tab, nil
		}
	}
	return nil, ErrTabNotFound
}

// Tabs returns a snapshot of all tabs in display order.
func (s *Session) Tabs() []TabState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statesLocked()
}

// TabSnapshot returns a single tab's current state.
func (s *Session) TabSnapshot(id uuid.UUID) (TabState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab, err := s.tabLocked(id)
	if err != nil {
		return TabState{}, err
	}
	return s.stateLocked(tab), nil
}

func (s *Session) statesLocked() []TabState {
	states := make([]TabState, 0, len(s.tabs))
	for _, tab := range s.tabs {
		states = append(states, s.stateLocked(tab))
	}
	return states
}

func (s *Session) stateLocked(tab *Tab) TabState {
	tab.Controller.Wait()
	snap := tab.Controller.Snapshot()
	return TabState{
		ID:      tab.ID,
		Name:    tab.Name,
		Fields:  snap.Fields,
		Display: snap.Display,
		Active:  tab.ID == s.active,
	}
}

// ApplyFieldEdit routes a field edit to one tab's controller and
// persists the resulting state.
func (s *Session) ApplyFieldEdit(ctx context.Context, id uuid.UUID, field instruction.Field, value string) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.ApplyFieldEdit(ctx, field, value)
	})
}

// ApplyPrecautionsEdit replaces a tab's precaution list.
func (s *Session) ApplyPrecautionsEdit(ctx context.Context, id uuid.UUID, values []string) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.ApplyPrecautionsEdit(ctx, values)
	})
}

// ApplyFieldClear clears one field on one tab.
func (s *Session) ApplyFieldClear(ctx context.Context, id uuid.UUID, field instruction.Field) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.ApplyFieldClear(ctx, field)
	})
}

// ApplyEnglishEdit replaces a tab's English pane with hand-edited text.
func (s *Session) ApplyEnglishEdit(ctx context.Context, id uuid.UUID, text string) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.ApplyEnglishEdit(ctx, text)
	})
}

// ApplyTranslatedEdit replaces a tab's translated pane with hand-edited
// text.
func (s *Session) ApplyTranslatedEdit(ctx context.Context, id uuid.UUID, text string) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.ApplyTranslatedEdit(ctx, text)
	})
}

// SetLanguage changes one tab's target language.
func (s *Session) SetLanguage(ctx context.Context, id uuid.UUID, lang string) (TabState, error) {
	return s.apply(id, func(c *instruction.Controller) {
		c.SetLanguage(ctx, lang)
	})
}

func (s *Session) apply(id uuid.UUID, fn func(*instruction.Controller)) (TabState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab, err := s.tabLocked(id)
	if err != nil {
		return TabState{}, err
	}
	fn(tab.Controller)
	state := s.stateLocked(tab)
	s.persistLocked()
	return state, nil
}

// Finalize returns the print payload of a tab: both panes verbatim and
// the target language.
func (s *Session) Finalize(id uuid.UUID) (FinalizedInstructions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab, err := s.tabLocked(id)
	if err != nil {
		return FinalizedInstructions{}, err
	}
	tab.Controller.Wait()
	snap := tab.Controller.Snapshot()
	return FinalizedInstructions{
		MedicationName:         snap.Fields.Name,
		EnglishInstructions:    snap.Display.English,
		TranslatedInstructions: snap.Display.Translated,
		TargetLanguage:         snap.Display.Language,
	}, nil
}

// FinalizedInstructions is the payload handed to downstream label
// printing when a tab's editing ends.
type FinalizedInstructions struct {
	MedicationName         string `json:"medicationName"`
	EnglishInstructions    string `json:"englishInstructions"`
	TranslatedInstructions string `json:"translatedInstructions"`
	TargetLanguage         string `json:"targetLanguage"`
}

// persistLocked snapshots all tabs into the store.
func (s *Session) persistLocked() {
	payload, err := json.Marshal(s.statesLocked())
	if err != nil {
		logging.Error("failed to serialize session tabs", "sessionId", s.id, "error", err)
		return
	}
	s.store.Put(s.id.String(), KeyMedicationTabs, payload)
}

// restore rebuilds the tabs from the store snapshot. Displayed panes
// are reseeded verbatim; the generation pipeline is not re-run.
func (s *Session) restore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store.Get(s.id.String(), KeyMedicationTabs)
	if !ok {
		return false
	}
	var states []TabState
	if err := json.Unmarshal(payload, &states); err != nil {
		logging.Warn("discarding unreadable session snapshot", "sessionId", s.id, "error", err)
		return false
	}
	if len(states) == 0 {
		return false
	}
	tabs := make([]*Tab, 0, len(states))
	active := states[0].ID
	for _, st := range states {
		tab := &Tab{
			ID:         st.ID,
			Name:       st.Name,
			Controller: instruction.NewController(s.vocab, st.Display.Language),
		}
		tab.Controller.Resume(st.Display)
		for _, f := range []struct {
			field instruction.Field
			value string
		}{
			{instruction.FieldName, st.Fields.Name},
			{instruction.FieldDosage, st.Fields.Dosage},
			{instruction.FieldFrequency, st.Fields.Frequency},
			{instruction.FieldInterval, st.Fields.Interval},
			{instruction.FieldTimeOfDay, st.Fields.TimeOfDay},
		} {
			if f.value != "" {
				tab.Controller.SeedField(f.field, f.value)
			}
		}
		for _, p := range st.Fields.Precautions {
			tab.Controller.SeedField(instruction.FieldPrecautions, p)
		}
		if st.Active {
			active = st.ID
		}
		tabs = append(tabs, tab)
	}
	s.tabs = tabs
	s.active = active
	return true
}

// SetPatient stores the active patient payload for the session.
func (s *Session) SetPatient(payload json.RawMessage) {
	s.store.Put(s.id.String(), KeyActivePatient, payload)
}

// Patient returns the stored active patient payload, if any.
func (s *Session) Patient() (json.RawMessage, bool) {
	return s.store.Get(s.id.String(), KeyActivePatient)
}
