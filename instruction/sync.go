package instruction

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/metrics"
)

// State of the per-tab synchronization machine.
type State int

const (
	// StateEmpty means no required field is set; both panes show the
	// placeholder.
	StateEmpty State = iota
	// StatePartial means some but not all required fields are set; the
	// display is frozen to avoid flicker mid-entry.
	StatePartial
	// StateGenerated means the full structure is composed and both
	// panes are populated.
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateGenerated:
		return "generated"
	}
	return "unknown"
}

// TranslationStatus reports the translated pane's lookup progress.
type TranslationStatus string

const (
	TranslationIdle    TranslationStatus = "idle"
	TranslationLoading TranslationStatus = "loading"
	TranslationReady   TranslationStatus = "ready"
	TranslationFailed  TranslationStatus = "error"
)

// Display is the pane pair shown to the user. It is the only output of
// the engine that crosses into external persistence.
type Display struct {
	English    string `json:"english"`
	Translated string `json:"translated"`
	Language   string `json:"language"`
}

// Pane placeholder strings.
const (
	Placeholder        = "Instructions will appear here."
	LoadingPlaceholder = "Loading…"
)

// Controller orchestrates parse and recompose for one medication tab.
// All event entry points serialize on an internal mutex; translation
// lookups run asynchronously and their results are dropped when a later
// input has superseded them.
type Controller struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	vocab  interfaces.VocabularyLookup
	parser *Parser

	lang       string
	state      State
	fields     Fields
	structure  Structure
	display    Display
	status     TranslationStatus
	overridden bool

	// seq tags each input event; an in-flight translation result is
	// applied only when its tag still matches.
	seq uint64

	// lastDosageLine is the dosage sentence composed by the last
	// generation. Re-parsing the visible text splits the dosage line at
	// the first sentence boundary, which can fall inside a sentence whose
	// dosage value itself contains ". "; this baseline tells that
	// generated residue apart from user-typed trailing text.
	lastDosageLine string
}

// NewController builds a controller for one tab targeting the given
// language.
func NewController(vocab interfaces.VocabularyLookup, lang string) *Controller {
	return &Controller{
		vocab:  vocab,
		parser: NewParser(vocab.HeaderSpellings()...),
		lang:   lang,
		status: TranslationIdle,
		display: Display{
			English:    Placeholder,
			Translated: Placeholder,
			Language:   lang,
		},
	}
}

// Snapshot is a point-in-time view of the controller for callers.
type Snapshot struct {
	State   string            `json:"state"`
	Fields  Fields            `json:"fields"`
	Display Display           `json:"display"`
	Status  TranslationStatus `json:"translationStatus"`
}

// Snapshot returns the current state, fields and display.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state.String(),
		Fields:  c.fields.Clone(),
		Display: c.display,
		Status:  c.status,
	}
}

// Wait blocks until any in-flight translation has settled. Intended for
// request handlers and tests that need the final pane contents.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// ApplyFieldEdit handles a structured-field change.
func (c *Controller) ApplyFieldEdit(ctx context.Context, field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Set(field, value)
	c.regenerateLocked(ctx)
}

// ApplyPrecautionsEdit replaces the precautions list.
func (c *Controller) ApplyPrecautionsEdit(ctx context.Context, values []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.SetPrecautions(values)
	c.regenerateLocked(ctx)
}

// ApplyFieldClear handles a field-clear event: the mapped section(s) are
// stripped first, then the text is recomposed or reassembled. Clearing a
// field with no generated content and no stored value is a no-op.
func (c *Controller) ApplyFieldClear(ctx context.Context, field Field) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hadValue := c.fields.has(field)
	cleared, changed := ClearSection(c.structure, field)
	if !changed && !hadValue {
		return
	}

	c.fields.Clear(field)
	c.structure = cleared
	c.seq++

	switch {
	case c.fields.RequiredEmpty():
		c.resetLocked()
	case c.fields.RequiredComplete():
		// Interval or precautions cleared: the dosage sentence (and the
		// rest of the block) regenerates from the remaining fields.
		c.generateLocked(ctx, c.structure.User, c.structure.DosageTrailing)
	default:
		// Required set broken mid-way: show the stripped text without
		// recomposing.
		c.state = StatePartial
		c.display.English = Reassemble(c.structure)
		c.mirrorClearLocked(field)
		c.settleAbandonedTranslationLocked(ctx)
	}
}

// ApplyEnglishEdit handles a direct edit of the English text box. Parsed
// user content replaces the retained slots; generated sections missing
// from the new text keep their previous retained value, so a manual
// deletion of a generated line only hides it until the next
// regeneration.
func (c *Controller) ApplyEnglishEdit(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++

	parsed := c.parser.Parse(text)

	merged := parsed.Clone()
	if merged.MedicationNameLine == "" {
		merged.MedicationNameLine = c.structure.MedicationNameLine
	}
	if merged.DosageLine == "" {
		merged.DosageLine = c.structure.DosageLine
	}
	if merged.TimeOfDayLine == "" {
		merged.TimeOfDayLine = c.structure.TimeOfDayLine
	}
	if merged.PrecautionsHeader == "" {
		merged.PrecautionsHeader = c.structure.PrecautionsHeader
	}
	if len(merged.PrecautionsList) == 0 {
		merged.PrecautionsList = append([]string(nil), c.structure.PrecautionsList...)
	}
	c.structure = merged

	// The visible text stays exactly as typed.
	c.display.English = text

	// Mirror the user-content deltas into the translated pane by the
	// same positional rule. The generated scaffold there is never
	// retranslated. A hand-edited translated pane is left alone.
	if !c.overridden && c.hasTranslatedTextLocked() {
		tparsed := c.parser.Parse(c.display.Translated)
		tparsed.User = parsed.User.Clone()
		if c.trimGeneratedTrailing(parsed.DosageTrailing) == parsed.DosageTrailing {
			// Mirror the trailing text only when it is purely
			// user-typed; generated residue would clobber the
			// translated sentence's own tail.
			tparsed.DosageTrailing = parsed.DosageTrailing
		}
		c.display.Translated = Reassemble(tparsed)
	}

	c.settleAbandonedTranslationLocked(ctx)
}

// ApplyTranslatedEdit stores a direct edit of the translated text box as
// a verbatim override. It never feeds back into English generation, and
// the machine stops touching the pane afterwards.
func (c *Controller) ApplyTranslatedEdit(_ context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.overridden = true
	c.display.Translated = text
	c.status = TranslationReady
}

// SetLanguage switches the target language and refreshes the translated
// pane from the current English text.
func (c *Controller) SetLanguage(ctx context.Context, lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = lang
	c.display.Language = lang
	if c.state == StateGenerated {
		c.seq++
		c.translateLocked(ctx)
	}
}

// Resume seeds the display from previously saved values, bypassing parse
// and compose until the next edit.
func (c *Controller) Resume(d Display) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.display = d
	c.lang = d.Language
	c.overridden = false
	c.status = TranslationReady
	if strings.TrimSpace(d.English) != "" && d.English != Placeholder {
		c.state = StateGenerated
	}
}

// SeedField restores a field value without running the generation
// pipeline. Used together with Resume when rebuilding from a saved
// snapshot; the panes keep their resumed contents until the next edit.
func (c *Controller) SeedField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields.Set(field, value)
	if !c.fields.RequiredEmpty() && c.state != StateGenerated {
		c.state = StatePartial
	}
}

// regenerateLocked runs the guard and, when the required set is
// complete, the parse-recompose-translate pipeline.
func (c *Controller) regenerateLocked(ctx context.Context) {
	c.seq++

	switch {
	case c.fields.RequiredEmpty():
		c.resetLocked()
	case !c.fields.RequiredComplete():
		// Mid-entry: leave the prior display untouched.
		c.state = StatePartial
		c.settleAbandonedTranslationLocked(ctx)
	default:
		prior := c.parseCurrentLocked()
		c.generateLocked(ctx, prior.User, prior.DosageTrailing)
	}
}

// generateLocked composes sections from the current fields, preserving
// the given user content, and refreshes both panes.
func (c *Controller) generateLocked(ctx context.Context, user UserContent, trailing string) {
	c.state = StateGenerated
	c.structure = Compose(c.fields, user, c.trimGeneratedTrailing(trailing))
	c.lastDosageLine = c.structure.DosageLine
	c.display.English = Reassemble(c.structure)
	metrics.InstructionComposeTotal.Inc()
	c.translateLocked(ctx)
}

// trimGeneratedTrailing strips from recovered trailing text the tail of
// the previously composed dosage sentence. Without the trim, a sentence
// split at an interior period would re-append its own tail on every
// regeneration, growing the text. Only text beyond the generated tail is
// user trailing text.
func (c *Controller) trimGeneratedTrailing(trailing string) string {
	if trailing == "" || c.lastDosageLine == "" {
		return trailing
	}
	_, genTail := splitDosageLine(c.lastDosageLine)
	if genTail == "" {
		return trailing
	}
	if trailing == genTail {
		return ""
	}
	if strings.HasPrefix(trailing, genTail) {
		return strings.TrimLeft(trailing[len(genTail):], " ")
	}
	return trailing
}

// translateLocked kicks off the asynchronous translation substitution
// for the current English text. The pane shows a loading placeholder
// until the lookups settle; a stale result is dropped silently.
func (c *Controller) translateLocked(ctx context.Context) {
	if c.overridden {
		return
	}

	seq := c.seq
	english := c.display.English
	fields := c.fields.Clone()
	lang := c.lang

	c.status = TranslationLoading
	c.display.Translated = LoadingPlaceholder

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		start := time.Now()
		translated, err := Translate(ctx, english, fields, lang, c.vocab)
		metrics.TranslationDuration.Observe(time.Since(start).Seconds())

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.seq != seq {
			// A later input superseded this request.
			return
		}
		if err != nil {
			logging.Warn("Translation substitution failed, falling back to English",
				"language", lang, "error", err)
			c.display.Translated = english
			c.status = TranslationFailed
			return
		}
		c.display.Translated = translated
		c.status = TranslationReady
	}()
}

// settleAbandonedTranslationLocked re-issues the translation when an
// input has superseded an in-flight request without producing a new
// pane value; the stale result is dropped on arrival and the pane would
// otherwise read the loading placeholder forever.
func (c *Controller) settleAbandonedTranslationLocked(ctx context.Context) {
	if c.status == TranslationLoading && !c.overridden {
		c.translateLocked(ctx)
	}
}

// mirrorClearLocked strips the cleared field's section(s) from the
// translated pane without retranslating anything.
func (c *Controller) mirrorClearLocked(field Field) {
	if c.overridden || !c.hasTranslatedTextLocked() {
		return
	}
	tparsed := c.parser.Parse(c.display.Translated)
	if stripped, ok := ClearSection(tparsed, field); ok {
		c.display.Translated = Reassemble(stripped)
	}
}

// resetLocked returns the controller to the empty state with placeholder
// panes.
func (c *Controller) resetLocked() {
	c.state = StateEmpty
	c.structure = Structure{}
	c.overridden = false
	c.status = TranslationIdle
	c.display.English = Placeholder
	c.display.Translated = Placeholder
}

// parseCurrentLocked recovers user content from the visible English text.
func (c *Controller) parseCurrentLocked() Structure {
	if c.display.English == "" || c.display.English == Placeholder {
		return Structure{}
	}
	return c.parser.Parse(c.display.English)
}

func (c *Controller) hasTranslatedTextLocked() bool {
	t := c.display.Translated
	return t != "" && t != Placeholder && t != LoadingPlaceholder
}

func (f Fields) has(field Field) bool {
	switch field {
	case FieldName:
		return strings.TrimSpace(f.Name) != ""
	case FieldDosage:
		return strings.TrimSpace(f.Dosage) != ""
	case FieldFrequency:
		return strings.TrimSpace(f.Frequency) != ""
	case FieldInterval:
		return strings.TrimSpace(f.Interval) != ""
	case FieldTimeOfDay:
		return strings.TrimSpace(f.TimeOfDay) != ""
	case FieldPrecautions:
		return len(f.Precautions) > 0
	}
	return false
}
