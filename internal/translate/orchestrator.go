package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/service"
)

// Orchestrator errors.
var (
	// ErrTranslationInFlight is returned when a translation is requested
	// while another is still running for the active record.
	ErrTranslationInFlight = errors.New("translation already in flight")
	// ErrStaleResult is returned when a finished translation is discarded
	// because the active record changed while it ran.
	ErrStaleResult = errors.New("stale translation result discarded")
)

// Orchestrator drives language changes for the active record. Translations
// always read from the record's original line items, never from already
// translated text, so repeated language switches cannot compound error.
type Orchestrator struct {
	translator Translator
	records    service.RecordStore
	activeID   string
	mu         sync.Mutex
	inFlight   bool
}

// NewOrchestrator creates a translation orchestrator over the given
// collaborator and record store.
func NewOrchestrator(translator Translator, records service.RecordStore) *Orchestrator {
	return &Orchestrator{translator: translator, records: records}
}

// SetActive records which record the user is currently viewing. A
// translation that finishes after the active record has changed is
// discarded instead of being applied to the wrong record.
func (o *Orchestrator) SetActive(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeID = id
}

// Translating reports whether a translation is currently in flight.
func (o *Orchestrator) Translating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SetLanguage switches the record's displayed language. Selecting the
// original language restores the preserved snapshot without a collaborator
// call; selecting a concrete language translates from that snapshot. The
// record is mutated and the store updated only on success.
func (o *Orchestrator) SetLanguage(ctx context.Context, record *model.Record, target string) error {
	if record == nil {
		return fmt.Errorf("no record to translate")
	}

	if target == model.LanguageOriginal {
		if record.Language == model.LanguageOriginal {
			return nil
		}
		record.RestoreOriginal()
		if err := o.records.Update(ctx, record.ID, *record); err != nil {
			return fmt.Errorf("failed to store restored record: %w", err)
		}
		return nil
	}

	if target == record.Language {
		return nil
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrTranslationInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	// The translation source is always the original snapshot. If the record
	// predates snapshotting, back-fill from the current (untranslated) items.
	source := record.OriginalLineItems
	if len(source) == 0 {
		source = model.CloneLineItems(record.LineItems)
	}

	translated, err := o.translator.Translate(ctx, source, target)
	if err != nil {
		common.LogError(err, "Translation failed, record left unchanged", common.Fields{
			"record_id": record.ID,
			"target":    target,
		})
		return fmt.Errorf("%w: %v", common.ErrTranslationFailed, err)
	}

	o.mu.Lock()
	stale := o.activeID != "" && o.activeID != record.ID
	o.mu.Unlock()
	if stale {
		slog.Info("Discarding translation for record that is no longer active",
			"record_id", record.ID,
			"target", target)
		return ErrStaleResult
	}

	record.LineItems = Merge(source, translated)
	record.Language = target
	record.OriginalLineItems = model.CloneLineItems(source)

	if err := o.records.Update(ctx, record.ID, *record); err != nil {
		return fmt.Errorf("failed to store translated record: %w", err)
	}

	return nil
}
