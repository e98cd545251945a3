// Package pipeline drives batch ingestion: each selected file is extracted,
// assessed, corrected, checked for duplicates, and appended to the session
// history, strictly one file at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/corrections"
	"github.com/ledgerlens/ledgerlens/internal/extract"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/quality"
	"github.com/ledgerlens/ledgerlens/internal/service"
)

// Defaults for batch pacing and quota recovery.
const (
	DefaultInterItemDelay = 2 * time.Second
	DefaultCooldownSecs   = 60
	DefaultCooldownTick   = time.Second
)

// ErrBatchInFlight is returned when a batch is started while another is
// still running.
var ErrBatchInFlight = errors.New("a batch is already being processed")

// Status is the pipeline's current phase.
type Status string

// Pipeline statuses.
const (
	StatusIdle          Status = "idle"
	StatusProcessing    Status = "processing"
	StatusComplete      Status = "complete"
	StatusError         Status = "error"
	StatusQuotaCooldown Status = "quota_cooldown"
)

// File is one selected document awaiting ingestion.
type File struct {
	Name string
	Data []byte
}

// State is a snapshot of pipeline progress, published on every change.
type State struct {
	Status            Status
	CurrentFile       string
	Processed         int
	Total             int
	CooldownRemaining int
	Message           string
	LastRecordID      string
}

// Events receives pipeline notifications. Implementations must not call back
// into the pipeline.
type Events interface {
	// StateChanged is invoked after every state transition.
	StateChanged(state State)
	// DuplicateFound is invoked when an incoming record matches one already in
	// the session. Returning true adds the record anyway; returning false
	// skips it. The batch continues either way.
	DuplicateFound(candidate model.Record, existing model.Record) bool
}

// NopEvents ignores every notification and never force-adds duplicates.
type NopEvents struct{}

func (NopEvents) StateChanged(State) {}

func (NopEvents) DuplicateFound(model.Record, model.Record) bool { return false }

// Extractor is the document-reading collaborator.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte, mimeType string) (model.Record, error)
	Close() error
}

// Config tunes batch pacing, quota recovery, and extraction retries.
type Config struct {
	// InterItemDelay is the pause between consecutive files, keeping the batch
	// under the collaborator's request-rate ceiling.
	InterItemDelay time.Duration
	// CooldownSeconds is how long to wait after a quota error before retrying
	// the remaining files.
	CooldownSeconds int
	// CooldownTick is the interval between countdown updates.
	CooldownTick time.Duration
	// DemoMode marks produced records as synthetic.
	DemoMode bool
	// Retry configures transient-failure retries for each extraction call.
	Retry service.RetryOptions
}

func (c Config) withDefaults() Config {
	if c.InterItemDelay <= 0 {
		c.InterItemDelay = DefaultInterItemDelay
	}
	if c.CooldownSeconds <= 0 {
		c.CooldownSeconds = DefaultCooldownSecs
	}
	if c.CooldownTick <= 0 {
		c.CooldownTick = DefaultCooldownTick
	}
	return c
}

// Pipeline is the batch ingestion state machine. One batch runs at a time;
// files are processed sequentially so a quota error cleanly splits the batch
// into done and pending halves.
type Pipeline struct {
	extractor   Extractor
	records     service.RecordStore
	corrections *corrections.Memory
	events      Events
	config      Config

	mu      sync.Mutex
	state   State
	pending []File
}

// New creates a pipeline over the given collaborators. A nil events sink
// falls back to NopEvents.
func New(extractor Extractor, records service.RecordStore, memory *corrections.Memory, events Events, config Config) *Pipeline {
	if events == nil {
		events = NopEvents{}
	}
	return &Pipeline{
		extractor:   extractor,
		records:     records,
		corrections: memory,
		events:      events,
		config:      config.withDefaults(),
		state:       State{Status: StatusIdle},
	}
}

// State returns a snapshot of the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the files parked by a quota cooldown.
func (p *Pipeline) Pending() []File {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]File, len(p.pending))
	copy(out, p.pending)
	return out
}

// Run processes the batch sequentially. A quota error parks the unprocessed
// remainder (including the file that hit the quota) and moves the pipeline
// into cooldown; any other extraction error abandons the remainder and moves
// it into the error state. Records already appended stay appended in both
// cases.
func (p *Pipeline) Run(ctx context.Context, files []File) error {
	p.mu.Lock()
	if p.state.Status == StatusProcessing {
		p.mu.Unlock()
		return ErrBatchInFlight
	}
	p.state = State{Status: StatusProcessing, Total: len(files)}
	p.pending = nil
	p.mu.Unlock()
	p.publish()

	return p.process(ctx, files, 0)
}

// process works through files, with done records already counted from an
// earlier attempt of the same batch.
func (p *Pipeline) process(ctx context.Context, files []File, done int) error {
	total := done + len(files)

	for i, file := range files {
		if i > 0 {
			select {
			case <-ctx.Done():
				p.fail(ctx.Err(), "Processing was cancelled")
				return ctx.Err()
			case <-time.After(p.config.InterItemDelay):
			}
		}

		p.setProgress(file.Name, done+i, total)

		record, err := p.ingest(ctx, file)
		if err != nil {
			if errors.Is(err, common.ErrQuotaExceeded) {
				p.enterCooldown(files[i:], done+i, total)
				return nil
			}
			p.fail(err, userMessage(err, file.Name))
			return err
		}

		p.recordDone(record, done+i+1, total)
	}

	p.complete(total)
	return nil
}

// ingest runs one file through the full per-document flow and returns the
// appended record, or a zero record when a duplicate was skipped.
func (p *Pipeline) ingest(ctx context.Context, file File) (model.Record, error) {
	mimeType := extract.DetectMIMEType(file.Name, file.Data)
	if err := extract.ValidateFileType(file.Name, mimeType); err != nil {
		return model.Record{}, err
	}

	started := time.Now()

	var record model.Record
	err := common.WithRetry(ctx, func() error {
		var extractErr error
		record, extractErr = p.extractor.Extract(ctx, file.Name, file.Data, mimeType)
		return extractErr
	}, p.config.Retry)
	if err != nil {
		return model.Record{}, err
	}

	record.ID = uuid.New().String()
	record.ProcessingTime = time.Since(started)
	record.IsDemo = p.config.DemoMode
	if record.Language == "" {
		record.Language = model.LanguageOriginal
	}
	record.OriginalLineItems = model.CloneLineItems(record.LineItems)

	record = quality.Assess(record)

	// Stated totals that disagree with quantity times unit price are surfaced,
	// never silently corrected.
	for _, item := range record.LineItems {
		if item.HasVariance() {
			slog.Warn("Line total disagrees with quantity times unit price",
				"file", file.Name,
				"description", item.Description,
				"variance", item.Variance())
		}
	}

	if p.corrections != nil {
		if _, err := p.corrections.Apply(ctx, record.LineItems); err != nil {
			common.LogError(err, "Failed to apply learned corrections", common.Fields{
				"file": file.Name,
			})
		} else {
			record.OriginalLineItems = model.CloneLineItems(record.LineItems)
		}
	}

	existing, err := p.records.FindDuplicate(ctx, record)
	if err != nil {
		return model.Record{}, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		if !p.events.DuplicateFound(record, *existing) {
			common.LogInfo("Skipping duplicate record", common.Fields{
				"file":   file.Name,
				"vendor": record.VendorName,
				"date":   record.InvoiceDate,
			})
			return model.Record{}, nil
		}
	}

	if err := p.records.Append(ctx, record); err != nil {
		return model.Record{}, fmt.Errorf("failed to store record: %w", err)
	}

	return record, nil
}

// Cooldown counts down after a quota error, then retries the parked files
// exactly once. A second quota error re-arms the cooldown with the files
// still pending. Calling Reset during the countdown abandons the retry.
func (p *Pipeline) Cooldown(ctx context.Context) error {
	p.mu.Lock()
	if p.state.Status != StatusQuotaCooldown {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	ticker := time.NewTicker(p.config.CooldownTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.state.Status != StatusQuotaCooldown {
			p.mu.Unlock()
			return nil
		}
		p.state.CooldownRemaining--
		expired := p.state.CooldownRemaining <= 0
		var files []File
		var done int
		if expired {
			files = p.pending
			p.pending = nil
			done = p.state.Processed
			p.state.Status = StatusProcessing
			p.state.CooldownRemaining = 0
		}
		p.mu.Unlock()
		p.publish()

		if expired {
			return p.process(ctx, files, done)
		}
	}
}

// Reset abandons any pending retry and returns the pipeline to idle. Records
// already appended are untouched.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.state = State{Status: StatusIdle}
	p.pending = nil
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) setProgress(file string, processed, total int) {
	p.mu.Lock()
	p.state.CurrentFile = file
	p.state.Processed = processed
	p.state.Total = total
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) recordDone(record model.Record, processed, total int) {
	p.mu.Lock()
	p.state.Processed = processed
	p.state.Total = total
	if record.ID != "" {
		p.state.LastRecordID = record.ID
	}
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) enterCooldown(remaining []File, processed, total int) {
	p.mu.Lock()
	p.pending = remaining
	p.state.Status = StatusQuotaCooldown
	p.state.Processed = processed
	p.state.Total = total
	p.state.CooldownRemaining = p.config.CooldownSeconds
	p.state.Message = "Extraction quota exhausted, waiting before retrying"
	p.mu.Unlock()
	p.publish()

	common.LogInfo("Quota exhausted, entering cooldown", common.Fields{
		"pending_files":    len(remaining),
		"cooldown_seconds": p.config.CooldownSeconds,
	})
}

func (p *Pipeline) complete(total int) {
	p.mu.Lock()
	p.state.Status = StatusComplete
	p.state.CurrentFile = ""
	p.state.Processed = total
	p.state.Total = total
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) fail(err error, message string) {
	common.LogError(err, "Batch aborted", nil)

	p.mu.Lock()
	p.state.Status = StatusError
	p.state.Message = message
	p.mu.Unlock()
	p.publish()
}

func (p *Pipeline) publish() {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()
	p.events.StateChanged(state)
}

// userMessage maps an ingestion failure to the message shown to the user.
func userMessage(err error, file string) string {
	switch {
	case errors.Is(err, common.ErrInvalidFile):
		return fmt.Sprintf("%s is not a supported document type", file)
	case errors.Is(err, common.ErrReadFailed):
		return fmt.Sprintf("%s could not be read; try a clearer scan", file)
	default:
		return fmt.Sprintf("Processing %s failed", file)
	}
}
