package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/corrections"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"github.com/ledgerlens/ledgerlens/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractResult struct {
	record model.Record
	err    error
}

// scriptedExtractor returns one scripted result per call, in order.
type scriptedExtractor struct {
	script []extractResult
	calls  int
	mu     sync.Mutex
}

func (e *scriptedExtractor) Extract(_ context.Context, _ string, _ []byte, _ string) (model.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.calls >= len(e.script) {
		return model.Record{}, fmt.Errorf("unexpected extraction call %d", e.calls)
	}
	result := e.script[e.calls]
	e.calls++
	return result.record, result.err
}

func (e *scriptedExtractor) Close() error { return nil }

func (e *scriptedExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// recordingEvents captures state transitions and duplicate prompts.
type recordingEvents struct {
	forceAdd bool
	states   []State
	dupes    int
	mu       sync.Mutex
}

func (e *recordingEvents) StateChanged(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = append(e.states, state)
}

func (e *recordingEvents) DuplicateFound(_, _ model.Record) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dupes++
	return e.forceAdd
}

func (e *recordingEvents) duplicateCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dupes
}

func okRecord(vendor string) extractResult {
	return extractResult{record: model.Record{
		VendorName:     vendor,
		InvoiceDate:    "2024-03-01",
		TotalAmount:    100,
		CurrencySymbol: "$",
		LineItems: []model.LineItem{
			{Description: "Widget", GLCategory: "Supplies", Quantity: 2, UnitPrice: 25, TotalAmount: 50},
			{Description: "Gadget", GLCategory: "Supplies", Quantity: 1, UnitPrice: 50, TotalAmount: 50},
		},
	}}
}

func testConfig() Config {
	return Config{
		InterItemDelay:  time.Millisecond,
		CooldownSeconds: 3,
		CooldownTick:    time.Millisecond,
		Retry: service.RetryOptions{
			MaxAttempts:  1,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			Multiplier:   1,
		},
	}
}

func testFiles(names ...string) []File {
	files := make([]File, len(names))
	for i, name := range names {
		files[i] = File{Name: name, Data: []byte("scanned document")}
	}
	return files
}

func newPipeline(t *testing.T, extractor Extractor, events Events, config Config) (*Pipeline, *store.MemStore) {
	t.Helper()
	records := store.NewMemStore()
	memory := corrections.NewMemory(corrections.NewMemStore())
	return New(extractor, records, memory, events, config), records
}

func TestRun_ProcessesBatch(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{okRecord("Acme"), okRecord("Globex")}}
	events := &recordingEvents{}
	p, records := newPipeline(t, extractor, events, testConfig())

	require.NoError(t, p.Run(ctx, testFiles("a.pdf", "b.pdf")))

	state := p.State()
	assert.Equal(t, StatusComplete, state.Status)
	assert.Equal(t, 2, state.Processed)
	assert.NotEmpty(t, state.LastRecordID)

	all, err := records.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first: the second file's record leads the history.
	assert.Equal(t, "Globex", all[0].VendorName)
	assert.Equal(t, state.LastRecordID, all[0].ID)

	// Every appended record got an id, a snapshot, and an assessment.
	for _, record := range all {
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, model.LanguageOriginal, record.Language)
		assert.Equal(t, record.LineItems, record.OriginalLineItems)
		assert.Equal(t, model.ConfidenceHigh, record.Confidence)
	}
}

func TestRun_QuotaParksRemainderAndCooldownResumes(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{
		okRecord("Acme"),
		{err: common.ErrQuotaExceeded},
		okRecord("Globex"),
		okRecord("Initech"),
	}}
	events := &recordingEvents{}
	config := testConfig()
	p, records := newPipeline(t, extractor, events, config)

	require.NoError(t, p.Run(ctx, testFiles("a.pdf", "b.pdf", "c.pdf")))

	state := p.State()
	assert.Equal(t, StatusQuotaCooldown, state.Status)
	// The countdown starts at the full configured value.
	assert.Equal(t, config.CooldownSeconds, state.CooldownRemaining)
	assert.Equal(t, 1, state.Processed)

	// The file that hit the quota is parked along with everything after it.
	pending := p.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "b.pdf", pending[0].Name)

	all, err := records.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "work done before the quota error is kept")

	require.NoError(t, p.Cooldown(ctx))

	state = p.State()
	assert.Equal(t, StatusComplete, state.Status)
	assert.Equal(t, 3, state.Processed)
	assert.Empty(t, p.Pending())

	all, err = records.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 4, extractor.callCount())
}

func TestCooldown_SecondQuotaErrorReArms(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{
		{err: common.ErrQuotaExceeded},
		{err: common.ErrQuotaExceeded},
	}}
	config := testConfig()
	p, _ := newPipeline(t, extractor, &recordingEvents{}, config)

	require.NoError(t, p.Run(ctx, testFiles("a.pdf")))
	require.Equal(t, StatusQuotaCooldown, p.State().Status)

	require.NoError(t, p.Cooldown(ctx))

	state := p.State()
	assert.Equal(t, StatusQuotaCooldown, state.Status)
	assert.Equal(t, config.CooldownSeconds, state.CooldownRemaining)
	require.Len(t, p.Pending(), 1)
}

func TestReset_AbandonsPendingRetry(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{
		{err: common.ErrQuotaExceeded},
	}}
	p, _ := newPipeline(t, extractor, &recordingEvents{}, testConfig())

	require.NoError(t, p.Run(ctx, testFiles("a.pdf")))
	require.Equal(t, StatusQuotaCooldown, p.State().Status)

	p.Reset()

	assert.Equal(t, StatusIdle, p.State().Status)
	assert.Empty(t, p.Pending())

	// The countdown notices the reset and never retries.
	require.NoError(t, p.Cooldown(ctx))
	assert.Equal(t, 1, extractor.callCount())
}

func TestRun_HardErrorAbortsRemainder(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{
		okRecord("Acme"),
		{err: fmt.Errorf("%w: blurry scan", common.ErrReadFailed)},
	}}
	p, records := newPipeline(t, extractor, &recordingEvents{}, testConfig())

	err := p.Run(ctx, testFiles("a.pdf", "b.pdf", "c.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrReadFailed))

	state := p.State()
	assert.Equal(t, StatusError, state.Status)
	assert.Contains(t, state.Message, "b.pdf")

	all, listErr := records.All(ctx)
	require.NoError(t, listErr)
	assert.Len(t, all, 1, "the record appended before the failure is kept")
	assert.Equal(t, 2, extractor.callCount(), "the remainder is not attempted")
}

func TestRun_UnsupportedFileAborts(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{}
	p, _ := newPipeline(t, extractor, &recordingEvents{}, testConfig())

	err := p.Run(ctx, []File{{Name: "notes.txt", Data: []byte("plain text")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidFile))
	assert.Equal(t, StatusError, p.State().Status)
	assert.Equal(t, 0, extractor.callCount())
}

func TestRun_DuplicateSkippedBatchContinues(t *testing.T) {
	ctx := context.Background()
	// Files one and two extract to the same vendor, date, and total.
	extractor := &scriptedExtractor{script: []extractResult{
		okRecord("Acme"),
		okRecord("Acme"),
		okRecord("Globex"),
	}}
	events := &recordingEvents{forceAdd: false}
	p, records := newPipeline(t, extractor, events, testConfig())

	require.NoError(t, p.Run(ctx, testFiles("a.pdf", "b.pdf", "c.pdf")))

	assert.Equal(t, 1, events.duplicateCount())
	assert.Equal(t, StatusComplete, p.State().Status)

	all, err := records.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "the duplicate is skipped but the batch continues")
	assert.Equal(t, "Globex", all[0].VendorName)
	assert.Equal(t, "Acme", all[1].VendorName)
}

func TestRun_DuplicateForceAdded(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{
		okRecord("Acme"),
		okRecord("Acme"),
	}}
	events := &recordingEvents{forceAdd: true}
	p, records := newPipeline(t, extractor, events, testConfig())

	require.NoError(t, p.Run(ctx, testFiles("a.pdf", "b.pdf")))

	assert.Equal(t, 1, events.duplicateCount())
	all, err := records.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRun_AppliesLearnedCorrections(t *testing.T) {
	ctx := context.Background()
	extractor := &scriptedExtractor{script: []extractResult{okRecord("Acme")}}

	correctionStore := corrections.NewMemStore()
	memory := corrections.NewMemory(correctionStore)
	_, err := memory.Record(ctx, "Widget pro", "Tools")
	require.NoError(t, err)

	records := store.NewMemStore()
	p := New(extractor, records, memory, &recordingEvents{}, testConfig())

	require.NoError(t, p.Run(ctx, testFiles("a.pdf")))

	all, err := records.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Tools", all[0].LineItems[0].GLCategory)
	assert.Equal(t, corrections.LearnedConfidence, all[0].LineItems[0].GLConfidence)
	// The untouched item keeps its extracted category.
	assert.Equal(t, "Supplies", all[0].LineItems[1].GLCategory)
}
