package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/config"
	"github.com/ledgerlens/ledgerlens/internal/corrections"
	"github.com/ledgerlens/ledgerlens/internal/extract"
	"github.com/ledgerlens/ledgerlens/internal/pipeline"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"github.com/ledgerlens/ledgerlens/internal/store"
	"github.com/ledgerlens/ledgerlens/internal/translate"
	"github.com/spf13/viper"
)

// databasePath resolves the SQLite file shared by the record history and the
// correction memory.
func databasePath() (string, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/lens/lens.db"
	}
	dbPath = config.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dbPath, nil
}

func initRecordStore() (service.RecordStore, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(dbPath)
}

func initCorrectionStore() (service.CorrectionStore, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	return corrections.NewSQLiteStore(dbPath)
}

// newExtractor picks the extraction collaborator: the synthetic demo
// generator, or live Gemini extraction.
func newExtractor(ctx context.Context, demo bool) (pipeline.Extractor, error) {
	if demo {
		return extract.NewDemo(extract.DefaultDemoDelay), nil
	}
	return extract.NewGemini(ctx, geminiAPIKey(), viper.GetString("gemini.model"))
}

func newTranslator(ctx context.Context) (translate.Translator, error) {
	return translate.NewGemini(ctx, geminiAPIKey(), viper.GetString("gemini.model"))
}

func geminiAPIKey() string {
	if key := viper.GetString("gemini.api_key"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

func pipelineConfig(demo bool) pipeline.Config {
	cfg := pipeline.Config{DemoMode: demo}
	if d := viper.GetDuration("pipeline.inter_item_delay"); d > 0 {
		cfg.InterItemDelay = d
	}
	if s := viper.GetInt("pipeline.cooldown_seconds"); s > 0 {
		cfg.CooldownSeconds = s
	}
	if a := viper.GetInt("pipeline.retry_attempts"); a > 0 {
		cfg.Retry = service.RetryOptions{
			MaxAttempts:  a,
			InitialDelay: time.Second,
		}
	}
	return cfg
}

// readFiles loads the selected documents into memory.
func readFiles(paths []string) ([]pipeline.File, error) {
	files := make([]pipeline.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- user-selected input file
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, pipeline.File{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}
