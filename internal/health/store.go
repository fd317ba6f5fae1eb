package health

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
)

const dateLayout = "2006-01-02"

// HistoryStore persists daily Health Score snapshots as a flat JSON
// document, keyed by date.
// ⭐ SSOT: 헬스 히스토리 읽기/쓰기는 여기서만
type HistoryStore struct {
	path string
	log  zerolog.Logger
}

// NewHistoryStore creates a store backed by the given file path.
func NewHistoryStore(path string, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		path: path,
		log:  log.With().Str("component", "health.store").Logger(),
	}
}

// Load reads the full history. A missing file is an empty history, not an
// error, so first runs bootstrap cleanly.
func (s *HistoryStore) Load() ([]contracts.HealthHistoryEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read health history %s: %w", s.path, err)
	}

	var history []contracts.HealthHistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode health history %s: %w", s.path, err)
	}
	return history, nil
}

// Upsert writes a snapshot for a date, replacing any prior entry for the
// same date, and returns the updated series sorted by date ascending.
// 날짜별 멱등: 재실행 시 중복 대신 교체
func (s *HistoryStore) Upsert(entry contracts.HealthHistoryEntry) ([]contracts.HealthHistoryEntry, error) {
	if _, err := time.Parse(dateLayout, entry.Date); err != nil {
		return nil, fmt.Errorf("invalid history date %q: %w", entry.Date, err)
	}

	history, err := s.Load()
	if err != nil {
		return nil, err
	}

	kept := make([]contracts.HealthHistoryEntry, 0, len(history)+1)
	for _, row := range history {
		if row.Date != entry.Date {
			kept = append(kept, row)
		}
	}
	kept = append(kept, entry)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date < kept[j].Date
	})

	if err := s.write(kept); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("date", entry.Date).
		Int("health_score", entry.HealthScore).
		Int("entries", len(kept)).
		Msg("health history updated")

	return kept, nil
}

// write persists the series. ISO dates sort lexicographically, so the file
// stays ordered without re-parsing on read.
func (s *HistoryStore) write(history []contracts.HealthHistoryEntry) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode health history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write health history %s: %w", s.path, err)
	}
	return nil
}

// NewEntry builds the history snapshot for one day's batch.
func NewEntry(date string, stockCount int, report contracts.SanityReport) contracts.HealthHistoryEntry {
	byTicker := make([]contracts.TickerViolations, 0, len(report.PerStock))
	for _, item := range report.PerStock {
		byTicker = append(byTicker, contracts.TickerViolations{
			Ticker:     item.Ticker,
			Violations: item.Violations,
		})
	}

	return contracts.HealthHistoryEntry{
		Date:               date,
		HealthScore:        report.HealthScore,
		ViolationCount:     report.ViolationCount,
		StockCount:         stockCount,
		ViolationsByTicker: byTicker,
	}
}
