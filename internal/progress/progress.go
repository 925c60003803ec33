// Package progress persists per-user quiz progress: one aggregate row per
// subcategory plus an append-only attempt history.
package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is the per-subcategory aggregate upserted after a quiz run.
type Record struct {
	UUID           string `json:"-"`
	Theme          string `json:"theme"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	TotalQuestions int    `json:"totalQuestions"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
}

// Attempt is one recorded quiz attempt with its percentage score.
type Attempt struct {
	UUID           string `json:"-"`
	Theme          string `json:"theme"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	TotalQuestions int    `json:"totalQuestions"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
	Score          int    `json:"score"` // 0-100
}

// ThemeTotals aggregates progress across one theme.
type ThemeTotals struct {
	Theme          string `json:"theme"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
	TotalQuestions int    `json:"totalQuestions"`
}

// CategoryTotals aggregates progress across one category.
type CategoryTotals struct {
	Theme          string `json:"theme"`
	Category       string `json:"category"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
	TotalQuestions int    `json:"totalQuestions"`
}

// SubcategoryTotals is the per-subcategory row enriched with attempt stats.
type SubcategoryTotals struct {
	Theme          string `json:"theme"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Answered       int    `json:"answered"`
	Correct        int    `json:"correct"`
	TotalQuestions int    `json:"totalQuestions"`
	Attempts       int    `json:"attempts"`
	AvgScore       int    `json:"avgScore"`
	BestScore      int    `json:"bestScore"`
}

// Totals is the overall aggregate for a user.
type Totals struct {
	Answered       int `json:"answered"`
	Correct        int `json:"correct"`
	TotalQuestions int `json:"totalQuestions"`
}

// Report is the full aggregate view returned to clients.
type Report struct {
	ByTheme       []ThemeTotals       `json:"byTheme"`
	ByCategory    []CategoryTotals    `json:"byCategory"`
	BySubcategory []SubcategoryTotals `json:"bySubcategory"`
	Totals        Totals              `json:"totals"`
}

// Store persists progress records and attempt history.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	RecordAttempt(ctx context.Context, att Attempt) error
	// Reset removes a user's progress; a non-empty theme restricts the
	// reset to that theme.
	Reset(ctx context.Context, uuid, theme string) error
	Aggregates(ctx context.Context, uuid string) (*Report, error)
}

type recordKey struct {
	uuid, theme, category, subcategory string
}

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[recordKey]Record
	attempts []Attempt
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{rec.UUID, rec.Theme, rec.Category, rec.Subcategory}] = rec
	return nil
}

func (s *MemoryStore) RecordAttempt(_ context.Context, att Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, att)
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, uuid, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.records {
		if k.uuid == uuid && (theme == "" || k.theme == theme) {
			delete(s.records, k)
		}
	}
	kept := s.attempts[:0]
	for _, a := range s.attempts {
		if a.UUID == uuid && (theme == "" || a.Theme == theme) {
			continue
		}
		kept = append(kept, a)
	}
	s.attempts = kept
	return nil
}

func (s *MemoryStore) Aggregates(_ context.Context, uuid string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{
		ByTheme:       []ThemeTotals{},
		ByCategory:    []CategoryTotals{},
		BySubcategory: []SubcategoryTotals{},
	}

	byTheme := make(map[string]*ThemeTotals)
	byCategory := make(map[[2]string]*CategoryTotals)
	for k, r := range s.records {
		if k.uuid != uuid {
			continue
		}
		t, ok := byTheme[r.Theme]
		if !ok {
			t = &ThemeTotals{Theme: r.Theme}
			byTheme[r.Theme] = t
		}
		t.Answered += r.Answered
		t.Correct += r.Correct
		t.TotalQuestions += r.TotalQuestions

		ck := [2]string{r.Theme, r.Category}
		c, ok := byCategory[ck]
		if !ok {
			c = &CategoryTotals{Theme: r.Theme, Category: r.Category}
			byCategory[ck] = c
		}
		c.Answered += r.Answered
		c.Correct += r.Correct
		c.TotalQuestions += r.TotalQuestions

		sub := SubcategoryTotals{
			Theme:          r.Theme,
			Category:       r.Category,
			Subcategory:    r.Subcategory,
			Answered:       r.Answered,
			Correct:        r.Correct,
			TotalQuestions: r.TotalQuestions,
		}
		for _, a := range s.attempts {
			if a.UUID != uuid || a.Theme != r.Theme || a.Category != r.Category || a.Subcategory != r.Subcategory {
				continue
			}
			sub.Attempts++
			sub.AvgScore += a.Score
			if a.Score > sub.BestScore {
				sub.BestScore = a.Score
			}
		}
		if sub.Attempts > 0 {
			sub.AvgScore = (sub.AvgScore + sub.Attempts/2) / sub.Attempts
		}
		report.BySubcategory = append(report.BySubcategory, sub)

		report.Totals.Answered += r.Answered
		report.Totals.Correct += r.Correct
		report.Totals.TotalQuestions += r.TotalQuestions
	}

	for _, t := range byTheme {
		report.ByTheme = append(report.ByTheme, *t)
	}
	for _, c := range byCategory {
		report.ByCategory = append(report.ByCategory, *c)
	}
	sort.Slice(report.ByTheme, func(i, j int) bool {
		return report.ByTheme[i].Theme < report.ByTheme[j].Theme
	})
	sort.Slice(report.ByCategory, func(i, j int) bool {
		a, b := report.ByCategory[i], report.ByCategory[j]
		if a.Theme != b.Theme {
			return a.Theme < b.Theme
		}
		return a.Category < b.Category
	})
	sort.Slice(report.BySubcategory, func(i, j int) bool {
		a, b := report.BySubcategory[i], report.BySubcategory[j]
		if a.Theme != b.Theme {
			return a.Theme < b.Theme
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})
	return report, nil
}

const dbTimeout = 5 * time.Second
