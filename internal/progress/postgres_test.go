package progress

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres spins up a throwaway PostgreSQL container and returns a pool
// with the schema applied.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("quizdeck_test"),
		tcpostgres.WithUsername("quiz"),
		tcpostgres.WithPassword("quiz"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return pool
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool := startPostgres(t)
	store, err := NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	ctx := context.Background()

	seedStore(t, store)

	report, err := store.Aggregates(ctx, "u1")
	if err != nil {
		t.Fatalf("Aggregates() error = %v", err)
	}
	if len(report.ByTheme) != 2 || report.ByTheme[0].Theme != "lpic" {
		t.Errorf("ByTheme = %+v", report.ByTheme)
	}
	if report.Totals.Answered != 21 || report.Totals.Correct != 16 || report.Totals.TotalQuestions != 25 {
		t.Errorf("Totals = %+v", report.Totals)
	}

	var lvm SubcategoryTotals
	for _, sub := range report.BySubcategory {
		if sub.Subcategory == "lvm" {
			lvm = sub
		}
	}
	if lvm.Attempts != 2 || lvm.BestScore != 75 {
		t.Errorf("lvm = %+v", lvm)
	}
	if lvm.AvgScore != 63 {
		t.Errorf("lvm.AvgScore = %d, want 63", lvm.AvgScore)
	}

	// Upsert must replace, not accumulate.
	if err := store.Upsert(ctx, Record{
		UUID: "u1", Theme: "lpic", Category: "shell", Subcategory: "pipes",
		TotalQuestions: 6, Answered: 6, Correct: 6,
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	report, err = store.Aggregates(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if report.ByTheme[0].Correct != 6 {
		t.Errorf("lpic correct = %d, want 6 after upsert", report.ByTheme[0].Correct)
	}

	// Theme-scoped reset leaves other themes alone.
	if err := store.Reset(ctx, "u1", "rhcsa"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	report, err = store.Aggregates(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.ByTheme) != 1 || report.ByTheme[0].Theme != "lpic" {
		t.Errorf("ByTheme after reset = %+v", report.ByTheme)
	}

	// Full reset clears everything for the user and nothing for others.
	if err := store.Reset(ctx, "u1", ""); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	report, err = store.Aggregates(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.BySubcategory) != 0 {
		t.Errorf("rows after full reset = %+v", report.BySubcategory)
	}
	other, err := store.Aggregates(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other.BySubcategory) != 1 {
		t.Errorf("u2 rows = %d, want 1", len(other.BySubcategory))
	}
}
