package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
)

func sampleRules() []rules.Rule {
	return []rules.Rule{
		rules.MustNew(11, pattern.New("has", "?p", "fever"), pattern.New("may_have", "?p", "infection"), 0.8),
		rules.MustNew(3, pattern.New("may_have", "?p", "infection"), pattern.New("diagnosis", "?p", "bacterial_infection"), 0.6),
		rules.MustNew(4, pattern.New("same", "?a", "?a"), pattern.New("reflexive", "?a"), -1.5),
		rules.MustNew(9, pattern.New("raining"), pattern.New("wet", "ground"), 0.1+0.2),
	}
}

// TestSQLiteIntegrationRoundTrip saves a rule set and loads it back
func TestSQLiteIntegrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	want := sampleRules()
	if err := st.SaveRules(ctx, want); err != nil {
		t.Fatalf("SaveRules: %v", err)
	}

	got, err := st.LoadRules(ctx)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestSQLiteIntegrationReplace checks SaveRules replaces instead of appending
func TestSQLiteIntegrationReplace(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if err := st.SaveRules(ctx, sampleRules()); err != nil {
		t.Fatal(err)
	}
	smaller := sampleRules()[2:]
	if err := st.SaveRules(ctx, smaller); err != nil {
		t.Fatal(err)
	}

	got, err := st.LoadRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(smaller, got); diff != "" {
		t.Errorf("Expected replaced set (-want +got):\n%s", diff)
	}
}

// TestSQLiteIntegrationPersistence reopens the database file
func TestSQLiteIntegrationPersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveRules(ctx, sampleRules()); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.LoadRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(sampleRules()) {
		t.Errorf("Expected %d rules after reopen, got %d", len(sampleRules()), len(got))
	}
}

func TestSQLiteEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	got, err := st.LoadRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no rules, got %d", len(got))
	}
}

func TestSQLiteSaveRejectsInvalidRules(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	dup := []rules.Rule{sampleRules()[0], sampleRules()[0]}
	if err := st.SaveRules(ctx, dup); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

// TestSQLiteLoadRejectsCorruptRows writes a rule whose head variable is not
// bound by its body straight into the tables.
func TestSQLiteLoadRejectsCorruptRows(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`INSERT INTO rules (position, id, antecedent_predicate, consequent_predicate, weight) VALUES (0, 1, 'is', 'can', 0.5)`,
		`INSERT INTO rule_args (rule_id, side, position, token) VALUES (1, 'antecedent', 0, '?x')`,
		`INSERT INTO rule_args (rule_id, side, position, token) VALUES (1, 'consequent', 0, '?y')`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	_, err = st.LoadRules(ctx)
	if !errors.Is(err, internalerr.ErrSerialization) || !errors.Is(err, internalerr.ErrMalformedPattern) {
		t.Errorf("Expected serialization error caused by a malformed pattern, got %v", err)
	}
}

// TestSQLiteOpenUnavailable checks open failures are reported as ErrStoreUnavailable
func TestSQLiteOpenUnavailable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "dir", "rules.db")

	st, err := OpenSQLite(context.Background(), dbPath)
	if err == nil {
		st.Close()
		t.Fatal("Expected an error opening a database in a missing directory")
	}
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}
