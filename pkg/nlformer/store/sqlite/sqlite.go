package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
)

const (
	sideAntecedent = "antecedent"
	sideConsequent = "consequent"
)

// sqliteStore implements store.RuleStore using SQLite
type sqliteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.RuleStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	return &sqliteStore{db: db, path: path}, nil
}

func unavailable(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", internalerr.ErrStoreUnavailable, path, err)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS rules (
	position INTEGER PRIMARY KEY,
	id INTEGER UNIQUE NOT NULL,
	antecedent_predicate TEXT NOT NULL,
	consequent_predicate TEXT NOT NULL,
	weight REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS rule_args (
	rule_id INTEGER NOT NULL,
	side TEXT NOT NULL CHECK(side IN ('antecedent', 'consequent')),
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(rule_id, side, position),
	FOREIGN KEY(rule_id) REFERENCES rules(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRules replaces the stored rule set in a single transaction.
func (s *sqliteStore) SaveRules(ctx context.Context, set []rules.Rule) error {
	if err := rules.Validate(set); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rule_args`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return err
	}

	ruleStmt, err := tx.PrepareContext(ctx, `
INSERT INTO rules (position, id, antecedent_predicate, consequent_predicate, weight)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ruleStmt.Close()

	argStmt, err := tx.PrepareContext(ctx, `
INSERT INTO rule_args (rule_id, side, position, token)
VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer argStmt.Close()

	for i, r := range set {
		if _, err := ruleStmt.ExecContext(ctx, i, r.ID, r.Antecedent.Predicate, r.Consequent.Predicate, r.Weight); err != nil {
			return fmt.Errorf("save rule %d: %w", r.ID, err)
		}
		if err := insertArgs(ctx, argStmt, r.ID, sideAntecedent, r.Antecedent); err != nil {
			return err
		}
		if err := insertArgs(ctx, argStmt, r.ID, sideConsequent, r.Consequent); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertArgs(ctx context.Context, stmt *sql.Stmt, ruleID int, side string, p pattern.Pattern) error {
	for pos, tok := range p.Tokens() {
		if _, err := stmt.ExecContext(ctx, ruleID, side, pos, tok); err != nil {
			return fmt.Errorf("save rule %d %s arg %d: %w", ruleID, side, pos, err)
		}
	}
	return nil
}

type ruleRow struct {
	index               int
	id                  int
	antecedentPredicate string
	consequentPredicate string
	weight              float64
	antecedentArgs      []string
	consequentArgs      []string
}

// LoadRules reads the rule set back in saved order.
func (s *sqliteStore) LoadRules(ctx context.Context) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, antecedent_predicate, consequent_predicate, weight
FROM rules
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ordered []*ruleRow
	byID := make(map[int]*ruleRow)
	for rows.Next() {
		row := &ruleRow{index: len(ordered)}
		if err := rows.Scan(&row.id, &row.antecedentPredicate, &row.consequentPredicate, &row.weight); err != nil {
			return nil, err
		}
		ordered = append(ordered, row)
		byID[row.id] = row
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadArgs(ctx, byID); err != nil {
		return nil, err
	}

	set := make([]rules.Rule, len(ordered))
	for i, row := range ordered {
		set[i] = rules.Rule{
			ID:         row.id,
			Antecedent: pattern.New(row.antecedentPredicate, row.antecedentArgs...),
			Consequent: pattern.New(row.consequentPredicate, row.consequentArgs...),
			Weight:     row.weight,
		}
	}

	if err := store.ValidateSet(s.path, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *sqliteStore) loadArgs(ctx context.Context, byID map[int]*ruleRow) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT rule_id, side, position, token
FROM rule_args
ORDER BY rule_id, side, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ruleID int
			side   string
			pos    int
			token  string
		)
		if err := rows.Scan(&ruleID, &side, &pos, &token); err != nil {
			return err
		}
		row, ok := byID[ruleID]
		if !ok {
			continue
		}

		args := &row.antecedentArgs
		if side == sideConsequent {
			args = &row.consequentArgs
		}
		if pos != len(*args) {
			return &store.SerializationError{Source: s.path, Index: row.index, Field: side,
				Err: fmt.Errorf("argument position %d out of sequence", pos)}
		}
		*args = append(*args, token)
	}
	return rows.Err()
}
