// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abdoljh/questscholar/pkg/types"
)

// Store persists a Session in a SQLite database so the search, critique,
// and report commands, which run as separate processes, operate on the same
// run state.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the session database at path, creating the
// schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			authors TEXT,
			pub_year INTEGER,
			abstract TEXT,
			url TEXT,
			source TEXT,
			citation_count INTEGER,
			venue TEXT,
			paper_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			join_key TEXT PRIMARY KEY,
			relevance REAL,
			methodology REAL,
			impact REAL,
			overall REAL,
			redundant INTEGER,
			tags TEXT,
			action TEXT,
			rationale TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored session with sess. Both tables are rewritten in
// one transaction so a failed save never leaves papers and evaluations from
// different runs mixed.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"papers", "evaluations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	paperStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (title, authors, pub_year, abstract, url, source, citation_count, venue, paper_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	for _, p := range sess.Papers {
		authorsJSON, _ := json.Marshal(p.Authors)
		_, err := paperStmt.ExecContext(ctx,
			p.Title, string(authorsJSON), p.PubYear, p.Abstract,
			p.URL, string(p.Source), p.CitationCount, p.Venue, p.PaperID,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %q: %w", p.Title, err)
		}
	}

	evalStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evaluations (join_key, relevance, methodology, impact, overall, redundant, tags, action, rationale)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing evaluation insert: %w", err)
	}
	defer evalStmt.Close()

	for key, ev := range sess.Evaluations {
		tagsJSON, _ := json.Marshal(ev.Tags)
		_, err := evalStmt.ExecContext(ctx,
			key, ev.Relevance, ev.Methodology, ev.Impact, ev.Overall,
			ev.Redundant, string(tagsJSON), string(ev.Action), ev.Rationale,
		)
		if err != nil {
			return fmt.Errorf("inserting evaluation %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored session. A fresh database yields an empty session.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	sess := New()

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, pub_year, abstract, url, source, citation_count, venue, paper_id
		 FROM papers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p types.PaperRecord
		var authorsJSON, source string
		if err := rows.Scan(&p.Title, &authorsJSON, &p.PubYear, &p.Abstract,
			&p.URL, &source, &p.CitationCount, &p.Venue, &p.PaperID); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
				return nil, fmt.Errorf("parsing authors for %q: %w", p.Title, err)
			}
		}
		p.Source = types.Source(source)
		sess.Papers = append(sess.Papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading papers: %w", err)
	}

	evRows, err := s.db.QueryContext(ctx,
		`SELECT join_key, relevance, methodology, impact, overall, redundant, tags, action, rationale
		 FROM evaluations`)
	if err != nil {
		return nil, fmt.Errorf("querying evaluations: %w", err)
	}
	defer evRows.Close()

	for evRows.Next() {
		var key, tagsJSON, action string
		var ev types.Evaluation
		if err := evRows.Scan(&key, &ev.Relevance, &ev.Methodology, &ev.Impact,
			&ev.Overall, &ev.Redundant, &tagsJSON, &action, &ev.Rationale); err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &ev.Tags); err != nil {
				return nil, fmt.Errorf("parsing tags for %q: %w", key, err)
			}
		}
		if ev.Tags == nil {
			ev.Tags = []string{}
		}
		ev.Action = types.Action(action)
		sess.Evaluations[key] = ev
	}
	if err := evRows.Err(); err != nil {
		return nil, fmt.Errorf("reading evaluations: %w", err)
	}

	return sess, nil
}
