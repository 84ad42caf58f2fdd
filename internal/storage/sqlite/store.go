// Package sqlite is the durable storage backend built on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"smartspend/internal/storage"

	_ "modernc.org/sqlite"
)

// Store persists records in a single expenses table. Writes are serialized
// by mu and each one is followed by a snapshot broadcast.
type Store struct {
	db      *sql.DB
	queries *Queries
	mu      sync.Mutex
	bc      *storage.Broadcaster
}

var _ storage.Store = (*Store)(nil)

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:      db,
		queries: New(db),
		bc:      storage.NewBroadcaster(),
	}, nil
}

func (s *Store) Close() error {
	s.bc.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Add(ctx context.Context, r storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}
	if err := s.queries.InsertExpense(ctx, toParams(r)); err != nil {
		return storage.Record{}, fmt.Errorf("insert expense: %w", err)
	}
	slog.DebugContext(ctx, "Expense saved to SQLite", "id", r.ID, "category", r.Category, "timestamp", r.Timestamp)
	s.publishLocked(ctx)
	return r.Clone(), nil
}

// Seed inserts records that are not yet present. Used for demo data.
func (s *Store) Seed(ctx context.Context, records []storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()
	q := s.queries.WithTx(tx)
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if err := q.InsertExpense(ctx, toParams(r)); err != nil {
			return fmt.Errorf("seed expense %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.publishLocked(ctx)
	return nil
}

func (s *Store) Update(ctx context.Context, r storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.queries.UpdateExpense(ctx, toParams(r))
	if err != nil {
		return storage.Record{}, fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return storage.Record{}, fmt.Errorf("update %s: %w", r.ID, storage.ErrNotFound)
	}
	s.publishLocked(ctx)
	return r.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, storage.ErrNotFound)
	}
	s.publishLocked(ctx)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.queries.DeleteAllExpenses(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	s.publishLocked(ctx)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (storage.Record, error) {
	e, err := s.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, fmt.Errorf("get %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("get expense: %w", err)
	}
	return fromRow(e), nil
}

func (s *Store) All(ctx context.Context) ([]storage.Record, error) {
	rows, err := s.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Store) ByRange(ctx context.Context, startMs, endMs int64) ([]storage.Record, error) {
	rows, err := s.queries.ListExpensesByRange(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("list expenses by range: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Store) ByCategory(ctx context.Context, category string) ([]storage.Record, error) {
	rows, err := s.queries.ListExpensesByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Store) ByRangeAndCategory(ctx context.Context, startMs, endMs int64, category string) ([]storage.Record, error) {
	rows, err := s.queries.ListExpensesByRangeAndCategory(ctx, startMs, endMs, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses by range and category: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Store) Search(ctx context.Context, query string) ([]storage.Record, error) {
	if strings.TrimSpace(query) == "" {
		return []storage.Record{}, nil
	}
	rows, err := s.queries.SearchExpenses(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search expenses: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Store) CountByRange(ctx context.Context, startMs, endMs int64) (int, error) {
	n, err := s.queries.CountExpensesByRange(ctx, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return int(n), nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan []storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return s.bc.Subscribe(ctx, snapshot), nil
}

func (s *Store) publishLocked(ctx context.Context) {
	if s.bc.Len() == 0 {
		return
	}
	// The write is already committed; a failed re-read only skips this snapshot.
	snapshot, err := s.All(context.WithoutCancel(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read snapshot after write", "error", err)
		return
	}
	s.bc.Publish(snapshot)
}

func toParams(r storage.Record) InsertExpenseParams {
	return InsertExpenseParams{
		ID:              r.ID,
		Title:           r.Title,
		Amount:          r.Amount,
		Category:        r.Category,
		Notes:           nullString(r.Notes),
		ReceiptImageUrl: nullString(r.ReceiptImageURL),
		Timestamp:       r.Timestamp,
	}
}

func fromRows(rows []Expense) []storage.Record {
	out := make([]storage.Record, len(rows))
	for i, e := range rows {
		out[i] = fromRow(e)
	}
	return out
}

func fromRow(e Expense) storage.Record {
	return storage.Record{
		ID:              e.ID,
		Title:           e.Title,
		Amount:          e.Amount,
		Category:        e.Category,
		Notes:           stringPtr(e.Notes),
		ReceiptImageURL: stringPtr(e.ReceiptImageUrl),
		Timestamp:       e.Timestamp,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
