package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/page-builder/backend/internal/models"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	name   string
	schema string
	upsert string
}

// sqlStore implements Store over database/sql. Layouts are kept as JSON
// documents, one row per user.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(db *sql.DB, d dialect) (*sqlStore, error) {
	if _, err := db.Exec(d.schema); err != nil {
		return nil, fmt.Errorf("creating %s layouts table: %w", d.name, err)
	}
	return &sqlStore{db: db, dialect: d}, nil
}

func (s *sqlStore) Get(ctx context.Context, userID string) (*models.LayoutRecord, error) {
	var (
		doc     string
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT document, saved_at FROM layouts WHERE user_id = ?`, userID,
	).Scan(&doc, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying layout: %w", err)
	}

	rec := &models.LayoutRecord{UserID: userID, SavedAt: time.UnixMilli(savedAt).UTC()}
	if err := json.Unmarshal([]byte(doc), &rec.Layout); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return rec, nil
}

func (s *sqlStore) Put(ctx context.Context, userID string, layout models.Layout) (*models.LayoutRecord, error) {
	doc, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}
	rec := &models.LayoutRecord{
		UserID:  userID,
		Layout:  layout,
		SavedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.upsert,
		userID, string(doc), len(layout.Sections), len(layout.Elements), rec.SavedAt.UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("storing layout: %w", err)
	}
	return rec, nil
}

func (s *sqlStore) List(ctx context.Context, limit int) ([]*models.LayoutInfo, error) {
	query := `SELECT user_id, section_count, element_count, saved_at FROM layouts ORDER BY saved_at DESC, user_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	defer rows.Close()

	list := []*models.LayoutInfo{}
	for rows.Next() {
		var (
			info    models.LayoutInfo
			savedAt int64
		)
		if err := rows.Scan(&info.UserID, &info.SectionCount, &info.ElementCount, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning layout row: %w", err)
		}
		info.SavedAt = time.UnixMilli(savedAt).UTC()
		list = append(list, &info)
	}
	return list, rows.Err()
}

func (s *sqlStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
