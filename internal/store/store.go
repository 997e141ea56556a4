// SPDX-License-Identifier: EPL-2.0

// Package store keeps audio assets and their edit history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("asset not found")

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	file       TEXT NOT NULL,
	file_type  TEXT NOT NULL,
	duration   REAL,
	waveform   TEXT,
	user       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assets_created ON assets(created_at);

CREATE TABLE IF NOT EXISTS edits (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id   TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	edit_type  TEXT NOT NULL,
	parameters TEXT NOT NULL,
	user       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edits_asset ON edits(asset_id, id);
`

// Asset is one stored audio file. File is the name under the media
// directory. Duration and Waveform are nil until extracted.
type Asset struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	File      string    `json:"file"`
	FileType  string    `json:"file_type"`
	Duration  *float64  `json:"duration"`
	Waveform  []float64 `json:"waveform_data"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Edits     []Edit    `json:"edits,omitempty"`
}

// Edit records one applied edit.
type Edit struct {
	ID         int64           `json:"id"`
	AssetID    string          `json:"audio_file_id"`
	Kind       string          `json:"edit_type"`
	Parameters json.RawMessage `json:"parameters"`
	User       string          `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store is safe for concurrent use; SQLite writes are serialized on a
// single connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

const assetColumns = "id, title, file, file_type, duration, waveform, user, created_at, updated_at"

func scanAsset(row scanner) (*Asset, error) {
	var (
		a                Asset
		duration         sql.NullFloat64
		waveform         sql.NullString
		created, updated int64
	)

	if err := row.Scan(&a.ID, &a.Title, &a.File, &a.FileType, &duration, &waveform, &a.User, &created, &updated); err != nil {
		return nil, err
	}

	if duration.Valid {
		a.Duration = &duration.Float64
	}
	if waveform.Valid {
		if err := json.Unmarshal([]byte(waveform.String), &a.Waveform); err != nil {
			return nil, fmt.Errorf("decoding waveform of %s: %w", a.ID, err)
		}
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	a.UpdatedAt = time.Unix(0, updated).UTC()

	return &a, nil
}

func encodeWaveform(w []float64) (sql.NullString, error) {
	if w == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(w)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

// CreateAsset inserts a, stamping its creation and update times.
func (s *Store) CreateAsset(ctx context.Context, a *Asset) error {
	waveform, err := encodeWaveform(a.Waveform)
	if err != nil {
		return fmt.Errorf("encoding waveform: %w", err)
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO assets ("+assetColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.Title, a.File, a.FileType, nullFloat(a.Duration), waveform, a.User, now.UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("inserting asset: %w", err)
	}

	a.CreatedAt, a.UpdatedAt = now, now

	return nil
}

// GetAsset returns the asset without its edits.
func (s *Store) GetAsset(ctx context.Context, id string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)

	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}

	return a, nil
}

// ListAssets returns every asset, newest first.
func (s *Store) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assetColumns+" FROM assets ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("reading asset: %w", err)
		}
		assets = append(assets, *a)
	}

	return assets, rows.Err()
}

// UpdateMetadata stores the extracted duration and waveform of an asset.
func (s *Store) UpdateMetadata(ctx context.Context, id string, duration float64, waveform []float64) error {
	wf, err := encodeWaveform(waveform)
	if err != nil {
		return fmt.Errorf("encoding waveform: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE assets SET duration = ?, waveform = ?, updated_at = ? WHERE id = ?",
		duration, wf, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}

	return expectRow(res, id)
}

// ReplaceAudio points the asset at a new file with fresh metadata and
// appends e to its history in one transaction. The stored edit is returned.
func (s *Store) ReplaceAudio(ctx context.Context, id, file string, duration float64, waveform []float64, e Edit) (Edit, error) {
	wf, err := encodeWaveform(waveform)
	if err != nil {
		return Edit{}, fmt.Errorf("encoding waveform: %w", err)
	}
	if len(e.Parameters) == 0 {
		e.Parameters = json.RawMessage("{}")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Edit{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()

	res, err := tx.ExecContext(ctx,
		"UPDATE assets SET file = ?, duration = ?, waveform = ?, updated_at = ? WHERE id = ?",
		file, duration, wf, now.UnixNano(), id)
	if err != nil {
		return Edit{}, fmt.Errorf("updating asset: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return Edit{}, err
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO edits (asset_id, edit_type, parameters, user, created_at) VALUES (?, ?, ?, ?, ?)",
		id, e.Kind, string(e.Parameters), e.User, now.UnixNano())
	if err != nil {
		return Edit{}, fmt.Errorf("recording edit: %w", err)
	}

	if e.ID, err = res.LastInsertId(); err != nil {
		return Edit{}, fmt.Errorf("recording edit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Edit{}, fmt.Errorf("committing edit: %w", err)
	}

	e.AssetID = id
	e.CreatedAt = now

	return e, nil
}

// DeleteAsset removes the asset and its history.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}

	return expectRow(res, id)
}

// ListEdits returns the history of an asset, oldest first.
func (s *Store) ListEdits(ctx context.Context, assetID string) ([]Edit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, asset_id, edit_type, parameters, user, created_at FROM edits WHERE asset_id = ? ORDER BY id",
		assetID)
	if err != nil {
		return nil, fmt.Errorf("listing edits: %w", err)
	}
	defer rows.Close()

	edits := []Edit{}
	for rows.Next() {
		var (
			e       Edit
			params  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.AssetID, &e.Kind, &params, &e.User, &created); err != nil {
			return nil, fmt.Errorf("reading edit: %w", err)
		}
		e.Parameters = json.RawMessage(params)
		e.CreatedAt = time.Unix(0, created).UTC()
		edits = append(edits, e)
	}

	return edits, rows.Err()
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}
