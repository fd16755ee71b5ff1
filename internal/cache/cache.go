/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cache is the per-deck SQLite sidecar. It holds rendered slide
// thumbnails (size-capped, LRU evicted) and rolling autosave snapshots of
// the whole document. Everything in here is derived data; deleting the
// database loses nothing that cannot be regenerated, except the autosaves.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"goslide/internal/docfile"
	applog "goslide/internal/log"
	"goslide/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "cache.sqlite"

	// schemaVersion tracks the sidecar schema. Bump together with a
	// migration step in runMigrations.
	schemaVersion = 1

	defaultMaxBytes = 64 * 1024 * 1024 // 64MB
)

// Path returns the cache database path for a deck file.
func Path(deckPath string) string {
	return filepath.Join(docfile.SidecarDir(deckPath), FileName)
}

// Cache is an open sidecar database.
type Cache struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the sidecar cache for the given deck file,
// enabling WAL and bringing the schema up to date.
func Open(deckPath string) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("cache"), "open").With(
		slog.String("deck", deckPath),
	)
	if deckPath == "" {
		return nil, errors.New("deck path is required")
	}
	if err := os.MkdirAll(docfile.SidecarDir(deckPath), 0o755); err != nil {
		l.Error("create sidecar dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create sidecar dir: %w", err)
	}

	path := Path(deckPath)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("cache ready", slog.String("path", path))
	return &Cache{db: db, log: applog.WithComponent("cache")}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS thumbs (
			slide_id    TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			blob        BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access TEXT,
			PRIMARY KEY(slide_id, w, h)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_thumbs_access ON thumbs(last_access);`,
		`CREATE TABLE IF NOT EXISTS autosaves (
			id       INTEGER PRIMARY KEY,
			ts       TEXT NOT NULL,
			doc_blob BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_autosaves_ts ON autosaves(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	// seed or refresh the single-row version record
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// GetThumb returns the cached thumbnail blob for a slide at the given
// size, or nil on a miss. A hit refreshes the access time for LRU.
func (c *Cache) GetThumb(ctx context.Context, slideID string, w, h int) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT blob FROM thumbs WHERE slide_id=? AND w=? AND h=?`, slideID, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumb: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = c.db.ExecContext(ctx, `UPDATE thumbs SET last_access=? WHERE slide_id=? AND w=? AND h=?`, now, slideID, w, h)
	return blob, nil
}

// PutThumb upserts a thumbnail blob and evicts least-recently-used rows
// when the cache grows past its byte cap.
func (c *Cache) PutThumb(ctx context.Context, slideID string, w, h int, blob []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `INSERT INTO thumbs(slide_id,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(slide_id,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		slideID, w, h, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert thumb: %w", err)
	}
	if capBytes := MaxBytesFromEnv(); capBytes > 0 {
		return c.evictToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreateThumb fetches a thumbnail or generates and stores it.
func (c *Cache) GetOrCreateThumb(ctx context.Context, slideID string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.GetThumb(ctx, slideID, w, h); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	if err := c.PutThumb(ctx, slideID, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteThumbs drops all cached sizes for a slide, e.g. after deletion.
func (c *Cache) DeleteThumbs(ctx context.Context, slideID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM thumbs WHERE slide_id=?`, slideID); err != nil {
		return fmt.Errorf("delete thumbs: %w", err)
	}
	return nil
}

// TotalThumbBytes returns the tracked size of all cached thumbnails.
func (c *Cache) TotalThumbBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// evictToFit deletes least-recently-used thumbs until total size fits.
func (c *Cache) evictToFit(ctx context.Context, capBytes int64) error {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return fmt.Errorf("sum thumbs size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT slide_id, w, h, size FROM thumbs ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	type key struct {
		id   string
		w, h int
	}
	var victims []key
	cur := total
	for rows.Next() {
		var k key
		var sz int64
		if err := rows.Scan(&k.id, &k.w, &k.h, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, k)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// close the cursor before writing
	if err := rows.Close(); err != nil {
		return err
	}
	for _, k := range victims {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM thumbs WHERE slide_id=? AND w=? AND h=?`, k.id, k.w, k.h); err != nil {
			return fmt.Errorf("evict delete: %w", err)
		}
	}
	if len(victims) > 0 {
		c.log.Debug("evicted thumbnails", slog.Int("count", len(victims)))
	}
	return nil
}

// PutAutosave stores an encoded document snapshot and prunes old rows
// beyond keep.
func (c *Cache) PutAutosave(ctx context.Context, doc []byte, keep int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := c.db.ExecContext(ctx, `INSERT INTO autosaves(ts, doc_blob) VALUES(?, ?)`, now, doc); err != nil {
		return fmt.Errorf("insert autosave: %w", err)
	}
	if keep > 0 {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM autosaves WHERE id NOT IN (
			SELECT id FROM autosaves ORDER BY ts DESC LIMIT ?)`, keep); err != nil {
			return fmt.Errorf("prune autosaves: %w", err)
		}
	}
	return nil
}

// LatestAutosave returns the newest autosaved document, or nil when none
// exists.
func (c *Cache) LatestAutosave(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT doc_blob FROM autosaves ORDER BY ts DESC LIMIT 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query autosave: %w", err)
	}
	return blob, nil
}

// MaxBytesFromEnv reads GSL_CACHE_MAX_BYTES, defaulting to 64MB.
func MaxBytesFromEnv() int64 {
	v := os.Getenv("GSL_CACHE_MAX_BYTES")
	if v == "" {
		return defaultMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBytes
	}
	return n
}
