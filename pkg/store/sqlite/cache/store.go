// Package cache keeps terminal analyses in the local SQLite database so a
// finished analysis renders without a network round trip.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/models/store"
	"github.com/de-tools/riskread/pkg/store/sqlite"
)

const latestKey = "latest_analysis_id"

const (
	DefaultCapacity = 200
	DefaultTTL      = 720 * time.Hour
)

type Store interface {
	// Get returns the cached copy of id. A missing or expired entry is reported
	// with ok=false and no error.
	Get(ctx context.Context, id string) (entry domain.CachedAnalysis, ok bool, err error)
	// Put stores a terminal analysis and marks it as the most recent one.
	Put(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) error
	Latest(ctx context.Context) (id string, ok bool, err error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]domain.CachedAnalysis, error)
	// Prune drops expired entries and the least recently used entries over
	// capacity, returning how many rows were removed.
	Prune(ctx context.Context) (int, error)
}

type Options struct {
	Capacity int           // <= 0 means unbounded
	TTL      time.Duration // 0 disables expiry
	Now      func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Capacity: DefaultCapacity,
		TTL:      DefaultTTL,
		Now:      time.Now,
	}
}

type sqliteStore struct {
	db   *sql.DB
	opts Options
}

func NewStore(db *sql.DB, opts Options) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &sqliteStore{
		db:   db,
		opts: opts,
	}, nil
}

func storageError(message string, err error) error {
	return domain.NewError(domain.KindStorage, message, err)
}

func (s *sqliteStore) Get(ctx context.Context, id string) (domain.CachedAnalysis, bool, error) {
	conn := sqlite.Conn(ctx, s.db)
	row := conn.QueryRowContext(ctx,
		`SELECT id, status, analysis, result, cached_at, accessed_at FROM analysis_cache WHERE id = ?`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CachedAnalysis{}, false, nil
	}
	if err != nil {
		return domain.CachedAnalysis{}, false, storageError("failed to read cached analysis", err)
	}

	now := s.opts.Now()
	if s.expired(rec, now) {
		zerolog.Ctx(ctx).Debug().Str("analysis_id", id).Msg("cached analysis expired")
		if err := s.Remove(ctx, id); err != nil {
			return domain.CachedAnalysis{}, false, err
		}
		return domain.CachedAnalysis{}, false, nil
	}

	if _, err := conn.ExecContext(ctx,
		`UPDATE analysis_cache SET accessed_at = ? WHERE id = ?`, now.UnixMilli(), id,
	); err != nil {
		return domain.CachedAnalysis{}, false, storageError("failed to touch cached analysis", err)
	}
	rec.AccessedAt = now

	entry, err := adapters.MapCacheRecordStoreToDomain(rec)
	if err != nil {
		return domain.CachedAnalysis{}, false, storageError("failed to decode cached analysis", err)
	}
	return entry, true, nil
}

func (s *sqliteStore) Put(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) error {
	if !analysis.Status.IsTerminal() {
		return fmt.Errorf("cache %s (%s): %w", analysis.ID, analysis.Status, domain.ErrNotTerminal)
	}

	now := s.opts.Now()
	rec, err := adapters.MapCachedAnalysisDomainToStore(domain.CachedAnalysis{
		Analysis:   analysis,
		Result:     result,
		CachedAt:   now,
		AccessedAt: now,
	})
	if err != nil {
		return storageError("failed to encode analysis", err)
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		conn := sqlite.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `
			INSERT INTO analysis_cache (id, status, analysis, result, cached_at, accessed_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				status = excluded.status,
				analysis = excluded.analysis,
				result = excluded.result,
				cached_at = excluded.cached_at,
				accessed_at = excluded.accessed_at`,
			rec.ID, rec.Status, rec.Analysis, nullableBlob(rec.Result), rec.CachedAt.UnixMilli(), rec.AccessedAt.UnixMilli(),
		); err != nil {
			return storageError("failed to write cached analysis", err)
		}

		if _, err := conn.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			latestKey, rec.ID,
		); err != nil {
			return storageError("failed to update latest analysis", err)
		}

		if _, err := s.evict(ctx); err != nil {
			return err
		}
		return nil
	})
}

func (s *sqliteStore) Latest(ctx context.Context) (string, bool, error) {
	var id string
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, latestKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError("failed to read latest analysis", err)
	}
	return id, true, nil
}

func (s *sqliteStore) Remove(ctx context.Context, id string) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		conn := sqlite.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `DELETE FROM analysis_cache WHERE id = ?`, id); err != nil {
			return storageError("failed to remove cached analysis", err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM meta WHERE key = ? AND value = ?`, latestKey, id); err != nil {
			return storageError("failed to clear latest analysis", err)
		}
		return nil
	})
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		conn := sqlite.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `DELETE FROM analysis_cache`); err != nil {
			return storageError("failed to clear cache", err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, latestKey); err != nil {
			return storageError("failed to clear latest analysis", err)
		}
		return nil
	})
}

func (s *sqliteStore) List(ctx context.Context) ([]domain.CachedAnalysis, error) {
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT id, status, analysis, result, cached_at, accessed_at FROM analysis_cache ORDER BY accessed_at DESC, id`,
	)
	if err != nil {
		return nil, storageError("failed to list cached analyses", err)
	}
	defer rows.Close()

	entries := make([]domain.CachedAnalysis, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storageError("failed to scan cached analysis", err)
		}
		entry, err := adapters.MapCacheRecordStoreToDomain(rec)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("analysis_id", rec.ID).Msg("skipping undecodable cache entry")
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list cached analyses", err)
	}
	return entries, nil
}

func (s *sqliteStore) Prune(ctx context.Context) (int, error) {
	var removed int
	err := s.inTx(ctx, func(ctx context.Context) error {
		n, err := s.evict(ctx)
		removed = n
		return err
	})
	return removed, err
}

// evict runs inside the caller's transaction.
func (s *sqliteStore) evict(ctx context.Context) (int, error) {
	conn := sqlite.Conn(ctx, s.db)
	var removed int64

	if s.opts.TTL > 0 {
		cutoff := s.opts.Now().Add(-s.opts.TTL).UnixMilli()
		res, err := conn.ExecContext(ctx, `DELETE FROM analysis_cache WHERE cached_at < ?`, cutoff)
		if err != nil {
			return 0, storageError("failed to drop expired analyses", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if s.opts.Capacity > 0 {
		res, err := conn.ExecContext(ctx, `
			DELETE FROM analysis_cache WHERE id NOT IN (
				SELECT id FROM analysis_cache ORDER BY accessed_at DESC, cached_at DESC LIMIT ?
			)`, s.opts.Capacity)
		if err != nil {
			return 0, storageError("failed to evict analyses", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if removed > 0 {
		// the latest pointer must not outlive its entry
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM meta WHERE key = ? AND value NOT IN (SELECT id FROM analysis_cache)`, latestKey,
		); err != nil {
			return 0, storageError("failed to clear latest analysis", err)
		}
		zerolog.Ctx(ctx).Debug().Int64("removed", removed).Msg("evicted cached analyses")
	}
	return int(removed), nil
}

func (s *sqliteStore) expired(rec store.CacheRecord, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(rec.CachedAt) > s.opts.TTL
}

func (s *sqliteStore) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if sqlite.GetTransaction(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("failed to begin transaction", err)
	}
	if err := fn(sqlite.WithTransaction(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("failed to commit transaction", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.CacheRecord, error) {
	var (
		rec                  store.CacheRecord
		result               []byte
		cachedAt, accessedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Status, &rec.Analysis, &result, &cachedAt, &accessedAt); err != nil {
		return store.CacheRecord{}, err
	}
	rec.Result = result
	rec.CachedAt = time.UnixMilli(cachedAt)
	rec.AccessedAt = time.UnixMilli(accessedAt)
	return rec, nil
}

func nullableBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
