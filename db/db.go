package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ReportStore keeps finished reports until they are downloaded or expire.
type ReportStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// InitializeDB opens the store at dsn. A dsn starting with "file:" is passed
// to sqlite as a URI, so "file:reports?mode=memory&cache=shared" keeps
// everything in memory.
func InitializeDB(dsn string, ttl time.Duration) (*ReportStore, error) {
	logrus.WithField("dsn", dsn).Info("Initializing report store")

	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), os.ModePerm); err != nil {
			return nil, pkgerrors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open database")
	}

	// One connection keeps an in-memory database alive and avoids shared-cache
	// table locks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		file_name TEXT NOT NULL,
		markdown TEXT NOT NULL,
		summary BLOB NOT NULL,
		video BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(err, "create reports table")
	}

	return &ReportStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *ReportStore) Close() error {
	return s.db.Close()
}

func (s *ReportStore) Save(ctx context.Context, r *models.Report) error {
	summary, err := msgpack.Marshal(r.Summary)
	if err != nil {
		return pkgerrors.Wrap(err, "encode summary")
	}
	video, err := msgpack.Marshal(r.Video)
	if err != nil {
		return pkgerrors.Wrap(err, "encode video info")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, title, file_name, markdown, summary, video, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.FileName, r.Markdown, summary, video, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return pkgerrors.Wrap(err, "insert report")
	}
	return nil
}

// Get returns a live report without consuming it.
func (s *ReportStore) Get(ctx context.Context, id string) (*models.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx, selectReport, id))
	if err != nil {
		return nil, err
	}
	if r.IsExpired(s.ttl, s.now()) {
		return nil, errors.NotFound("ReportStore.Get", nil, "报告已过期，请重新生成")
	}
	return r, nil
}

// Take returns a live report and deletes it in the same transaction.
func (s *ReportStore) Take(ctx context.Context, id string) (*models.Report, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	r, err := scanReport(tx.QueryRowContext(ctx, selectReport, id))
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id); err != nil {
		return nil, pkgerrors.Wrap(err, "delete report")
	}
	if err := tx.Commit(); err != nil {
		return nil, pkgerrors.Wrap(err, "commit transaction")
	}

	if r.IsExpired(s.ttl, s.now()) {
		return nil, errors.NotFound("ReportStore.Take", nil, "报告已过期，请重新生成")
	}
	return r, nil
}

// DeleteExpired removes every report older than the store's TTL.
func (s *ReportStore) DeleteExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "delete expired reports")
	}
	return res.RowsAffected()
}

func (s *ReportStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&n); err != nil {
		return 0, pkgerrors.Wrap(err, "count reports")
	}
	return n, nil
}

const selectReport = `SELECT id, title, file_name, markdown, summary, video, created_at FROM reports WHERE id = ?`

func scanReport(row *sql.Row) (*models.Report, error) {
	var (
		r              models.Report
		summary, video []byte
		createdAt      int64
	)
	err := row.Scan(&r.ID, &r.Title, &r.FileName, &r.Markdown, &summary, &video, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("ReportStore.scanReport", err, "报告不存在或已下载")
		}
		return nil, pkgerrors.Wrap(err, "query report")
	}
	if err := msgpack.Unmarshal(summary, &r.Summary); err != nil {
		return nil, pkgerrors.Wrap(err, "decode summary")
	}
	if err := msgpack.Unmarshal(video, &r.Video); err != nil {
		return nil, pkgerrors.Wrap(err, "decode video info")
	}
	r.CreatedAt = time.Unix(0, createdAt)
	return &r, nil
}
