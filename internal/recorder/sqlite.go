package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"CAPMSentinel/internal/model"
)

// SQLiteRecorder persists analyses to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the CLI can read history while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id               TEXT PRIMARY KEY,
			recorded_at      INTEGER NOT NULL,
			stock_symbol     TEXT NOT NULL,
			index_symbol     TEXT NOT NULL,
			start_date       TEXT NOT NULL,
			end_date         TEXT NOT NULL,
			periods          INTEGER,
			beta_covariance  REAL,
			beta_regression  REAL,
			alpha_regression REAL,
			expected_return  REAL,
			risk_free_rate   REAL,
			tier             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_stock_ts ON analyses(stock_symbol, recorded_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO analyses
		(id, recorded_at, stock_symbol, index_symbol, start_date, end_date, periods,
		 beta_covariance, beta_regression, alpha_regression, expected_return, risk_free_rate, tier)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.RecordedAt.UnixNano(), strings.ToUpper(rec.StockSymbol), rec.IndexSymbol,
		rec.Start.Format(time.DateOnly), rec.End.Format(time.DateOnly), rec.Periods,
		rec.BetaCovariance, rec.BetaRegression, rec.AlphaRegression, rec.ExpectedReturn, rec.RiskFreeRate,
		rec.Tier,
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", rec.StockSymbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentAnalyses(ctx context.Context, stock string, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, recorded_at, stock_symbol, index_symbol, start_date, end_date, periods,
		beta_covariance, beta_regression, alpha_regression, expected_return, risk_free_rate, tier
		FROM analyses WHERE stock_symbol = ? ORDER BY recorded_at DESC LIMIT ?`,
		strings.ToUpper(stock), limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []model.AnalysisRecord
	for rows.Next() {
		var (
			rec        model.AnalysisRecord
			recordedAt int64
			start, end string
		)
		if err := rows.Scan(&rec.ID, &recordedAt, &rec.StockSymbol, &rec.IndexSymbol, &start, &end, &rec.Periods,
			&rec.BetaCovariance, &rec.BetaRegression, &rec.AlphaRegression, &rec.ExpectedReturn, &rec.RiskFreeRate,
			&rec.Tier); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.RecordedAt = time.Unix(0, recordedAt).UTC()
		if rec.Start, err = time.Parse(time.DateOnly, start); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		if rec.End, err = time.Parse(time.DateOnly, end); err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
