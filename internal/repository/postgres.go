package repository

import (
	"context"
	"fmt"
	"time"

	"houseprice/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Schema creates the audit log table when it does not exist yet
const Schema = `
CREATE TABLE IF NOT EXISTS prediction_logs (
	id               UUID PRIMARY KEY,
	request          JSONB NOT NULL,
	predicted_price  NUMERIC,
	error_message    TEXT,
	response_time_ms BIGINT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository writes the prediction audit log
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the prediction_logs table if needed
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LogPrediction records one settled submission
func (r *PostgresRepository) LogPrediction(ctx context.Context, entry *model.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (id, request, predicted_price, error_message, response_time_ms, created_at)
		VALUES (:id, :request, :predicted_price, :error_message, :response_time_ms, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to log prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns the latest audit entries, newest first
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionLog, error) {
	query := `
		SELECT id, request, predicted_price, error_message, response_time_ms, created_at
		FROM prediction_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	var entries []model.PredictionLog
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch predictions: %w", err)
	}
	return entries, nil
}
