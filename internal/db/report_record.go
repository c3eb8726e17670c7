package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReportRecord is the log entry for one generated PDF report.
type ReportRecord struct {
	ID        int       `json:"id"`
	RunID     string    `json:"run_id"`
	DeviceID  string    `json:"device_id"`
	Variant   string    `json:"variant"`
	DateRange string    `json:"date_range"`
	Filepath  string    `json:"filepath"`
	Filename  string    `json:"filename"`
	Theme     string    `json:"theme"`
	Timezone  string    `json:"timezone"`
	Units     string    `json:"units"`
	Sections  string    `json:"sections"` // comma separated, empty for all
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

const reportColumns = `report_id, run_id, device_id, variant, date_range, filepath, filename,
	theme, timezone, units, sections, size_bytes, created_unix_ms`

// CreateReportRecord stores a report record and sets its ID. A zero
// CreatedAt is set to the current time.
func (db *DB) CreateReportRecord(ctx context.Context, r *ReportRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO reports (
			run_id, device_id, variant, date_range, filepath, filename,
			theme, timezone, units, sections, size_bytes, created_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.DeviceID,
		r.Variant,
		r.DateRange,
		r.Filepath,
		r.Filename,
		r.Theme,
		r.Timezone,
		r.Units,
		r.Sections,
		r.SizeBytes,
		toUnixMs(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create report record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	r.ID = int(id)
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReportRecord(s scanner) (ReportRecord, error) {
	var r ReportRecord
	var created int64
	err := s.Scan(
		&r.ID,
		&r.RunID,
		&r.DeviceID,
		&r.Variant,
		&r.DateRange,
		&r.Filepath,
		&r.Filename,
		&r.Theme,
		&r.Timezone,
		&r.Units,
		&r.Sections,
		&r.SizeBytes,
		&created,
	)
	r.CreatedAt = fromUnixMs(created)
	return r, err
}

// GetReportRecord retrieves a report record by ID.
func (db *DB) GetReportRecord(ctx context.Context, id int) (*ReportRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE report_id = ?`, id)
	r, err := scanReportRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report record: %w", err)
	}
	return &r, nil
}

// GetReportRecordByRunID retrieves a report record by its run ID.
func (db *DB) GetReportRecordByRunID(ctx context.Context, runID string) (*ReportRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE run_id = ?`, runID)
	r, err := scanReportRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report record: %w", err)
	}
	return &r, nil
}

// GetRecentReportRecords returns the newest limit records, newest first.
// An empty deviceID lists every device.
func (db *DB) GetRecentReportRecords(ctx context.Context, deviceID string, limit int) ([]ReportRecord, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	var args []interface{}
	if deviceID != "" {
		query += ` WHERE device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY created_unix_ms DESC, report_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report records: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		r, err := scanReportRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report records: %w", err)
	}
	return records, nil
}

// DeleteReportRecord deletes a report record by ID.
func (db *DB) DeleteReportRecord(ctx context.Context, id int) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reports WHERE report_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	return nil
}
