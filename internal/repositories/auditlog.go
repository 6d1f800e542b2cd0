package repositories

import (
	"context"
	"log/slog"

	"github.com/tkivisto/legalintake/internal/db"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
)

// AuditLogRepository appends and lists the per-case audit trail. Entries are
// append-only; nothing in the application updates or deletes them.
type AuditLogRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewAuditLogRepository(dbs *db.Database, logger *slog.Logger) *AuditLogRepository {
	return &AuditLogRepository{
		dbs:    dbs,
		logger: logger.With("source", "AuditLogRepository"),
	}
}

func (r *AuditLogRepository) Append(ctx context.Context, caseID int64, action, details, actor string) error {
	stmt := `INSERT INTO case_logs (case_id, action, details, actor) VALUES (?, ?, ?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, caseID, action, details, actor); err != nil {
		return errors.Wrap(err, "insert case log", slog.String("action", action))
	}
	return nil
}

// List returns the case's audit trail, newest first.
func (r *AuditLogRepository) List(ctx context.Context, caseID int64) ([]models.AuditEntry, error) {
	stmt := `SELECT id, case_id, action, details, actor, created_at
	FROM case_logs
	WHERE case_id = ?
	ORDER BY created_at DESC, id DESC`
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, stmt, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "query case logs")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.Error("could not close rows", errors.SlogError(closeErr))
		}
	}()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err = rows.Scan(&entry.ID, &entry.CaseID, &entry.Action, &entry.Details, &entry.Actor, &entry.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan case log")
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return entries, nil
}
