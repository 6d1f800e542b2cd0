package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tkivisto/legalintake/internal/db"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
)

var (
	ErrNoCase     = errors.NewSentinel("case not found")
	ErrNoAnalysis = errors.NewSentinel("case has no analysis")
)

type CaseRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *db.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

const caseColumns = `id, client_name, email, access_token, status, created_at,
chat_history, facts, analysis, is_reviewed, reviewed_by, reviewed_at, internal_notes`

// Create opens a new pending intake for a prospective client. The returned
// record carries the access token the client uses to reach their chat.
func (r *CaseRepository) Create(ctx context.Context, clientName, email string) (*models.CaseRecord, error) {
	token := uuid.NewString()
	stmt := `INSERT INTO cases (client_name, email, access_token) VALUES (?, ?, ?)`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, clientName, email, token)
	if err != nil {
		return nil, errors.Wrap(err, "insert case")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "last insert id")
	}
	return r.Get(ctx, id)
}

func (r *CaseRepository) Get(ctx context.Context, id int64) (*models.CaseRecord, error) {
	row := r.dbs.ReadOnly.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
	return scanCase(row)
}

// GetByToken looks a case up by the client's intake access token.
func (r *CaseRepository) GetByToken(ctx context.Context, token string) (*models.CaseRecord, error) {
	row := r.dbs.ReadOnly.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE access_token = ?`, token)
	return scanCase(row)
}

// List returns all cases, newest first.
func (r *CaseRepository) List(ctx context.Context) ([]models.CaseRecord, error) {
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query cases")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.Error("could not close rows", errors.SlogError(closeErr))
		}
	}()

	var cases []models.CaseRecord
	for rows.Next() {
		record, scanErr := scanCase(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		cases = append(cases, *record)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return cases, nil
}

// AppendTurns overwrites the case's chat history with the advanced
// transcript and marks the interview active. One atomic write per turn so a
// reader never observes a partially appended turn.
func (r *CaseRepository) AppendTurns(ctx context.Context, id int64, transcript models.Transcript) error {
	history, err := json.Marshal(transcript)
	if err != nil {
		return errors.Wrap(err, "marshal chat history")
	}
	stmt := `UPDATE cases SET chat_history = ?, status = ? WHERE id = ?`
	return r.exec(ctx, stmt, string(history), models.CaseStatusActive, id)
}

// SaveFacts merges witnesses and case details extracted during an interview
// turn into the case's fact store. Later case details overwrite earlier ones.
func (r *CaseRepository) SaveFacts(
	ctx context.Context,
	id int64,
	witnesses []models.Witness,
	details []models.CaseDetails,
) error {
	if len(witnesses) == 0 && len(details) == 0 {
		return nil
	}

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var rawFacts string
	if err = tx.QueryRowContext(ctx, `SELECT facts FROM cases WHERE id = ?`, id).Scan(&rawFacts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoCase
		}
		return errors.Wrap(err, "read facts")
	}

	var facts models.CaseFacts
	if err = json.Unmarshal([]byte(rawFacts), &facts); err != nil {
		return errors.Wrap(err, "unmarshal facts")
	}

	facts.Witnesses = append(facts.Witnesses, witnesses...)
	for i := range details {
		d := details[i]
		facts.Details = &d
	}

	merged, err := json.Marshal(facts)
	if err != nil {
		return errors.Wrap(err, "marshal facts")
	}
	if _, err = tx.ExecContext(ctx, `UPDATE cases SET facts = ? WHERE id = ?`, string(merged), id); err != nil {
		return errors.Wrap(err, "update facts")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit facts")
	}
	return nil
}

// SetAnalysis stores the generated case-readiness report.
func (r *CaseRepository) SetAnalysis(ctx context.Context, id int64, report models.AnalysisReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal analysis")
	}
	return r.exec(ctx, `UPDATE cases SET analysis = ? WHERE id = ?`, string(raw), id)
}

// UpdateSummary edits only the executive summary of a previously generated
// report; the rest of the analysis stays untouched.
func (r *CaseRepository) UpdateSummary(ctx context.Context, id int64, summary string) error {
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var rawAnalysis sql.NullString
	if err = tx.QueryRowContext(ctx, `SELECT analysis FROM cases WHERE id = ?`, id).Scan(&rawAnalysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoCase
		}
		return errors.Wrap(err, "read analysis")
	}
	if !rawAnalysis.Valid {
		return ErrNoAnalysis
	}

	var report models.AnalysisReport
	if err = json.Unmarshal([]byte(rawAnalysis.String), &report); err != nil {
		return errors.Wrap(err, "unmarshal analysis")
	}
	report.Summary = summary

	raw, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal analysis")
	}
	if _, err = tx.ExecContext(ctx, `UPDATE cases SET analysis = ? WHERE id = ?`, string(raw), id); err != nil {
		return errors.Wrap(err, "update analysis")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit analysis")
	}
	return nil
}

// SetInternalNotes replaces the lawyer's private notes on the case.
func (r *CaseRepository) SetInternalNotes(ctx context.Context, id int64, notes string) error {
	return r.exec(ctx, `UPDATE cases SET internal_notes = ? WHERE id = ?`, notes, id)
}

// CompleteReview marks the case reviewed by the given lawyer and closes it.
func (r *CaseRepository) CompleteReview(ctx context.Context, id int64, reviewer string) error {
	stmt := `UPDATE cases
	SET is_reviewed = 1, reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP, status = ?
	WHERE id = ?`
	return r.exec(ctx, stmt, reviewer, models.CaseStatusCompleted, id)
}

func (r *CaseRepository) exec(ctx context.Context, stmt string, args ...any) error {
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrap(err, "update case")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return ErrNoCase
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*models.CaseRecord, error) {
	var (
		record      models.CaseRecord
		chatHistory string
		rawFacts    string
		rawAnalysis sql.NullString
		reviewedAt  sql.NullTime
	)

	err := row.Scan(
		&record.ID,
		&record.ClientName,
		&record.Email,
		&record.AccessToken,
		&record.Status,
		&record.CreatedAt,
		&chatHistory,
		&rawFacts,
		&rawAnalysis,
		&record.IsReviewed,
		&record.ReviewedBy,
		&reviewedAt,
		&record.InternalNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCase
		}
		return nil, errors.Wrap(err, "scan case")
	}

	if err = json.Unmarshal([]byte(chatHistory), &record.ChatHistory); err != nil {
		return nil, errors.Wrap(err, "unmarshal chat history")
	}
	if err = json.Unmarshal([]byte(rawFacts), &record.Facts); err != nil {
		return nil, errors.Wrap(err, "unmarshal facts")
	}
	if rawAnalysis.Valid {
		var report models.AnalysisReport
		if err = json.Unmarshal([]byte(rawAnalysis.String), &report); err != nil {
			return nil, errors.Wrap(err, "unmarshal analysis")
		}
		record.Analysis = &report
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time.In(time.UTC)
		record.ReviewedAt = &t
	}
	return &record, nil
}
