package main

import (
	"net/http"
	"time"

	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
	"github.com/tkivisto/legalintake/internal/repositories"
)

type caseResponse struct {
	ID            int64                  `json:"id"`
	ClientName    string                 `json:"clientName"`
	Email         string                 `json:"email,omitempty"`
	AccessToken   string                 `json:"accessToken"`
	Status        models.CaseStatus      `json:"status"`
	CreatedAt     time.Time              `json:"createdAt"`
	ChatHistory   models.Transcript      `json:"chatHistory"`
	Facts         models.CaseFacts       `json:"facts"`
	Analysis      *models.AnalysisReport `json:"analysis,omitempty"`
	IsReviewed    bool                   `json:"isReviewed"`
	ReviewedBy    string                 `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time             `json:"reviewedAt,omitempty"`
	InternalNotes string                 `json:"internalNotes,omitempty"`
}

func newCaseResponse(record *models.CaseRecord) caseResponse {
	chatHistory := record.ChatHistory
	if chatHistory == nil {
		chatHistory = models.Transcript{}
	}
	return caseResponse{
		ID:            record.ID,
		ClientName:    record.ClientName,
		Email:         record.Email,
		AccessToken:   record.AccessToken,
		Status:        record.Status,
		CreatedAt:     record.CreatedAt,
		ChatHistory:   chatHistory,
		Facts:         record.Facts,
		Analysis:      record.Analysis,
		IsReviewed:    record.IsReviewed,
		ReviewedBy:    record.ReviewedBy,
		ReviewedAt:    record.ReviewedAt,
		InternalNotes: record.InternalNotes,
	}
}

func (app *application) createCase(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ClientName string `json:"clientName"`
		Email      string `json:"email"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if request.ClientName == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	record, err := app.cases.Create(r.Context(), request.ClientName, request.Email)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create case"))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, newCaseResponse(record))
}

func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	records, err := app.cases.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list cases"))
		return
	}

	response := make([]caseResponse, len(records))
	for i := range records {
		response[i] = newCaseResponse(&records[i])
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

func (app *application) showCase(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}

	record, err := app.cases.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNoCase) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "get case"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, newCaseResponse(record))
}
