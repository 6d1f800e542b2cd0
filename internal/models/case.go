package models

import "time"

// Role of a chat message in the intake transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// InputKind tells the intake client which input widget to render for the
// next user reply. It is an attribute of the assistant's message describing
// the expected answer, not of the user's message.
type InputKind string

const (
	InputKindText     InputKind = "text"
	InputKindDate     InputKind = "date"
	InputKindLocation InputKind = "location"
	InputKindYesNo    InputKind = "yes_no"
	InputKindFile     InputKind = "file"
	InputKindNumber   InputKind = "number"
)

// Valid reports whether k is one of the enumerated input kinds.
func (k InputKind) Valid() bool {
	switch k {
	case InputKindText, InputKindDate, InputKindLocation, InputKindYesNo, InputKindFile, InputKindNumber:
		return true
	}
	return false
}

// Message is a single chat turn. InputType and Options are only set on
// assistant messages that expect a structured reply.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	InputType InputKind `json:"inputType,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// Transcript is the ordered, append-only message history of one case.
type Transcript []Message

type CaseStatus string

const (
	CaseStatusPending   CaseStatus = "pending"
	CaseStatusActive    CaseStatus = "active"
	CaseStatusCompleted CaseStatus = "completed"
)

// Witness is a fact saved by the intake interview.
type Witness struct {
	Name        string `json:"name"`
	Contact     string `json:"contact,omitempty"`
	Description string `json:"description,omitempty"`
}

// CaseDetails are the core incident facts saved by the intake interview.
type CaseDetails struct {
	Description string `json:"description"`
	Date        string `json:"date"`
	Injuries    string `json:"injuries"`
	Liability   string `json:"liability,omitempty"`
}

// CaseFacts collects the structured facts extracted during the interview.
type CaseFacts struct {
	Details   *CaseDetails `json:"details,omitempty"`
	Witnesses []Witness    `json:"witnesses,omitempty"`
}

// CaseRecord is one prospective client's case.
type CaseRecord struct {
	ID            int64
	ClientName    string
	Email         string
	AccessToken   string
	Status        CaseStatus
	CreatedAt     time.Time
	ChatHistory   Transcript
	Facts         CaseFacts
	Analysis      *AnalysisReport
	IsReviewed    bool
	ReviewedBy    string
	ReviewedAt    *time.Time
	InternalNotes string
}

// Audit log actions recorded in case_logs.
const (
	AuditActionAnalysis        = "AI_ANALYSIS"
	AuditActionSummaryEdited   = "SUMMARY_EDITED"
	AuditActionNoteAdded       = "NOTE_ADDED"
	AuditActionReviewCompleted = "REVIEW_COMPLETED"
	AuditActionFactsSaved      = "FACTS_SAVED"
)

// AuditEntry is one append-only case log row.
type AuditEntry struct {
	ID        int64
	CaseID    int64
	Action    string
	Details   string
	Actor     string
	CreatedAt time.Time
}
