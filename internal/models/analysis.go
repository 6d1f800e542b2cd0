package models

// EvidenceStatus is the availability of one expected evidence item.
type EvidenceStatus string

const (
	EvidenceAvailable EvidenceStatus = "available"
	EvidenceMissing   EvidenceStatus = "missing"
	EvidenceUnclear   EvidenceStatus = "unclear"
)

func (s EvidenceStatus) Valid() bool {
	switch s {
	case EvidenceAvailable, EvidenceMissing, EvidenceUnclear:
		return true
	}
	return false
}

// EvidenceItem is one entry in the standard-evidence checklist.
type EvidenceItem struct {
	Item   string         `json:"item"`
	Status EvidenceStatus `json:"status"`
}

// TimelineEventType classifies a timeline entry.
type TimelineEventType string

const (
	TimelineFact    TimelineEventType = "fact"
	TimelineWitness TimelineEventType = "witness"
	TimelineMedical TimelineEventType = "medical"
	TimelineLegal   TimelineEventType = "legal"
)

func (t TimelineEventType) Valid() bool {
	switch t {
	case TimelineFact, TimelineWitness, TimelineMedical, TimelineLegal:
		return true
	}
	return false
}

// TimelineEvent is one chronological event reconstructed from the transcript.
type TimelineEvent struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Type        TimelineEventType `json:"type"`
}

// AnalysisReport is the case-readiness grading produced once per case from
// its full transcript. Only Summary may be edited afterwards by a lawyer.
type AnalysisReport struct {
	Summary     string          `json:"summary"`
	CaseRating  int             `json:"caseRating"`
	RedFlags    []string        `json:"redFlags"`
	MissingInfo []string        `json:"missingInfo"`
	Evidence    []EvidenceItem  `json:"evidence"`
	Timeline    []TimelineEvent `json:"timeline"`
}
