package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tkivisto/legalintake/internal/ai"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
)

// promptTemplate carries the grading persona and the machine-readable
// response schema. One call produces score, flags, evidence, and timeline
// together so the model grades with unified transcript context; the cost is
// an all-or-nothing failure mode covered by the fallback report.
const promptTemplate = `You are a senior partner at a top law firm. Your job is to critically evaluate incoming potential cases.

Don't just summarize. Grade the case. Look for holes.

EVIDENCE TEXT:
%s

INSTRUCTIONS:
1. **Score**: Rate 0-100. <50 = weak/vague. >80 = solid facts/liability.
2. **Red Flags**: Be cynical. What could lose us this case?
3. **Evidence**: List what we have VS what standard personal injury/legal cases need (Medical records, photos, police report, etc).
4. **Timeline**: Construct a clear chronological order.

RESPONSE FORMAT:
Respond with a single JSON object with exactly these fields:
{
  "summary": string,             // executive summary of the case (1 paragraph)
  "caseRating": number,          // readiness score 0-100 based on merit, clarity, and winnability
  "redFlags": [string],          // critical weaknesses, inconsistencies, or statute of limitations issues
  "missingInfo": [string],       // critical information that is missing
  "evidence": [{"item": string, "status": "available" | "missing" | "unclear"}],
  "timeline": [{"date": string, "description": string, "type": "fact" | "witness" | "medical" | "legal"}]
}

Return ONLY the valid JSON.`

var (
	errRatingOutOfBounds = errors.NewSentinel("case rating out of bounds")
	errInvalidEnum       = errors.NewSentinel("invalid enum value in report")
	errNoJSONObject      = errors.NewSentinel("no JSON object in response")
)

// Extractor produces the case-readiness report from a finished transcript.
type Extractor struct {
	completer ai.Completer
	logger    *slog.Logger
}

func NewExtractor(completer ai.Completer, logger *slog.Logger) *Extractor {
	return &Extractor{
		completer: completer,
		logger:    logger.With("source", "analysis.Extractor"),
	}
}

// Analyze grades the transcript. It is total: on any transport, parse, or
// validation failure it returns a clearly-marked degraded report so the
// caller always has a renderable value.
func (e *Extractor) Analyze(ctx context.Context, transcript models.Transcript) models.AnalysisReport {
	prompt := fmt.Sprintf(promptTemplate, renderTranscript(transcript))

	completion, err := e.completer.Complete(ctx, []ai.Message{{Role: models.RoleUser, Content: prompt}})
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "analysis completion failed", errors.SlogError(err))
		return fallbackReport()
	}

	report, err := parseReport(completion.Content)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "analysis response rejected", errors.SlogError(err))
		return fallbackReport()
	}
	return report
}

// renderTranscript flattens the transcript into the evaluator-readable form:
// upper-cased role label plus content per message, blank line separated.
func renderTranscript(transcript models.Transcript) string {
	lines := make([]string, len(transcript))
	for i, message := range transcript {
		lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(message.Role), message.Content)
	}
	return strings.Join(lines, "\n\n")
}

// parseReport validates the model output strictly against the report shape.
// An out-of-bounds rating is rejected into the fallback rather than clamped
// so a hallucinated score never masquerades as a real grade.
func parseReport(content string) (models.AnalysisReport, error) {
	var report models.AnalysisReport

	jsonObject, err := extractJSONObject(content)
	if err != nil {
		return report, err
	}
	if err = json.Unmarshal([]byte(jsonObject), &report); err != nil {
		return report, errors.Wrap(err, "unmarshal report")
	}

	if report.CaseRating < 0 || report.CaseRating > 100 {
		return models.AnalysisReport{}, errors.Wrap(errRatingOutOfBounds, "validate report",
			slog.Int("caseRating", report.CaseRating))
	}
	for _, item := range report.Evidence {
		if !item.Status.Valid() {
			return models.AnalysisReport{}, errors.Wrap(errInvalidEnum, "validate evidence status",
				slog.String("status", string(item.Status)))
		}
	}
	for _, event := range report.Timeline {
		if !event.Type.Valid() {
			return models.AnalysisReport{}, errors.Wrap(errInvalidEnum, "validate timeline type",
				slog.String("type", string(event.Type)))
		}
	}

	// Callers render the arrays directly; normalise absent ones to empty.
	if report.RedFlags == nil {
		report.RedFlags = []string{}
	}
	if report.MissingInfo == nil {
		report.MissingInfo = []string{}
	}
	if report.Evidence == nil {
		report.Evidence = []models.EvidenceItem{}
	}
	if report.Timeline == nil {
		report.Timeline = []models.TimelineEvent{}
	}
	return report, nil
}

// extractJSONObject tolerates markdown fences and prose around the JSON
// object that models commonly add despite the "ONLY the valid JSON"
// instruction.
func extractJSONObject(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return "", errors.Wrap(errNoJSONObject, "extract JSON object")
	}
	return content[start : end+1], nil
}

func fallbackReport() models.AnalysisReport {
	return models.AnalysisReport{
		Summary:     "Analysis failed. Please try again.",
		CaseRating:  0,
		RedFlags:    []string{"Analysis failed"},
		MissingInfo: []string{},
		Evidence:    []models.EvidenceItem{},
		Timeline:    []models.TimelineEvent{},
	}
}
