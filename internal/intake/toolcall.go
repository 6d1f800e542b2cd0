package intake

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
)

// Tool names the model may invoke during the interview.
const (
	ToolRequestInfo     = "request_info"
	ToolSaveWitness     = "save_witness"
	ToolSaveCaseDetails = "save_case_details"
)

var (
	ErrMalformedPayload = errors.NewSentinel("malformed tool payload")
	ErrUnknownTool      = errors.NewSentinel("unknown tool")
)

// The deployed model cannot be trusted to use native structured tool calls,
// so the interview protocol instructs it to hand-emit tool invocations as
// pseudo-tags in its text output. This pattern must match that wire format
// exactly: <function=NAME>{...JSON...}</function>, repeated zero or more
// times in one response.
var functionTagPattern = regexp.MustCompile(`(?s)<function=(\w+)>(.*?)</function>`)

// RequestInfo asks the user one question and tells the client which input
// widget to render for the answer.
type RequestInfo struct {
	Question  string           `json:"question"`
	InputType models.InputKind `json:"inputType"`
	Options   []string         `json:"options,omitempty"`
}

// Invocation is one typed, validated tool invocation extracted from a model
// response. Exactly one of the payload fields is set, per Name.
type Invocation struct {
	Name        string
	RequestInfo *RequestInfo
	Witness     *models.Witness
	CaseDetails *models.CaseDetails
}

// ScanLeakedCalls extracts every pseudo-tag tool invocation from content.
//
// All matched tag spans are stripped from the returned remainder whether or
// not their payload parses, so no tag markup ever reaches the user. Payloads
// that fail to parse or validate are dropped individually and reported in
// errs; the other matches still apply.
func ScanLeakedCalls(content string) (invocations []Invocation, remainder string, errs []error) {
	matches := functionTagPattern.FindAllStringSubmatch(content, -1)
	for _, match := range matches {
		name, payload := match[1], match[2]
		invocation, err := parseInvocation(name, payload)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		invocations = append(invocations, invocation)
	}
	remainder = strings.TrimSpace(functionTagPattern.ReplaceAllString(content, ""))
	return invocations, remainder, errs
}

func parseInvocation(name, payload string) (Invocation, error) {
	switch name {
	case ToolRequestInfo:
		var requestInfo RequestInfo
		if err := json.Unmarshal([]byte(payload), &requestInfo); err != nil {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "parse request_info", errors.SlogError(err))
		}
		if requestInfo.Question == "" {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "request_info without question")
		}
		if requestInfo.InputType == "" {
			requestInfo.InputType = models.InputKindText
		}
		if !requestInfo.InputType.Valid() {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "request_info with unknown input type",
				slog.String("inputType", string(requestInfo.InputType)))
		}
		return Invocation{Name: name, RequestInfo: &requestInfo}, nil

	case ToolSaveWitness:
		var witness models.Witness
		if err := json.Unmarshal([]byte(payload), &witness); err != nil {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "parse save_witness", errors.SlogError(err))
		}
		if witness.Name == "" {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "save_witness without name")
		}
		return Invocation{Name: name, Witness: &witness}, nil

	case ToolSaveCaseDetails:
		var details models.CaseDetails
		if err := json.Unmarshal([]byte(payload), &details); err != nil {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "parse save_case_details", errors.SlogError(err))
		}
		if details.Description == "" {
			return Invocation{}, errors.Wrap(ErrMalformedPayload, "save_case_details without description")
		}
		return Invocation{Name: name, CaseDetails: &details}, nil
	}

	return Invocation{}, errors.Wrap(ErrUnknownTool, "parse tool invocation", slog.String("tool", name))
}
