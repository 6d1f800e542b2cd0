package intake_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkivisto/legalintake/internal/intake"
	"github.com/tkivisto/legalintake/internal/models"
)

func TestScanLeakedCalls(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantInvocations []intake.Invocation
		wantRemainder   string
		wantErrCount    int
	}{
		{
			name:          "no tags",
			content:       "Could you tell me more about the incident?",
			wantRemainder: "Could you tell me more about the incident?",
		},
		{
			name:    "single request_info",
			content: `<function=request_info>{"question":"When did it happen?","inputType":"date"}</function>`,
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolRequestInfo,
					RequestInfo: &intake.RequestInfo{
						Question:  "When did it happen?",
						InputType: models.InputKindDate,
					},
				},
			},
			wantRemainder: "",
		},
		{
			name:    "request_info with options",
			content: `<function=request_info>{"question":"Pick one","inputType":"yes_no","options":["Yes","No"]}</function>`,
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolRequestInfo,
					RequestInfo: &intake.RequestInfo{
						Question:  "Pick one",
						InputType: models.InputKindYesNo,
						Options:   []string{"Yes", "No"},
					},
				},
			},
			wantRemainder: "",
		},
		{
			name:    "request_info without input type defaults to text",
			content: `<function=request_info>{"question":"Describe the scene."}</function>`,
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolRequestInfo,
					RequestInfo: &intake.RequestInfo{
						Question:  "Describe the scene.",
						InputType: models.InputKindText,
					},
				},
			},
			wantRemainder: "",
		},
		{
			name:          "request_info with unknown input type is dropped",
			content:       `<function=request_info>{"question":"Pick one","inputType":"dropdown"}</function>`,
			wantRemainder: "",
			wantErrCount:  1,
		},
		{
			name:    "save then ask in one response",
			content: `<function=save_case_details>{"description":"fell on ice","date":"2024-01-05","injuries":"unknown"}</function><function=request_info>{"question":"Were you injured?","inputType":"yes_no"}</function>`,
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolSaveCaseDetails,
					CaseDetails: &models.CaseDetails{
						Description: "fell on ice",
						Date:        "2024-01-05",
						Injuries:    "unknown",
					},
				},
				{
					Name: intake.ToolRequestInfo,
					RequestInfo: &intake.RequestInfo{
						Question:  "Were you injured?",
						InputType: models.InputKindYesNo,
					},
				},
			},
			wantRemainder: "",
		},
		{
			name:    "malformed JSON does not block later tags",
			content: `<function=save_witness>{"name":"Jane",}</function><function=request_info>{"question":"Anything else?","inputType":"yes_no"}</function>`,
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolRequestInfo,
					RequestInfo: &intake.RequestInfo{
						Question:  "Anything else?",
						InputType: models.InputKindYesNo,
					},
				},
			},
			wantRemainder: "",
			wantErrCount:  1,
		},
		{
			name:          "unknown tool is dropped but stripped",
			content: `Before <function=delete_case>{"id":1}</function> after`,
			wantRemainder: "Before  after",
			wantErrCount:  1,
		},
		{
			name:    "tags mixed with prose are stripped from remainder",
			content: "Let me note that.\n<function=save_witness>{\"name\":\"Jane Doe\",\"contact\":\"555-0100\"}</function>\nThanks!",
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolSaveWitness,
					Witness: &models.Witness{
						Name:    "Jane Doe",
						Contact: "555-0100",
					},
				},
			},
			wantRemainder: "Let me note that.\n\nThanks!",
		},
		{
			name:          "witness without name is dropped",
			content:       `<function=save_witness>{"contact":"555-0100"}</function>`,
			wantRemainder: "",
			wantErrCount:  1,
		},
		{
			name:    "multiline JSON payload",
			content: "<function=save_case_details>{\n  \"description\": \"rear-ended at a red light\",\n  \"date\": \"2024-03-10\",\n  \"injuries\": \"whiplash\",\n  \"liability\": \"other driver\"\n}</function>",
			wantInvocations: []intake.Invocation{
				{
					Name: intake.ToolSaveCaseDetails,
					CaseDetails: &models.CaseDetails{
						Description: "rear-ended at a red light",
						Date:        "2024-03-10",
						Injuries:    "whiplash",
						Liability:   "other driver",
					},
				},
			},
			wantRemainder: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			invocations, remainder, errs := intake.ScanLeakedCalls(tt.content)

			require.Equal(t, tt.wantInvocations, invocations)
			require.Equal(t, tt.wantRemainder, remainder)
			require.Len(t, errs, tt.wantErrCount)
			require.NotContains(t, remainder, "<function=", "remainder must have zero residual tag markup")
		})
	}
}
