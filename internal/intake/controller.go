package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tkivisto/legalintake/internal/ai"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
)

const (
	// fillerContent replaces an assistant turn whose text was nothing but
	// tool tags. The UI must never show a blank bubble.
	fillerContent = "I processed that."
	// degradedContent is shown when the completion service fails. The user's
	// utterance is still recorded so no input is lost.
	degradedContent = "I'm having trouble connecting to my brain right now. Please try again."

	detailsAck = "(System: Updated case details)"
)

func witnessAck(name string) string {
	return fmt.Sprintf("(System: Saved witness %s)", name)
}

// Turn is the controller's answer to one user utterance.
type Turn struct {
	// Transcript is the advanced transcript: the prior history plus the
	// user's utterance and the computed assistant message. The caller
	// persists it as a single atomic write.
	Transcript models.Transcript
	// Message is the assistant message appended to Transcript.
	Message models.Message
	// Witnesses and Details are the facts saved during this turn. The caller
	// is responsible for persisting and auditing them.
	Witnesses []models.Witness
	Details   []models.CaseDetails
	// Degraded is set when the completion service failed and Message is the
	// fixed apology.
	Degraded bool
}

// Controller drives the structured intake interview. It is stateless; each
// Advance call issues exactly one completion request and derives the next
// assistant turn from its output.
type Controller struct {
	completer ai.Completer
	logger    *slog.Logger
}

func NewController(completer ai.Completer, logger *slog.Logger) *Controller {
	return &Controller{
		completer: completer,
		logger:    logger.With("source", "intake.Controller"),
	}
}

// Advance computes the next assistant turn for the given transcript and new
// user utterance. It never returns an error: a completion service failure
// yields a degraded apology turn and the transcript still advances with the
// user's utterance.
func (c *Controller) Advance(ctx context.Context, transcript models.Transcript, utterance string) Turn {
	userMessage := models.Message{Role: models.RoleUser, Content: utterance}

	completion, err := c.completer.Complete(ctx, c.buildMessages(transcript, utterance))
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "completion failed", errors.SlogError(err))
		message := models.Message{Role: models.RoleAssistant, Content: degradedContent}
		return Turn{
			Transcript: append(append(models.Transcript{}, transcript...), userMessage, message),
			Message:    message,
			Degraded:   true,
		}
	}

	turn := c.applyInvocations(ctx, completion)
	turn.Transcript = append(append(models.Transcript{}, transcript...), userMessage, turn.Message)
	return turn
}

func (c *Controller) buildMessages(transcript models.Transcript, utterance string) []ai.Message {
	messages := make([]ai.Message, 0, len(transcript)+2)
	messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})
	for _, message := range transcript {
		messages = append(messages, ai.Message{Role: message.Role, Content: message.Content})
	}
	return append(messages, ai.Message{Role: models.RoleUser, Content: utterance})
}

// applyInvocations turns a raw completion into the assistant message. Leaked
// pseudo-tags are the primary parse path; native tool calls are only
// consulted when no tags were found.
func (c *Controller) applyInvocations(ctx context.Context, completion ai.Completion) Turn {
	invocations, remainder, parseErrs := ScanLeakedCalls(completion.Content)
	for _, err := range parseErrs {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "dropping malformed tool invocation", errors.SlogError(err))
	}

	if remainder == "" {
		remainder = fillerContent
	}

	turn := Turn{
		Message: models.Message{
			Role:      models.RoleAssistant,
			Content:   remainder,
			InputType: models.InputKindText,
		},
	}

	// Resolve the question before the saves so an acknowledgment always
	// prepends to the question no matter which order the model emitted the
	// tags in. Ask one thing at a time: only the first question is kept.
	hasQuestion := false
	for _, invocation := range invocations {
		if invocation.Name != ToolRequestInfo || hasQuestion {
			continue
		}
		turn.Message.Content = invocation.RequestInfo.Question
		turn.Message.InputType = invocation.RequestInfo.InputType
		turn.Message.Options = invocation.RequestInfo.Options
		hasQuestion = true
	}

	for _, invocation := range invocations {
		switch invocation.Name {
		case ToolSaveWitness:
			witness := *invocation.Witness
			turn.Witnesses = append(turn.Witnesses, witness)
			if hasQuestion {
				turn.Message.Content = witnessAck(witness.Name) + " " + turn.Message.Content
			} else {
				turn.Message.Content = fmt.Sprintf("%s Thanks. I've noted down %s.", witnessAck(witness.Name), witness.Name)
			}

		case ToolSaveCaseDetails:
			turn.Details = append(turn.Details, *invocation.CaseDetails)
			if hasQuestion {
				turn.Message.Content = detailsAck + " " + turn.Message.Content
			} else {
				turn.Message.Content = detailsAck
			}
		}
	}

	if len(invocations) == 0 && len(completion.ToolCalls) > 0 {
		c.applyNativeCall(ctx, completion.ToolCalls[0], &turn)
	}

	return turn
}

// applyNativeCall handles the fallback path for models that report tool
// calls through the structured API instead of leaking tags. No question
// merging happens here since no request_info tag exists in this path.
func (c *Controller) applyNativeCall(ctx context.Context, call ai.ToolCall, turn *Turn) {
	if call.Name != ToolSaveWitness {
		return
	}
	var witness models.Witness
	if err := json.Unmarshal([]byte(call.Args), &witness); err != nil || witness.Name == "" {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "dropping malformed native tool call",
			slog.String("tool", call.Name), errors.SlogError(err))
		return
	}
	turn.Witnesses = append(turn.Witnesses, witness)
	turn.Message.Content = fmt.Sprintf("%s Thanks. I've noted down %s.", witnessAck(witness.Name), witness.Name)
}
