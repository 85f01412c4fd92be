// Package agent runs the conversational loop between the user, the chat
// model, and the tool registry.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	agentai "github.com/edw-crtn/AgentAI"
	"github.com/edw-crtn/AgentAI/tools"
)

const (
	// DefaultMaxToolLoops bounds chained tool calls within one user turn.
	DefaultMaxToolLoops = 5

	healthToolName = "evaluate_meal_healthiness"

	// fallback returned when the loop budget runs out before the model
	// produces a plain answer. Appended to the transcript only; the provider
	// history stays aligned so the next turn can recover.
	exhaustedFallback = "I'm sorry, something went wrong while coordinating tools. Please try rephrasing your last message."
)

// Agent is one conversational session. Not safe for concurrent use; callers
// run one Chat call to completion at a time.
type Agent struct {
	model    agentai.ChatModel
	registry *tools.Registry
	vision   agentai.VisionExtractor
	logger   agentai.ConversationLogger
	usage    *agentai.UsageAccumulator
	impact   agentai.ImpactConfig

	maxToolLoops int
	step         int

	messages   []agentai.Message
	transcript []agentai.TranscriptEntry

	healthAnalysisDone bool
	usageReportSent    bool
}

type Option func(*Agent)

// WithVision enables photo analysis via the given extractor.
func WithVision(v agentai.VisionExtractor) Option {
	return func(a *Agent) { a.vision = v }
}

func WithMaxToolLoops(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolLoops = n
		}
	}
}

func WithLogger(l agentai.ConversationLogger) Option {
	return func(a *Agent) { a.logger = l }
}

func WithImpactConfig(cfg agentai.ImpactConfig) Option {
	return func(a *Agent) { a.impact = cfg }
}

// New seeds the session with the system prompt and the intro greeting.
func New(model agentai.ChatModel, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		model:        model,
		registry:     registry,
		logger:       agentai.NewNoOpConversationLogger(),
		usage:        agentai.NewUsageAccumulator(),
		impact:       agentai.DefaultImpactConfig(),
		maxToolLoops: DefaultMaxToolLoops,
		messages: []agentai.Message{
			{Role: agentai.RoleSystem, Content: SystemPrompt},
			{Role: agentai.RoleAssistant, Content: IntroMessage},
		},
		transcript: []agentai.TranscriptEntry{
			{Role: agentai.RoleAssistant, Content: IntroMessage},
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transcript returns the user-facing conversation, intro greeting included.
func (a *Agent) Transcript() []agentai.TranscriptEntry {
	out := make([]agentai.TranscriptEntry, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Usage returns the token totals accumulated so far.
func (a *Agent) Usage() agentai.UsageSnapshot {
	return a.usage.Snapshot()
}

// Chat processes one user turn: the model may chain tool calls across up to
// maxToolLoops round-trips before settling on a plain answer. The provider
// history always carries exactly one tool message per requested tool call, in
// request order, directly after the assistant message that asked for them.
func (a *Agent) Chat(ctx context.Context, userText string) (string, error) {
	ctx, span := otel.Tracer(agentai.TracerNameAgent).Start(ctx, "Agent.Chat")
	defer span.End()

	slog.Info("AGENT: Starting turn", "history_len", len(a.messages))

	a.messages = append(a.messages, agentai.Message{Role: agentai.RoleUser, Content: userText})
	a.transcript = append(a.transcript, agentai.TranscriptEntry{Role: agentai.RoleUser, Content: userText})

	specs := toolSpecs(a.registry)

	for loop := 0; loop < a.maxToolLoops; loop++ {
		a.step++
		stepLog := agentai.StepLog{Step: a.step, Timestamp: time.Now()}
		if b, err := json.Marshal(a.messages); err == nil {
			stepLog.ModelInput = string(b)
		}

		resp, err := a.model.Complete(ctx, a.messages, specs)
		if err != nil {
			stepLog.Error = err.Error()
			a.logStep(stepLog)
			return "", fmt.Errorf("model call failed: %w", err)
		}
		stepLog.ModelOutput = resp
		a.usage.Add(resp.Usage)

		slog.Info("AGENT: Model response received",
			"loop", loop+1,
			"content_length", len(resp.Content),
			"tool_calls", len(resp.ToolCalls),
		)

		// Plain answer ends the turn.
		if len(resp.ToolCalls) == 0 {
			a.messages = append(a.messages, agentai.Message{Role: agentai.RoleAssistant, Content: resp.Content})

			content := resp.Content
			if a.healthAnalysisDone && !a.usageReportSent {
				content = content + "\n\n" + agentai.RenderUsageReport(a.usage.Snapshot(), a.impact)
				a.usageReportSent = true
			}
			a.transcript = append(a.transcript, agentai.TranscriptEntry{Role: agentai.RoleAssistant, Content: content})
			a.logStep(stepLog)
			return content, nil
		}

		// Tool round: append the assistant request, then one tool message per
		// call, whatever happens during dispatch.
		a.messages = append(a.messages, agentai.Message{
			Role:      agentai.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			slog.Info("AGENT: Handling tool call", "name", call.Name, "loop", loop+1)
			if call.Name == healthToolName {
				a.healthAnalysisDone = true
			}

			result := a.registry.Invoke(ctx, call.Name, call.RawArguments)

			stepLog.ToolCalls = append(stepLog.ToolCalls, agentai.ToolCallLog{
				Name:         call.Name,
				RawArguments: call.RawArguments,
				Result:       result,
			})
			a.messages = append(a.messages, agentai.Message{
				Role:       agentai.RoleTool,
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    result,
			})
		}

		a.logStep(stepLog)
	}

	slog.Warn("AGENT: Tool loop budget exhausted", "max_tool_loops", a.maxToolLoops)
	a.transcript = append(a.transcript, agentai.TranscriptEntry{Role: agentai.RoleAssistant, Content: exhaustedFallback})
	return exhaustedFallback, nil
}

// AnalyzeImage extracts food items from a meal photo and counts the vision
// tokens toward the session totals.
func (a *Agent) AnalyzeImage(ctx context.Context, image []byte) ([]agentai.FoodObservation, error) {
	if a.vision == nil {
		return nil, fmt.Errorf("no vision extractor configured")
	}
	items, usage, err := a.vision.Extract(ctx, image)
	a.usage.AddVision(usage)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}
	return items, nil
}

func (a *Agent) logStep(step agentai.StepLog) {
	if err := a.logger.LogStep(step); err != nil {
		slog.Error("AGENT: Failed to log step", "error", err)
	}
}

func toolSpecs(registry *tools.Registry) []agentai.ToolSpec {
	var specs []agentai.ToolSpec
	for _, t := range registry.GetTools() {
		specs = append(specs, agentai.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}
	return specs
}
