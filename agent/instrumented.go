package agent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	agentai "github.com/edw-crtn/AgentAI"
)

// InstrumentedAgent wraps an Agent with tracing and metrics for each turn.
// The inner loop stays uninstrumented; per-turn spans plus the token counters
// cover what the dashboards actually chart.
type InstrumentedAgent struct {
	inner  *Agent
	tracer trace.Tracer
	meter  metric.Meter

	turnsCounter       metric.Int64Counter
	turnsFailedCounter metric.Int64Counter
	tokensCounter      metric.Int64Counter
	turnDurationHist   metric.Float64Histogram
	historyLenGauge    metric.Int64Gauge
}

func NewInstrumentedAgent(inner *Agent, tracer trace.Tracer, meter metric.Meter) *InstrumentedAgent {
	a := &InstrumentedAgent{inner: inner, tracer: tracer, meter: meter}

	a.turnsCounter, _ = meter.Int64Counter("agent_turns_total",
		metric.WithDescription("Total number of chat turns started"))
	a.turnsFailedCounter, _ = meter.Int64Counter("agent_turns_failed_total",
		metric.WithDescription("Total number of chat turns that failed"))
	a.tokensCounter, _ = meter.Int64Counter("agent_tokens_total",
		metric.WithDescription("Total tokens consumed across model calls"))
	a.turnDurationHist, _ = meter.Float64Histogram("agent_turn_duration_seconds",
		metric.WithDescription("Duration of individual chat turns in seconds"))
	a.historyLenGauge, _ = meter.Int64Gauge("agent_history_messages",
		metric.WithDescription("Number of messages in the provider-facing history"))

	return a
}

func (a *InstrumentedAgent) Chat(ctx context.Context, userText string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "Agent.Chat")
	defer span.End()

	a.turnsCounter.Add(ctx, 1)
	before := a.inner.Usage().TotalTokens
	start := time.Now()

	answer, err := a.inner.Chat(ctx, userText)

	a.turnDurationHist.Record(ctx, time.Since(start).Seconds())
	a.historyLenGauge.Record(ctx, int64(len(a.inner.messages)))
	a.tokensCounter.Add(ctx, int64(a.inner.Usage().TotalTokens-before))

	if err != nil {
		a.turnsFailedCounter.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(
		attribute.Int("answer_length", len(answer)),
		attribute.Int("history_messages", len(a.inner.messages)),
	)
	return answer, nil
}

// AnalyzeImage delegates to the wrapped agent under its own span.
func (a *InstrumentedAgent) AnalyzeImage(ctx context.Context, image []byte) ([]agentai.FoodObservation, error) {
	ctx, span := a.tracer.Start(ctx, "Agent.AnalyzeImage")
	defer span.End()

	items, err := a.inner.AnalyzeImage(ctx, image)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("items_detected", len(items)))
	return items, nil
}

func (a *InstrumentedAgent) Transcript() []agentai.TranscriptEntry { return a.inner.Transcript() }
func (a *InstrumentedAgent) Usage() agentai.UsageSnapshot          { return a.inner.Usage() }
