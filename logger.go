package agentai

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ConversationLogger is the interface for per-step conversation logging.
type ConversationLogger interface {
	LogStep(step StepLog) error
}

// NewConversationLogFilePath returns a file path based on a cleaned up model
// name or id to make it easier to identify logs produced with various models.
func NewConversationLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// StepLog records one model round-trip within a chat turn.
type StepLog struct {
	Step        int           `json:"step"`
	Timestamp   time.Time     `json:"timestamp"`
	ModelInput  string        `json:"model_input,omitempty"`
	ModelOutput any           `json:"model_output"`
	ToolCalls   []ToolCallLog `json:"tool_calls,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// ToolCallLog records a single tool dispatch within a step.
type ToolCallLog struct {
	Name         string `json:"name"`
	RawArguments string `json:"raw_arguments"`
	Result       string `json:"result,omitempty"`
}

// FileConversationLogger accumulates steps and flushes them as one JSON
// document at the end of the session.
type FileConversationLogger struct {
	steps  []StepLog
	writer io.Writer
}

func NewFileConversationLogger(writer io.Writer) *FileConversationLogger {
	return &FileConversationLogger{
		steps:  make([]StepLog, 0),
		writer: writer,
	}
}

// LogStep buffers a step (does not flush immediately).
func (l *FileConversationLogger) LogStep(step StepLog) error {
	l.steps = append(l.steps, step)
	return nil
}

// Flush writes all accumulated steps to the writer.
func (l *FileConversationLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"conversation_session": map[string]any{
			"timestamp": time.Now(),
			"steps":     l.steps,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write conversation log: %w", err)
	}

	l.steps = l.steps[:0]
	return nil
}

// NoOpConversationLogger discards all log entries.
type NoOpConversationLogger struct{}

func NewNoOpConversationLogger() *NoOpConversationLogger {
	return &NoOpConversationLogger{}
}

func (NoOpConversationLogger) LogStep(step StepLog) error {
	return nil
}

// StdoutConversationLogger writes each step as a JSON line to stdout
// (for Lambda/CloudWatch).
type StdoutConversationLogger struct{}

func NewStdoutConversationLogger() *StdoutConversationLogger {
	return &StdoutConversationLogger{}
}

func (StdoutConversationLogger) LogStep(step StepLog) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
