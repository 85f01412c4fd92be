package agentai

import "sync"

// UsageAccumulator tracks cumulative token usage across all model calls in a
// session. Vision calls are counted in the general totals and additionally in a
// separate vision bucket. Missing usage data (nil) is skipped, never an error.
type UsageAccumulator struct {
	mu sync.Mutex

	calls            int
	promptTokens     int
	completionTokens int
	totalTokens      int

	visionCalls       int
	visionTotalTokens int
}

// UsageSnapshot is a point-in-time copy of the accumulator's totals.
type UsageSnapshot struct {
	Calls             int `json:"calls"`
	PromptTokens      int `json:"prompt_tokens"`
	CompletionTokens  int `json:"completion_tokens"`
	TotalTokens       int `json:"total_tokens"`
	VisionCalls       int `json:"vision_calls"`
	VisionTotalTokens int `json:"vision_total_tokens"`
}

func NewUsageAccumulator() *UsageAccumulator {
	return &UsageAccumulator{}
}

// Add accumulates usage from a single chat call.
func (a *UsageAccumulator) Add(u *TokenUsage) {
	a.add(u, false)
}

// AddVision accumulates usage from a vision call into both the general totals
// and the vision bucket.
func (a *UsageAccumulator) AddVision(u *TokenUsage) {
	a.add(u, true)
}

func (a *UsageAccumulator) add(u *TokenUsage, vision bool) {
	if u == nil {
		return
	}

	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	a.promptTokens += u.PromptTokens
	a.completionTokens += u.CompletionTokens
	a.totalTokens += total

	if vision {
		a.visionCalls++
		a.visionTotalTokens += total
	}
}

// Snapshot returns the current cumulative usage.
func (a *UsageAccumulator) Snapshot() UsageSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return UsageSnapshot{
		Calls:             a.calls,
		PromptTokens:      a.promptTokens,
		CompletionTokens:  a.completionTokens,
		TotalTokens:       a.totalTokens,
		VisionCalls:       a.visionCalls,
		VisionTotalTokens: a.visionTotalTokens,
	}
}
