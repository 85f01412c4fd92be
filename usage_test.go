package agentai

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageAccumulatorAdd(t *testing.T) {
	acc := NewUsageAccumulator()
	acc.Add(&TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120})
	acc.Add(&TokenUsage{PromptTokens: 200, CompletionTokens: 50, TotalTokens: 250})

	s := acc.Snapshot()
	assert.Equal(t, 2, s.Calls)
	assert.Equal(t, 300, s.PromptTokens)
	assert.Equal(t, 70, s.CompletionTokens)
	assert.Equal(t, 370, s.TotalTokens)
	assert.Equal(t, 0, s.VisionCalls)
}

func TestUsageAccumulatorSkipsNil(t *testing.T) {
	acc := NewUsageAccumulator()
	acc.Add(nil)
	acc.AddVision(nil)

	s := acc.Snapshot()
	assert.Equal(t, 0, s.Calls)
	assert.Equal(t, 0, s.TotalTokens)
}

func TestUsageAccumulatorDerivesMissingTotal(t *testing.T) {
	acc := NewUsageAccumulator()
	acc.Add(&TokenUsage{PromptTokens: 80, CompletionTokens: 20})

	assert.Equal(t, 100, acc.Snapshot().TotalTokens)
}

func TestUsageAccumulatorVisionBucket(t *testing.T) {
	acc := NewUsageAccumulator()
	acc.Add(&TokenUsage{TotalTokens: 100})
	acc.AddVision(&TokenUsage{TotalTokens: 400})

	s := acc.Snapshot()
	assert.Equal(t, 2, s.Calls)
	assert.Equal(t, 500, s.TotalTokens)
	assert.Equal(t, 1, s.VisionCalls)
	assert.Equal(t, 400, s.VisionTotalTokens)
}

func TestUsageAccumulatorConcurrentAdds(t *testing.T) {
	acc := NewUsageAccumulator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(&TokenUsage{TotalTokens: 10})
		}()
	}
	wg.Wait()

	s := acc.Snapshot()
	assert.Equal(t, 50, s.Calls)
	assert.Equal(t, 500, s.TotalTokens)
}
