package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNextFixed(t *testing.T) {
	next, ok := ResolveNext(Fixed("b"), nil)
	assert.True(t, ok)
	assert.Equal(t, StepID("b"), next)
}

func TestResolveNextZeroCompletes(t *testing.T) {
	_, ok := ResolveNext(Next{}, nil)
	assert.False(t, ok)
}

func TestResolveNextFirstMatchWins(t *testing.T) {
	n := Cases(
		Transition{When: &Condition{Path: "v", Op: OpGte, Value: 100}, To: "high"},
		Transition{When: &Condition{Path: "v", Op: OpGte, Value: 10}, To: "mid"},
		Transition{To: "low"},
	)

	next, ok := ResolveNext(n, map[string]any{"v": 500})
	assert.True(t, ok)
	assert.Equal(t, StepID("high"), next)

	next, ok = ResolveNext(n, map[string]any{"v": 50})
	assert.True(t, ok)
	assert.Equal(t, StepID("mid"), next)

	// The nil-When default catches everything else.
	next, ok = ResolveNext(n, map[string]any{"v": 1})
	assert.True(t, ok)
	assert.Equal(t, StepID("low"), next)
}

func TestResolveNextNoCaseMatched(t *testing.T) {
	n := Cases(
		Transition{When: &Condition{Path: "v", Op: OpEq, Value: "yes"}, To: "a"},
	)
	_, ok := ResolveNext(n, map[string]any{"v": "no"})
	assert.False(t, ok)
}
