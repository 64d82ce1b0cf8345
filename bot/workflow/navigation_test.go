package workflow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(step string, canReturn bool) NavigationFrame {
	return NavigationFrame{
		WorkflowID: "wf",
		StepID:     StepID(step),
		CanReturn:  canReturn,
	}
}

func TestNavigationPushPop(t *testing.T) {
	n := NewNavigationStack(5)

	n.Push(frame("a", true))
	n.Push(frame("b", true))
	assert.Equal(t, 2, n.Len())

	top, ok := n.Peek()
	require.True(t, ok)
	assert.Equal(t, StepID("b"), top.StepID)
	assert.Equal(t, 2, n.Len())

	f, ok := n.Pop()
	require.True(t, ok)
	assert.Equal(t, StepID("b"), f.StepID)

	f, ok = n.Pop()
	require.True(t, ok)
	assert.Equal(t, StepID("a"), f.StepID)

	_, ok = n.Pop()
	assert.False(t, ok)
}

func TestNavigationEvictsOldest(t *testing.T) {
	n := NewNavigationStack(3)
	for i := 1; i <= 5; i++ {
		n.Push(frame(fmt.Sprintf("s%d", i), true))
	}

	assert.Equal(t, 3, n.Len())

	// The two oldest frames are gone; popping yields newest first.
	f, _ := n.Pop()
	assert.Equal(t, StepID("s5"), f.StepID)
	f, _ = n.Pop()
	assert.Equal(t, StepID("s4"), f.StepID)
	f, _ = n.Pop()
	assert.Equal(t, StepID("s3"), f.StepID)
}

func TestPopReturnableSkipsServiceFrames(t *testing.T) {
	n := NewNavigationStack(5)
	n.Push(frame("form", true))
	n.Push(frame("service", false))
	n.Push(frame("after", false))

	f, ok := n.PopReturnable()
	require.True(t, ok)
	assert.Equal(t, StepID("form"), f.StepID)
	assert.Equal(t, 0, n.Len())

	_, ok = n.PopReturnable()
	assert.False(t, ok)
}

func TestNavigationClear(t *testing.T) {
	n := NewNavigationStack(5)
	n.Push(frame("a", true))
	n.Clear()
	assert.Equal(t, 0, n.Len())
}
