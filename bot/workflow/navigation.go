package workflow

import "time"

// NavigationFrame is a restorable snapshot taken whenever the executor
// moves to a new step. Frames with CanReturn false are skipped by GoBack:
// the pusher marks a frame unreturnable when re-entering its step would
// re-dispatch a service call, so side effects are never replayed.
type NavigationFrame struct {
	WorkflowID WorkflowID `json:"workflow_id" bson:"workflow_id"`
	StepID     StepID     `json:"step_id" bson:"step_id"`
	Snapshot   Snapshot   `json:"snapshot" bson:"snapshot"`
	PushedAt   time.Time  `json:"pushed_at" bson:"pushed_at"`
	CanReturn  bool       `json:"can_return" bson:"can_return"`
}

// NavigationStack is a bounded stack of NavigationFrames. Once the bound
// is exceeded the oldest frame is evicted first. Pushing and popping are
// the only mutations.
type NavigationStack struct {
	Frames   []NavigationFrame `json:"frames" bson:"frames"`
	MaxDepth int               `json:"max_depth" bson:"max_depth"`
}

const defaultNavDepth = 10

// NewNavigationStack creates a stack with the given bound (<=0 uses the
// default depth).
func NewNavigationStack(maxDepth int) NavigationStack {
	if maxDepth <= 0 {
		maxDepth = defaultNavDepth
	}
	return NavigationStack{MaxDepth: maxDepth}
}

// Push appends a frame, evicting the oldest one at the bound.
func (n *NavigationStack) Push(f NavigationFrame) {
	max := n.MaxDepth
	if max <= 0 {
		max = defaultNavDepth
	}
	n.Frames = append(n.Frames, f)
	if len(n.Frames) > max {
		n.Frames = n.Frames[len(n.Frames)-max:]
	}
}

// Pop removes and returns the top frame.
func (n *NavigationStack) Pop() (NavigationFrame, bool) {
	if len(n.Frames) == 0 {
		return NavigationFrame{}, false
	}
	f := n.Frames[len(n.Frames)-1]
	n.Frames = n.Frames[:len(n.Frames)-1]
	return f, true
}

// PopReturnable pops frames until it finds one that can be restored.
func (n *NavigationStack) PopReturnable() (NavigationFrame, bool) {
	for {
		f, ok := n.Pop()
		if !ok {
			return NavigationFrame{}, false
		}
		if f.CanReturn {
			return f, true
		}
	}
}

// Peek returns the top frame without removing it.
func (n *NavigationStack) Peek() (NavigationFrame, bool) {
	if len(n.Frames) == 0 {
		return NavigationFrame{}, false
	}
	return n.Frames[len(n.Frames)-1], true
}

// Len returns the stack depth.
func (n *NavigationStack) Len() int { return len(n.Frames) }

// Clear drops all frames (workflow completion or abandonment).
func (n *NavigationStack) Clear() { n.Frames = nil }
