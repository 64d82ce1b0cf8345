package workflow

// Transition is one (condition, step) pair of a conditional next
// specification. A nil When matches unconditionally.
type Transition struct {
	When *Condition
	To   StepID
}

// Next specifies where a step leads. Either a fixed step id, or an ordered
// list of conditional cases evaluated first-match-wins. The zero value
// means the workflow completes at this step.
type Next struct {
	To    StepID
	Cases []Transition
}

// Fixed builds an unconditional next specification.
func Fixed(to StepID) Next {
	return Next{To: to}
}

// Cases builds a conditional next specification.
func Cases(cases ...Transition) Next {
	return Next{Cases: cases}
}

// ResolveNext returns the next step id for the given data bag. ok is false
// when the workflow completes here: either Next is the zero value, or no
// conditional case matched (the caller logs the latter as an authoring
// warning).
func ResolveNext(n Next, data map[string]any) (StepID, bool) {
	if n.To != "" {
		return n.To, true
	}
	for _, t := range n.Cases {
		if t.When == nil || t.When.Eval(data) {
			return t.To, true
		}
	}
	return "", false
}
