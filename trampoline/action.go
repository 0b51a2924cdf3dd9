// Package trampoline is the runtime support package for rewritten functions.
// Code produced by the unrecurse rewriter imports it; it has no dependencies
// of its own so that rewriting a file never pulls anything else into the
// user's module.
package trampoline

// Unit is the result type of rewritten functions that return nothing.
type Unit = struct{}

// Action is the step result of a trampolined function body: either the next
// loop state (Continue) or the final value (Return). S is the tuple of the
// original parameters collapsed into a struct, R is the original result type.
type Action[S, R any] struct {
	state S
	value R
	done  bool
}

// Continue produces an Action carrying the argument tuple of a self-call.
// The driving loop feeds it back into the next iteration.
func Continue[S, R any](state S) Action[S, R] {
	return Action[S, R]{state: state}
}

// Return produces a terminal Action carrying the function's final value.
func Return[S, R any](value R) Action[S, R] {
	return Action[S, R]{value: value, done: true}
}

// IsReturn reports whether the action is terminal.
func (a Action[S, R]) IsReturn() bool {
	return a.done
}

// State returns the Continue payload. Zero for a Return action.
func (a Action[S, R]) State() S {
	return a.state
}

// Value returns the Return payload. Zero for a Continue action.
func (a Action[S, R]) Value() R {
	return a.value
}

// Run drives step to completion starting from state, replacing the state on
// every Continue and returning the payload of the first Return. The loop is
// iterative, so the recursion depth of the original function never grows the
// stack. Rewritten functions inline this exact loop; Run is for code that
// wants to trampoline by hand against the same Action type.
func Run[S, R any](state S, step func(S) Action[S, R]) R {
	for {
		a := step(state)
		if a.IsReturn() {
			return a.Value()
		}
		state = a.State()
	}
}
