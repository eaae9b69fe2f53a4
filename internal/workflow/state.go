// Package workflow drives one operator's CV upload from file selection to a persisted CV,
// guarding every step by the current state.
package workflow

import "talent-hub-backend/internal/domain"

type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StatePreviewing   State = "previewing"
	StateAnalyzing    State = "analyzing"
	StateReviewing    State = "reviewing"
	StateApplying     State = "applying"
	StateConfirmed    State = "confirmed"
	StateSubmitting   State = "submitting"
	StateDone         State = "done"
)

type Action string

const (
	ActionSelectFile Action = "select_file"
	ActionPreview    Action = "preview"
	ActionAnalyze    Action = "analyze"
	ActionConfirm    Action = "confirm"
	ActionProceed    Action = "proceed"
	ActionSubmit     Action = "submit"
	ActionCancel     Action = "cancel"
	ActionReset      Action = "reset"
)

var transitions = map[State][]Action{
	StateIdle:         {ActionSelectFile},
	StateFileSelected: {ActionSelectFile, ActionPreview, ActionCancel},
	StatePreviewing:   {ActionSelectFile, ActionAnalyze, ActionCancel},
	StateAnalyzing:    {ActionCancel},
	StateReviewing:    {ActionConfirm, ActionProceed, ActionCancel},
	StateApplying:     {},
	StateConfirmed:    {ActionSubmit, ActionCancel},
	StateSubmitting:   {},
	StateDone:         {ActionReset},
}

// Actions lists what the operator may do next. Confirm is hidden when the comparison has no
// basic info changes.
func Actions(s State, comparison *domain.ComparisonResult) []Action {
	var out []Action
	for _, a := range transitions[s] {
		if a == ActionConfirm && (comparison == nil || !comparison.BasicInfo.HasChanges) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func allowed(s State, a Action, comparison *domain.ComparisonResult) bool {
	for _, candidate := range Actions(s, comparison) {
		if candidate == a {
			return true
		}
	}
	return false
}

// Cancellable reports whether a cancel from s has anything to release.
func Cancellable(s State) bool {
	return allowed(s, ActionCancel, nil)
}
