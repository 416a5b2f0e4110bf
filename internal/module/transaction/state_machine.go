package transaction

import "fmt"

// StateMachine validates payment status transitions. Transitions are
// monotonic toward the terminal state: once paid, a transaction never moves
// backward, and every mutation goes through the store's conditional update.
type StateMachine struct {
	transitions map[PaymentStatus][]PaymentStatus
}

// NewStateMachine creates the payment status state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[PaymentStatus][]PaymentStatus{
			PaymentStatusPending: {PaymentStatusPaid},
			PaymentStatusPaid:    {}, // Terminal state
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to PaymentStatus) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Validate returns an error when the transition is not allowed.
func (sm *StateMachine) Validate(from, to PaymentStatus) error {
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
