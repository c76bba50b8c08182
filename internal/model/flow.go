package model

// FlowState is the homework-confirmation state of one user.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowAwaitingConfirmation
	FlowConfirmed
	FlowCancelled
)

func (s FlowState) String() string {
	switch s {
	case FlowAwaitingConfirmation:
		return "awaiting_confirmation"
	case FlowConfirmed:
		return "confirmed"
	case FlowCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// DraftFlow tracks the last draft shown to a user and what became of it.
// The draft itself travels in the confirmation payload; this record only
// lets the router recognize repeated confirmations of the same draft.
type DraftFlow struct {
	State FlowState
	Draft TaskDraft
}
