package ui

// WorkflowState identifies which of the mutually-exclusive estimator
// regions is live. Exactly one state renders at any time; switching
// states tears down every other region's model.
type WorkflowState int

const (
	StateClosed WorkflowState = iota
	StateListView
	StateEstimateSelect
	StateRoomSelect
	StateNewEstimateForm
	StateNewRoomForm
)

func (s WorkflowState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateListView:
		return "ListView"
	case StateEstimateSelect:
		return "EstimateSelect"
	case StateRoomSelect:
		return "RoomSelect"
	case StateNewEstimateForm:
		return "NewEstimateForm"
	case StateNewRoomForm:
		return "NewRoomForm"
	default:
		return "Unknown"
	}
}
