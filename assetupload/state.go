package assetupload

// State is a step of the upload workflow.
type State string

const (
	StateCreated          State = "created"
	StateChecksumComputed State = "checksum_computed"
	StateReserved         State = "reserved"
	StateTransferring     State = "transferring"
	StateCommitted        State = "committed"
	StateFailed           State = "failed"
)

// Transition is reported to an Observer whenever the workflow changes state.
// Stage and Err are only set for the transition into StateFailed.
type Transition struct {
	From  State
	To    State
	Stage Stage
	Err   error
}

// Observer is notified about workflow transitions.
type Observer func(Transition)

type workflow struct {
	state    State
	observer Observer
}

func newWorkflow(observer Observer) *workflow {
	return &workflow{state: StateCreated, observer: observer}
}

func (w *workflow) moveTo(state State) {
	w.notify(Transition{From: w.state, To: state})
	w.state = state
}

func (w *workflow) fail(stage Stage, err error) error {
	uploadErr := failed(stage, err)
	w.notify(Transition{From: w.state, To: StateFailed, Stage: stage, Err: uploadErr})
	w.state = StateFailed
	return uploadErr
}

func (w *workflow) notify(t Transition) {
	if w.observer != nil {
		w.observer(t)
	}
}
