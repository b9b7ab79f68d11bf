package inmemory

import "sync"

type Snapshot struct {
	ValidationTotal   uint64 `json:"validation_total"`
	ValidationSuccess uint64 `json:"validation_success"`
	ValidationFailure uint64 `json:"validation_failure"`
	NodesCompleted    uint64 `json:"nodes_completed"`
	ExchangeSettled   uint64 `json:"exchange_settled"`
	ExchangeCancelled uint64 `json:"exchange_cancelled"`
}

type Recorder struct {
	mu                sync.Mutex
	validationSuccess uint64
	validationFailure uint64
	nodesCompleted    uint64
	exchangeSettled   uint64
	exchangeCancelled uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordTargetValidation(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.validationSuccess++
	} else {
		r.validationFailure++
	}
}

func (r *Recorder) RecordNodeCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodesCompleted++
}

func (r *Recorder) RecordExchangeSettled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchangeSettled++
}

func (r *Recorder) RecordExchangeCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchangeCancelled++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		ValidationTotal:   r.validationSuccess + r.validationFailure,
		ValidationSuccess: r.validationSuccess,
		ValidationFailure: r.validationFailure,
		NodesCompleted:    r.nodesCompleted,
		ExchangeSettled:   r.exchangeSettled,
		ExchangeCancelled: r.exchangeCancelled,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
