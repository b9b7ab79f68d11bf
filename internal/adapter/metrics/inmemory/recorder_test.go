package inmemory

import "testing"

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordTargetValidation(true)
	r.RecordTargetValidation(true)
	r.RecordTargetValidation(false)
	r.RecordNodeCompleted()
	r.RecordExchangeSettled()
	r.RecordExchangeCancelled()
	r.RecordExchangeCancelled()

	s := r.Snapshot()
	if s.ValidationTotal != 3 {
		t.Fatalf("expected validation total 3, got %d", s.ValidationTotal)
	}
	if s.ValidationSuccess != 2 || s.ValidationFailure != 1 {
		t.Fatalf("expected 2/1 success/failure, got %d/%d", s.ValidationSuccess, s.ValidationFailure)
	}
	if s.NodesCompleted != 1 {
		t.Fatalf("expected 1 node completed, got %d", s.NodesCompleted)
	}
	if s.ExchangeSettled != 1 || s.ExchangeCancelled != 2 {
		t.Fatalf("expected 1/2 settled/cancelled, got %d/%d", s.ExchangeSettled, s.ExchangeCancelled)
	}
}
