package ports

type EngineMetrics interface {
	RecordTargetValidation(success bool)
	RecordNodeCompleted()
	RecordExchangeSettled()
	RecordExchangeCancelled()
}
