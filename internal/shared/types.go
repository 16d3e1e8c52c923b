package shared

// Asynq task types.
const (
	TypeRunImport        = "import:run"
	TypeReapStuckImports = "import:reap_stuck"
)

// Asynq queue names with their worker priorities.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
