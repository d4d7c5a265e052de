package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldMode          = "mode"
	FieldStatusChange  = "status_change"
	FieldProgress      = "progress"
	FieldPrevProgress  = "previous_progress"
	FieldUnlocked      = "unlocked"
	FieldNewlyUnlocked = "newly_unlocked"
	FieldEvents        = "history_events"
	FieldTransactions  = "transactions"
	FieldTransactionID = "transaction_id"
	FieldDirection     = "direction"
	FieldAmount        = "amount"
	FieldReferenceTime = "reference_time"
	FieldDuration      = "duration_ms"
	FieldMessageID     = "message_id"
	FieldQueue         = "queue"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentCLI        = "cli"
	ComponentModes      = "modes"
	ComponentReconciler = "reconciler"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
	ComponentIntake     = "intake"
)

// Operations defines standard operation names
const (
	OpRefresh  = "refresh"
	OpEvaluate = "evaluate"
	OpRead     = "read"
	OpAppend   = "append"
	OpSweep    = "sweep"
	OpConsume  = "consume"
	OpPublish  = "publish"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the user the operation runs for
func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithMode adds mode fields
func (f LogFields) WithMode(mode string, unlocked bool, progress int) LogFields {
	f[FieldMode] = mode
	f[FieldUnlocked] = unlocked
	f[FieldProgress] = progress
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
