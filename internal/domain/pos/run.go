package pos

import (
	"time"

	"github.com/google/uuid"
)

// Run tasks
const (
	TaskInventory = "inventory"
)

// LogLevel follows the numeric levels used by the run log table
type LogLevel int

const (
	LogLevelDebug   LogLevel = 100
	LogLevelInfo    LogLevel = 200
	LogLevelWarning LogLevel = 300
	LogLevelError   LogLevel = 400
)

// Run is one synchronisation run of a sales channel
type Run struct {
	ID             uuid.UUID
	SalesChannelID uuid.UUID
	Task           string
	StartedAt      time.Time
	FinishedAt     *time.Time
	Aborted        bool
	Logs           []*RunLog
}

// NewRun starts a run for channel
func NewRun(salesChannelID uuid.UUID, task string) *Run {
	return &Run{
		ID:             uuid.New(),
		SalesChannelID: salesChannelID,
		Task:           task,
		StartedAt:      time.Now(),
	}
}

// Log appends a log entry, optionally tied to a product
func (r *Run) Log(level LogLevel, message string, product *Product) *RunLog {
	entry := &RunLog{
		ID:        uuid.New(),
		RunID:     r.ID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if product != nil {
		id, version := product.ID, product.VersionID
		entry.ProductID = &id
		entry.ProductVersionID = &version
	}
	r.Logs = append(r.Logs, entry)
	return entry
}

// Finish marks the run as finished
func (r *Run) Finish() {
	now := time.Now()
	r.FinishedAt = &now
}

// Abort marks the run as finished without completing its work
func (r *Run) Abort() {
	r.Aborted = true
	r.Finish()
}

// RunLog is a single log line written during a run
type RunLog struct {
	ID               uuid.UUID
	RunID            uuid.UUID
	Level            LogLevel
	Message          string
	ProductID        *uuid.UUID
	ProductVersionID *uuid.UUID
	CreatedAt        time.Time
}
