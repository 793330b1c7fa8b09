package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// InventorySnapshotModel stores the last stock value exchanged with iZettle per product.
type InventorySnapshotModel struct {
	SalesChannelID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Stock          int       `gorm:"not null;default:0"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventorySnapshotModel) TableName() string {
	return "pos_inventory_snapshots"
}

// RunModel is the persistence model for a synchronisation run.
type RunModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SalesChannelID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Task           string     `gorm:"type:varchar(32);not null"`
	StartedAt      time.Time  `gorm:"not null"`
	FinishedAt     *time.Time
	Aborted        bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RunModel) TableName() string {
	return "pos_runs"
}

// RunModelFromDomain creates a persistence model from a domain Run.
func RunModelFromDomain(r *pos.Run) *RunModel {
	return &RunModel{
		ID:             r.ID,
		SalesChannelID: r.SalesChannelID,
		Task:           r.Task,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Aborted:        r.Aborted,
	}
}

// RunLogModel is the persistence model for a run log line.
type RunLogModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RunID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Level            int        `gorm:"not null"`
	Message          string     `gorm:"type:text;not null"`
	ProductID        *uuid.UUID `gorm:"type:uuid;index"`
	ProductVersionID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RunLogModel) TableName() string {
	return "pos_run_logs"
}

// RunLogModelFromDomain creates a persistence model from a domain RunLog.
func RunLogModelFromDomain(l *pos.RunLog) *RunLogModel {
	return &RunLogModel{
		ID:               l.ID,
		RunID:            l.RunID,
		Level:            int(l.Level),
		Message:          l.Message,
		ProductID:        l.ProductID,
		ProductVersionID: l.ProductVersionID,
		CreatedAt:        l.CreatedAt,
	}
}

// ToDomain converts the persistence model to a domain RunLog.
func (m *RunLogModel) ToDomain() *pos.RunLog {
	return &pos.RunLog{
		ID:               m.ID,
		RunID:            m.RunID,
		Level:            pos.LogLevel(m.Level),
		Message:          m.Message,
		ProductID:        m.ProductID,
		ProductVersionID: m.ProductVersionID,
		CreatedAt:        m.CreatedAt,
	}
}
