package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id" form:"-"`
	CreatedAt time.Time      `json:"created_at" form:"-"`
	UpdatedAt time.Time      `json:"updated_at" form:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty" form:"-"` // Soft Delete support

	// Audit User Tracking
	CreatedBy string `json:"created_by,omitempty" form:"-"`
	UpdatedBy string `json:"updated_by,omitempty" form:"-"`
	DeletedBy string `json:"deleted_by,omitempty" form:"-"`
}

// BeforeCreate always assigns a fresh id; ids sent by clients are ignored.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	base.ID = uuid.New()
	return
}

// IsDeleted reports whether the record has been soft deleted.
func (base *BaseModel) IsDeleted() bool {
	return base.DeletedAt.Valid
}
