// Package domain contains persistence models for invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaidStatus represents invoice payment lifecycle states.
type PaidStatus string

const (
	PaidStatusUnpaid             PaidStatus = "unpaid"
	PaidStatusPaid               PaidStatus = "paid"
	PaidStatusExportedForPayment PaidStatus = "exported_for_payment"
	PaidStatusNotForPayment      PaidStatus = "not_for_payment"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s PaidStatus) Valid() bool {
	switch s {
	case PaidStatusUnpaid, PaidStatusPaid, PaidStatusExportedForPayment, PaidStatusNotForPayment:
		return true
	default:
		return false
	}
}

// Invoice represents a supplier invoice. TotalAmount is kept in major
// currency units; conversion to minor units happens only at export time.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:text;not null" json:"invoice_number"`
	SupplierID    snowflake.ID    `gorm:"not null;index" json:"supplier_id"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_amount"`
	PaidStatus    PaidStatus      `gorm:"type:text;not null;default:'unpaid';index" json:"paid_status"`

	Allocations []Allocation `gorm:"foreignKey:InvoiceID" json:"allocations,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Allocation assigns part of an invoice's amount to a project.
type Allocation struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ProjectID   snowflake.ID    `gorm:"not null" json:"project_id"`
	ProjectName string          `gorm:"type:text;not null" json:"project_name"`
	Sum         decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"sum"`
}

// TableName sets the database table name.
func (Allocation) TableName() string { return "invoice_allocations" }
