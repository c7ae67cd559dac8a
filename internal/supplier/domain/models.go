// Package domain contains persistence models for suppliers.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Supplier is a payee the company settles invoices with.
type Supplier struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"type:text;not null" json:"name"`

	// Tax identification candidates. The clearing house requires one
	// resolvable id; these are tried in the order businessTax, idNumber,
	// taxId.
	BusinessTax string `gorm:"type:text" json:"business_tax,omitempty"`
	IDNumber    string `gorm:"type:text" json:"id_number,omitempty"`
	TaxID       string `gorm:"type:text" json:"tax_id,omitempty"`

	BankName      string `gorm:"type:text" json:"bank_name,omitempty"`
	BranchNumber  string `gorm:"type:text" json:"branch_number,omitempty"`
	AccountNumber string `gorm:"type:text" json:"account_number,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }

// HasBankDetails reports whether any bank detail is registered at all.
// Partial details still count as present; the per-field validation rules
// reject them individually.
func (s Supplier) HasBankDetails() bool {
	return strings.TrimSpace(s.BankName) != "" ||
		strings.TrimSpace(s.BranchNumber) != "" ||
		strings.TrimSpace(s.AccountNumber) != ""
}
