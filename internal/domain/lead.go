package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Lead is a prospective customer captured from a form or a bulk upload.
type Lead struct {
	ID           int64               `json:"id"`
	CustomerName string              `json:"customer_name"`
	MobileNumber string              `json:"mobile_number"`
	Email        string              `json:"email,omitempty"`
	Product      string              `json:"product,omitempty"`
	City         string              `json:"city,omitempty"`
	Location     string              `json:"location,omitempty"`
	LeadType     string              `json:"lead_type,omitempty"`
	AssignedTo   *string             `json:"assigned_to,omitempty"`
	Status       LeadStatus          `json:"status"`
	LeadDate     *time.Time          `json:"lead_date,omitempty"`
	LoanAmount   decimal.NullDecimal `json:"loan_amount"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewLead creates an open, unassigned lead stamped with the given time.
func NewLead(customerName, mobileNumber string, now time.Time) Lead {
	return Lead{
		CustomerName: strings.TrimSpace(customerName),
		MobileNumber: strings.TrimSpace(mobileNumber),
		Status:       LeadStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// WithAssignee returns a copy assigned to the employee; a blank id unassigns.
func (l Lead) WithAssignee(employeeID string) Lead {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		l.AssignedTo = nil
		return l
	}
	l.AssignedTo = &employeeID
	return l
}

// WithStatus returns a copy carrying the given status.
func (l Lead) WithStatus(status LeadStatus) Lead {
	l.Status = status
	return l
}

// IsAssigned reports whether an employee owns the lead.
func (l Lead) IsAssigned() bool {
	return l.AssignedTo != nil && *l.AssignedTo != ""
}

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Status     *LeadStatus
	AssignedTo *string
}
