package leads

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/pkg/validator"
)

// CreateLeadDTO is the generated-lead form payload.
type CreateLeadDTO struct {
	CustomerName string          `json:"customerName" validate:"required,min=2,max=120"`
	MobileNumber string          `json:"mobileNumber" validate:"required,mobile"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Product      string          `json:"product" validate:"required"`
	City         string          `json:"city"`
	Location     string          `json:"location"`
	LeadType     string          `json:"leadType"`
	AssignedTo   string          `json:"assignedTo"`
	LoanAmount   decimal.Decimal `json:"loanAmount"`
}

func (d *CreateLeadDTO) Normalize() {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.MobileNumber = strings.TrimSpace(d.MobileNumber)
	d.Email = strings.TrimSpace(d.Email)
	d.Product = strings.TrimSpace(d.Product)
	d.City = strings.TrimSpace(d.City)
	d.Location = strings.TrimSpace(d.Location)
	d.LeadType = strings.TrimSpace(d.LeadType)
	d.AssignedTo = strings.TrimSpace(d.AssignedTo)
}

// Ok normalizes the payload and validates it.
func (d *CreateLeadDTO) Ok() validator.ValidationResult {
	d.Normalize()
	result := validator.Struct(d)
	if !d.LoanAmount.IsPositive() {
		result.IsValid = false
		result.Errors = append(result.Errors, validator.ValidationError{
			Field:   "loanAmount",
			Message: "must be greater than 0",
			Value:   d.LoanAmount.String(),
		})
	}
	return result
}

// ToLead builds an open lead from a validated payload.
func (d CreateLeadDTO) ToLead(now time.Time) domain.Lead {
	lead := domain.NewLead(d.CustomerName, d.MobileNumber, now).WithAssignee(d.AssignedTo)
	lead.Email = d.Email
	lead.Product = d.Product
	lead.City = d.City
	lead.Location = d.Location
	lead.LeadType = d.LeadType
	lead.LoanAmount = decimal.NewNullDecimal(d.LoanAmount.Round(2))
	return lead
}

type UpdateStatusDTO struct {
	Status string `json:"status" validate:"required"`
}

type ReassignDTO struct {
	AssignedTo string `json:"assignedTo"`
}

type AssignLeadsDTO struct {
	LeadIDs    []int64 `json:"leadIds" validate:"min=1,dive,gt=0"`
	EmployeeID string  `json:"employeeId" validate:"required"`
}

func (d *AssignLeadsDTO) Ok() validator.ValidationResult {
	d.EmployeeID = strings.TrimSpace(d.EmployeeID)
	return validator.Struct(d)
}
