package ingestion

import (
	"time"

	"github.com/rpattn/leadcrm/internal/domain"
)

// ReasonMissingRequiredFields is reported for rows without a customer name
// or mobile number.
const ReasonMissingRequiredFields = "missing required fields"

// Candidate is one data row on its way to the store: either a normalized
// lead, or a row already rejected with Reason.
type Candidate struct {
	Row    RawRow
	Lead   domain.Lead
	Reason string
}

// Rejected reports whether the row failed before reaching the store.
func (c Candidate) Rejected() bool {
	return c.Reason != ""
}

// Normalize maps a raw row onto a lead using the template. Values are
// trimmed; only customer name and mobile number are validated. The creation
// timestamp is the ingestion time, never a file column.
func Normalize(row RawRow, tmpl Template, now time.Time) Candidate {
	name := tmpl.Value(row, FieldCustomerName)
	mobile := tmpl.Value(row, FieldMobileNumber)
	if name == "" || mobile == "" {
		return Candidate{Row: row, Reason: ReasonMissingRequiredFields}
	}

	status, _ := domain.NormalizeLeadStatus(tmpl.Value(row, FieldStatus))

	lead := domain.NewLead(name, mobile, now).
		WithAssignee(tmpl.Value(row, FieldAssignedTo)).
		WithStatus(status)
	lead.Email = tmpl.Value(row, FieldEmail)
	lead.Product = tmpl.Value(row, FieldProduct)
	lead.City = tmpl.Value(row, FieldCity)
	lead.Location = tmpl.Value(row, FieldLocation)
	lead.LeadType = tmpl.Value(row, FieldLeadType)
	lead.LeadDate = parseLeadDate(tmpl.Value(row, FieldDate))

	return Candidate{Row: row, Lead: lead}
}
