package domain

import "time"

// Employee owns assigned leads. EmployeeID is the business key used in
// uploads (e.g. EMP001).
type Employee struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LeadWithAssignee decorates a lead with the assigned employee's display name.
type LeadWithAssignee struct {
	Lead
	AssigneeName string `json:"assignee_name,omitempty"`
}
