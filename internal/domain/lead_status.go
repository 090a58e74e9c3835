package domain

import (
	"fmt"
	"strings"
)

// LeadStatus is the canonical lead lifecycle state.
type LeadStatus string

const (
	LeadStatusOpen          LeadStatus = "open"
	LeadStatusContacted     LeadStatus = "contacted"
	LeadStatusInterested    LeadStatus = "interested"
	LeadStatusInProcess     LeadStatus = "in_process"
	LeadStatusConverted     LeadStatus = "converted"
	LeadStatusClosed        LeadStatus = "closed"
	LeadStatusNotInterested LeadStatus = "not_interested"
)

// legacyLeadStatusNew is what the generated-leads form used to store.
const legacyLeadStatusNew = "new"

var leadStatuses = []LeadStatus{
	LeadStatusOpen,
	LeadStatusContacted,
	LeadStatusInterested,
	LeadStatusInProcess,
	LeadStatusConverted,
	LeadStatusClosed,
	LeadStatusNotInterested,
}

// LeadStatuses returns the canonical enumeration in lifecycle order.
func LeadStatuses() []LeadStatus {
	return append([]LeadStatus(nil), leadStatuses...)
}

// Valid reports whether the status is part of the canonical enumeration.
func (s LeadStatus) Valid() bool {
	for _, candidate := range leadStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s LeadStatus) String() string {
	return string(s)
}

// NormalizeLeadStatus folds case, spaces and dashes and maps the legacy "new"
// value to open. Empty input yields open. Unknown values are returned folded
// with ok=false so callers can decide whether to reject them.
func NormalizeLeadStatus(raw string) (LeadStatus, bool) {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.NewReplacer(" ", "_", "-", "_").Replace(folded)
	switch folded {
	case "", legacyLeadStatusNew:
		return LeadStatusOpen, true
	}
	status := LeadStatus(folded)
	return status, status.Valid()
}

// ParseLeadStatus is the strict variant of NormalizeLeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	status, ok := NormalizeLeadStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return status, nil
}
