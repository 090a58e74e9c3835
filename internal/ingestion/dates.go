package ingestion

import (
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// ParseDayMonthYear rewrites a DD-MM-YYYY date as YYYY-MM-DD, padding single
// digit days and months. Empty input or fewer than three non-empty
// dash-separated parts yields ("", false).
func ParseDayMonthYear(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	parts := strings.Split(value, "-")
	if len(parts) < 3 {
		return "", false
	}
	day, month, year := parts[0], parts[1], parts[2]
	if day == "" || month == "" || year == "" {
		return "", false
	}
	return year + "-" + padTwo(month) + "-" + padTwo(day), true
}

// parseLeadDate turns a DD-MM-YYYY cell into a calendar date. Values that do
// not reformat into a real date are dropped rather than failing the row.
func parseLeadDate(value string) *time.Time {
	iso, ok := ParseDayMonthYear(value)
	if !ok {
		return nil
	}
	date, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return nil
	}
	return &date
}

func padTwo(value string) string {
	if len(value) >= 2 {
		return value
	}
	return strings.Repeat("0", 2-len(value)) + value
}
