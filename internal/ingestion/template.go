package ingestion

import (
	"fmt"
	"sort"
	"strings"
)

// Field identifies a lead attribute that a template column feeds.
type Field string

const (
	FieldCustomerName Field = "customer_name"
	FieldMobileNumber Field = "mobile_number"
	FieldEmail        Field = "email"
	FieldProduct      Field = "product"
	FieldCity         Field = "city"
	FieldLocation     Field = "location"
	FieldLeadType     Field = "lead_type"
	FieldAssignedTo   Field = "assigned_to"
	FieldStatus       Field = "status"
	FieldDate         Field = "date"
)

// Column binds a lead field to the exact spreadsheet header that carries it.
type Column struct {
	Field  Field
	Header string
}

// Template is the header contract with an uploading spreadsheet. Header
// names match exactly (case and spacing); a header missing from the file
// makes that field absent for every row.
type Template struct {
	Name    string
	Columns []Column
}

// LeadTemplate is the default layout used by the admin console upload.
var LeadTemplate = Template{
	Name: "leads",
	Columns: []Column{
		{FieldCustomerName, "Customer Name"},
		{FieldMobileNumber, "Mobile Number"},
		{FieldEmail, "Email ID"},
		{FieldProduct, "Product looking"},
		{FieldCity, "Customer City"},
		{FieldAssignedTo, "Assigned to Lead Employee ID"},
		{FieldStatus, "Status"},
		{FieldLeadType, "Type of Lead"},
		{FieldLocation, "Location"},
		{FieldDate, "Date"},
	},
}

// AssignedLeadTemplate is the short-header layout of pre-assigned lead sheets.
var AssignedLeadTemplate = Template{
	Name: "assigned",
	Columns: []Column{
		{FieldCustomerName, "Name"},
		{FieldMobileNumber, "Phone"},
		{FieldEmail, "Email"},
		{FieldProduct, "Product"},
		{FieldCity, "City"},
		{FieldLocation, "Locations"},
		{FieldAssignedTo, "Assigned To"},
		{FieldStatus, "Status"},
		{FieldDate, "Date"},
	},
}

var templates = map[string]Template{
	LeadTemplate.Name:         LeadTemplate,
	AssignedLeadTemplate.Name: AssignedLeadTemplate,
}

// TemplateByName looks up a built-in template. An empty name is an error;
// callers substitute their configured default first.
func TemplateByName(name string) (Template, error) {
	tmpl, ok := templates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Template{}, fmt.Errorf("unknown upload template %q (known: %s)", name, strings.Join(TemplateNames(), ", "))
	}
	return tmpl, nil
}

// TemplateNames lists the built-in template names in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Header returns the header name bound to field, if the template has one.
func (t Template) Header(field Field) (string, bool) {
	for _, col := range t.Columns {
		if col.Field == field {
			return col.Header, true
		}
	}
	return "", false
}

// Headers returns every header in template order.
func (t Template) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Header
	}
	return headers
}

// Value returns the trimmed value for field in row, or "" when either the
// template or the file lacks the column.
func (t Template) Value(row RawRow, field Field) string {
	header, ok := t.Header(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row.Get(header))
}

// MissingRequired lists required headers absent from the file header.
func (t Template) MissingRequired(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, field := range []Field{FieldCustomerName, FieldMobileNumber} {
		name, ok := t.Header(field)
		if !ok {
			continue
		}
		if _, found := present[name]; !found {
			missing = append(missing, name)
		}
	}
	return missing
}
