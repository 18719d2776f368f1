package model

import "slices"

// Field names shared by the CSV schema and the parameter store API.
const (
	FieldName             = "Name"
	FieldType             = "Type"
	FieldKeyID            = "KeyId"
	FieldLastModifiedDate = "LastModifiedDate"
	FieldLastModifiedUser = "LastModifiedUser"
	FieldDescription      = "Description"
	FieldValue            = "Value"
	FieldAllowedPattern   = "AllowedPattern"
	FieldTier             = "Tier"
	FieldVersion          = "Version"
	FieldLabels           = "Labels"
	FieldPolicies         = "Policies"
	FieldDataType         = "DataType"
)

// ExportColumns is the fixed column set of an exported CSV file, in order.
var ExportColumns = []string{
	FieldName,
	FieldType,
	FieldKeyID,
	FieldLastModifiedDate,
	FieldLastModifiedUser,
	FieldDescription,
	FieldValue,
	FieldAllowedPattern,
	FieldTier,
	FieldVersion,
	FieldLabels,
	FieldPolicies,
	FieldDataType,
}

// Record is a single parameter store entry on its way between the store and
// a CSV file. A field may be absent or present with an empty value; the two
// are distinct for normalization purposes.
type Record struct {
	values map[string]string
	order  []string
}

// NewRecord creates a record holding only the given name.
func NewRecord(name string) *Record {
	r := &Record{values: make(map[string]string)}
	r.Set(FieldName, name)
	return r
}

// Name returns the record's Name field.
func (r *Record) Name() string {
	return r.values[FieldName]
}

// Get returns the value of a field and whether the field is present.
func (r *Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Value returns the value of a field, or "" when the field is absent.
func (r *Record) Value(field string) string {
	return r.values[field]
}

// Has reports whether the field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Set adds or replaces a field.
func (r *Record) Set(field, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[field]; !ok {
		r.order = append(r.order, field)
	}
	r.values[field] = value
}

// Delete removes a field. Deleting an absent field is a no-op.
func (r *Record) Delete(field string) {
	if _, ok := r.values[field]; !ok {
		return
	}
	delete(r.values, field)
	r.order = slices.DeleteFunc(r.order, func(f string) bool { return f == field })
}

// Fields returns the present field names in insertion order.
func (r *Record) Fields() []string {
	return slices.Clone(r.order)
}

// Row renders the record as a CSV row for the given columns. Absent fields
// become empty cells; fields not named in columns are ignored.
func (r *Record) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = r.values[col]
	}
	return row
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		values: make(map[string]string, len(r.values)),
		order:  slices.Clone(r.order),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}
