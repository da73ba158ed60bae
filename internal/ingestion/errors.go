package ingestion

import "fmt"

// FieldParseError reports a record whose numeric or date field could not be
// coerced. The offending field name and raw value are carried so the caller
// can identify the bad input; nothing is ever silently coerced to a sentinel.
type FieldParseError struct {
	Row   int // 1-based data-row number, header excluded
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse field %s value %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// ResolveError reports a dimension resolve-or-create failure (lost uniqueness
// race, constraint violation, storage failure) for one record.
type ResolveError struct {
	Row  int
	Kind string // category | region | customer | product
	Key  string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("row %d: cannot resolve %s %q: %v", e.Row, e.Kind, e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
