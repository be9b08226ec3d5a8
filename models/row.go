package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Row is a storage row addressed by column name. Repositories never depend on
// column order; entities convert themselves to and from a Row.
type Row map[string]any

// TimeLayout is the fixed-width, lexicographically sortable text form used for
// every stored timestamp. All timestamps are stored in UTC.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	ErrInvalidTag      = errors.New("invalid tag")
	ErrNaiveTimestamp  = errors.New("timestamp is not UTC")
	ErrMissingColumn   = errors.New("missing column")
	ErrUnexpectedType  = errors.New("unexpected column type")
	ErrInvalidState    = errors.New("invalid entity state")
	ErrNegativeCounter = errors.New("negative counter")
)

// SerializationError reports a row that could not be converted to or from its
// entity. The row is unusable but other rows are unaffected.
type SerializationError struct {
	Table  string
	ID     string
	Column string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: column %s: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%s %s: column %s: %v", e.Table, e.ID, e.Column, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Now returns the current time in UTC without a monotonic reading, so that it
// compares equal to its own stored form.
func Now() time.Time {
	return time.Now().UTC()
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses text produced by FormatTime. Text without the UTC
// designator is rejected rather than guessed.
func ParseTime(s string) (time.Time, error) {
	if !strings.HasSuffix(s, "Z") {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNaiveTimestamp, s)
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeTags(s string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intValue(n *int) any {
	if n == nil {
		return nil
	}
	return int64(*n)
}

// rowDecoder reads typed columns from a Row and keeps the first failure,
// in the manner of bufio.Scanner.
type rowDecoder struct {
	row   Row
	table string
	id    string
	err   error
}

func newRowDecoder(table string, row Row) *rowDecoder {
	d := &rowDecoder{row: row, table: table}
	d.id = d.str("id")
	return d
}

func (d *rowDecoder) fail(col string, err error) {
	if d.err == nil {
		d.err = &SerializationError{Table: d.table, ID: d.id, Column: col, Err: err}
	}
}

func (d *rowDecoder) value(col string) (any, bool) {
	v, ok := d.row[col]
	if !ok {
		d.fail(col, ErrMissingColumn)
		return nil, false
	}
	return v, true
}

func (d *rowDecoder) text(col string, v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		d.fail(col, fmt.Errorf("%w: %T", ErrUnexpectedType, v))
		return "", false
	}
}

func (d *rowDecoder) str(col string) string {
	v, ok := d.value(col)
	if !ok {
		return ""
	}
	s, _ := d.text(col, v)
	return s
}

func (d *rowDecoder) optStr(col string) *string {
	v, ok := d.value(col)
	if !ok || v == nil {
		return nil
	}
	s, ok := d.text(col, v)
	if !ok {
		return nil
	}
	return &s
}

func (d *rowDecoder) integer(col string, v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		d.fail(col, fmt.Errorf("%w: %T", ErrUnexpectedType, v))
		return 0, false
	}
}

func (d *rowDecoder) int(col string) int {
	v, ok := d.value(col)
	if !ok {
		return 0
	}
	n, _ := d.integer(col, v)
	return int(n)
}

func (d *rowDecoder) counter(col string) int {
	n := d.int(col)
	if n < 0 {
		d.fail(col, ErrNegativeCounter)
	}
	return n
}

func (d *rowDecoder) optInt(col string) *int {
	v, ok := d.value(col)
	if !ok || v == nil {
		return nil
	}
	n, ok := d.integer(col, v)
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}

func (d *rowDecoder) float(col string) float64 {
	v, ok := d.value(col)
	if !ok {
		return 0
	}
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	case int:
		return float64(f)
	default:
		d.fail(col, fmt.Errorf("%w: %T", ErrUnexpectedType, v))
		return 0
	}
}

func (d *rowDecoder) bool(col string) bool {
	v, ok := d.value(col)
	if !ok {
		return false
	}
	n, _ := d.integer(col, v)
	return n != 0
}

func (d *rowDecoder) time(col string) time.Time {
	s := d.str(col)
	if d.err != nil {
		return time.Time{}
	}
	t, err := ParseTime(s)
	if err != nil {
		d.fail(col, err)
	}
	return t
}

func (d *rowDecoder) optTime(col string) *time.Time {
	s := d.optStr(col)
	if s == nil || d.err != nil {
		return nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		d.fail(col, err)
		return nil
	}
	return &t
}

func (d *rowDecoder) tags(col string) []string {
	s := d.str(col)
	if d.err != nil {
		return nil
	}
	tags, err := decodeTags(s)
	if err != nil {
		d.fail(col, err)
	}
	return tags
}

func decodeTag[T ~string](d *rowDecoder, col string, parse func(string) (T, error)) T {
	s := d.str(col)
	if d.err != nil {
		var zero T
		return zero
	}
	v, err := parse(s)
	if err != nil {
		d.fail(col, err)
	}
	return v
}

func encodeTag[T interface {
	~string
	IsValid() bool
}](table, id, col string, v T) (string, error) {
	if !v.IsValid() {
		return "", &SerializationError{Table: table, ID: id, Column: col, Err: fmt.Errorf("%w: %q", ErrInvalidTag, string(v))}
	}
	return string(v), nil
}
