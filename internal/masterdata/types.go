// Package masterdata converts master records to and from spreadsheet workbooks.
package masterdata

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type names an importable master entity.
type Type string

// Supported master types.
const (
	Banks    Type = "banks"
	Villages Type = "villages"
	MCCs     Type = "mccs"
	MPPs     Type = "mpps"
)

// ErrUnknownType is returned for types outside Types().
var ErrUnknownType = errors.New("masterdata: unknown type")

// Column maps a sheet header to a record field.
type Column struct {
	Header   string  `json:"header"`
	Field    string  `json:"field"`
	Width    float64 `json:"-"`
	Required bool    `json:"required"`
}

// Record is one master row keyed by field name.
type Record map[string]string

var columns = map[Type][]Column{
	Banks: {
		{Header: "Bank Name", Field: "name", Width: 28, Required: true},
		{Header: "Branch", Field: "branch", Width: 24},
		{Header: "IFSC Code", Field: "ifsc_code", Width: 16, Required: true},
		{Header: "Status", Field: "status", Width: 12},
	},
	Villages: {
		{Header: "Village Name", Field: "name", Width: 28, Required: true},
		{Header: "Village Code", Field: "code", Width: 16, Required: true},
		{Header: "MCC Code", Field: "mcc_code", Width: 16},
		{Header: "Status", Field: "status", Width: 12},
	},
	MCCs: {
		{Header: "MCC Code", Field: "code", Width: 16, Required: true},
		{Header: "MCC Name", Field: "name", Width: 28, Required: true},
		{Header: "Status", Field: "status", Width: 12},
	},
	MPPs: {
		{Header: "MPP Code", Field: "code", Width: 16, Required: true},
		{Header: "MPP Name", Field: "name", Width: 28, Required: true},
		{Header: "MCC Code", Field: "mcc_code", Width: 16, Required: true},
		{Header: "Status", Field: "status", Width: 12},
	},
}

var sheetNames = map[Type]string{
	Banks:    "Banks",
	Villages: "Villages",
	MCCs:     "MCC",
	MPPs:     "MPP",
}

// Types lists every supported type in display order.
func Types() []Type {
	return []Type{Banks, Villages, MCCs, MPPs}
}

// ParseType validates a type name from a URL or flag.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := columns[t]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownType, raw)
	}
	return t, nil
}

// Columns returns the sheet layout for t.
func Columns(t Type) []Column {
	return append([]Column(nil), columns[t]...)
}

// Filename is the download name for an export of t taken at now.
func Filename(t Type, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", t, now.Format("2006-01-02"))
}

// TemplateFilename is the download name for the import template of t.
func TemplateFilename(t Type) string {
	return fmt.Sprintf("%s-template.xlsx", t)
}

// StatusCell renders a status flag the way exports write it.
func StatusCell(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

// ParseStatus reads a status cell. Blank cells yield ok=false so callers keep their default.
func ParseStatus(raw string) (active bool, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, false, nil
	case "active", "yes", "true", "1", "y":
		return true, true, nil
	case "inactive", "no", "false", "0", "n":
		return false, true, nil
	}
	return false, false, fmt.Errorf("masterdata: unrecognised status %q", raw)
}
