// Package check validates an assembled data model and reports every defect
// it finds instead of stopping at the first one.
package check

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Severity grades a finding. Only errors fail a report.
type Severity int

// Severities.
const (
	Warning Severity = iota + 1
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText renders the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding codes.
const (
	CodeDuplicateDimension          = "duplicate_dimension"
	CodeInvalidDimensionName        = "invalid_dimension_name"
	CodeMissingRequiredDimension    = "missing_required_dimension"
	CodeDuplicateGlobalAttribute    = "duplicate_global_attribute"
	CodeEmptyGlobalAttribute        = "empty_global_attribute"
	CodeDuplicateVariable           = "duplicate_variable"
	CodeDuplicateLocalAttribute     = "duplicate_local_attribute"
	CodeEmptyLocalAttribute         = "empty_local_attribute"
	CodeMissingLongName             = "missing_long_name"
	CodeShapeNameMismatch           = "shape_name_mismatch"
	CodeLengthMismatch              = "length_mismatch"
	CodeUnlimitedNotAllowed         = "unlimited_not_allowed"
	CodeTypeMismatch                = "type_mismatch"
	CodeCoordinateRank              = "coordinate_rank"
	CodeMissingAttribute            = "missing_attribute"
	CodeEmptyAttribute              = "empty_attribute"
	CodeInvalidUnits                = "invalid_units"
	CodeNonconformingUnits          = "nonconforming_units"
	CodeInvalidAxis                 = "invalid_axis"
	CodeInvalidCalendar             = "invalid_calendar"
	CodeInvalidPositive             = "invalid_positive"
	CodeNameShapeMismatch           = "name_shape_mismatch"
	CodeMissingData                 = "missing_data"
	CodeUndeclaredDimension         = "undeclared_dimension"
	CodeRankMismatch                = "rank_mismatch"
	CodeDimensionOrder              = "dimension_order"
	CodeDataLengthMismatch          = "data_length_mismatch"
	CodeMissingUnits                = "missing_units"
	CodeEmptyUnits                  = "empty_units"
	CodeNonstandardRank             = "nonstandard_rank"
	CodeCoordinateVariableUnchecked = "coordinate_variable_unchecked"
)

// Finding is one itemized diagnostic.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

// Report accumulates findings.
type Report struct {
	Findings []Finding `json:"findings"`
}

// OK reports whether no error was recorded.
func (r *Report) OK() bool {
	for _, f := range r.Findings {
		if f.Severity == Error {
			return false
		}
	}
	return true
}

// Errors returns the error findings.
func (r *Report) Errors() []Finding { return r.filter(Error) }

// Warnings returns the warning findings.
func (r *Report) Warnings() []Finding { return r.filter(Warning) }

// Count returns the number of findings with the given code and subject. An
// empty subject matches any subject.
func (r *Report) Count(code, subject string) int {
	n := 0
	for _, f := range r.Findings {
		if f.Code == code && (subject == "" || f.Subject == subject) {
			n++
		}
	}
	return n
}

// Merge appends the findings of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Findings = append(r.Findings, other.Findings...)
}

func (r *Report) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// Recorder appends findings to a report and logs each one.
type Recorder struct {
	report *Report
	log    logrus.FieldLogger
}

// NewRecorder starts an empty report.
func NewRecorder(log logrus.FieldLogger) *Recorder {
	return &Recorder{report: &Report{}, log: log}
}

// Report returns the accumulated report.
func (r *Recorder) Report() *Report { return r.report }

// Errorf records an error finding.
func (r *Recorder) Errorf(code, subject, format string, args ...any) {
	r.add(Error, code, subject, fmt.Sprintf(format, args...))
}

// Warnf records a warning finding.
func (r *Recorder) Warnf(code, subject, format string, args ...any) {
	r.add(Warning, code, subject, fmt.Sprintf(format, args...))
}

func (r *Recorder) add(s Severity, code, subject, msg string) {
	r.report.Findings = append(r.report.Findings, Finding{Severity: s, Code: code, Subject: subject, Message: msg})
	entry := r.log.WithFields(logrus.Fields{
		"subject": subject,
		"code":    code,
	})
	if s == Error {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
}
