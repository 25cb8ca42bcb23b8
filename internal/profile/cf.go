// Package profile checks a model or NetCDF file against convention profiles:
// the CF conventions via an external checker, the installation defaults, and
// the time-series station profile.
package profile

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/domain"
)

// CFResult holds the counters reported by a CF checker.
type CFResult struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Signed folds the counters into one number: the error count when there
// are errors, otherwise the negated warning count. Zero means clean.
func (r CFResult) Signed() int {
	if r.Errors > 0 {
		return r.Errors
	}
	return -r.Warnings
}

// OK reports whether no errors were found.
func (r CFResult) OK() bool { return r.Errors == 0 }

// CFChecker runs a CF conformance check on a NetCDF file.
type CFChecker interface {
	Check(ctx context.Context, ncPath string) (CFResult, error)
}

// ExecCFChecker runs an external cfchecks-compatible program.
type ExecCFChecker struct {
	command string
	args    []string
	log     logrus.FieldLogger
}

// NewExecCFChecker returns a checker for the configured command.
func NewExecCFChecker(s config.CFCheckerSettings, log logrus.FieldLogger) *ExecCFChecker {
	return &ExecCFChecker{command: s.Command, args: s.Args, log: log}
}

var (
	errorsLine   = regexp.MustCompile(`ERRORS detected:\s*(\d+)`)
	warningsLine = regexp.MustCompile(`WARNINGS given:\s*(\d+)`)
)

// Check runs the program on ncPath. A non-zero exit status is expected when
// the file has errors; only a missing program or unparseable output fail.
func (e *ExecCFChecker) Check(ctx context.Context, ncPath string) (CFResult, error) {
	ncPath = domain.NetCDFPath(ncPath)
	args := append(append([]string(nil), e.args...), ncPath)

	//nolint:gosec // G204: command comes from installation settings.
	cmd := exec.CommandContext(ctx, e.command, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return CFResult{}, fmt.Errorf("failed to run %s on %s: %w", e.command, ncPath, runErr)
	}

	res, err := ParseCFOutput(stdout.String())
	if err != nil {
		if runErr != nil {
			err = fmt.Errorf("%w (%v: %s)", err, runErr, strings.TrimSpace(stderr.String()))
		}
		return CFResult{}, fmt.Errorf("failed to read %s output for %s: %w", e.command, ncPath, err)
	}

	e.log.WithFields(logrus.Fields{
		"file":     ncPath,
		"errors":   res.Errors,
		"warnings": res.Warnings,
	}).Info("CF check finished")
	return res, nil
}

// ParseCFOutput extracts the error and warning counters from checker output.
func ParseCFOutput(out string) (CFResult, error) {
	var res CFResult
	var err error
	if res.Errors, err = counter(errorsLine, "ERRORS detected", out); err != nil {
		return CFResult{}, err
	}
	if res.Warnings, err = counter(warningsLine, "WARNINGS given", out); err != nil {
		return CFResult{}, err
	}
	return res, nil
}

func counter(re *regexp.Regexp, label, out string) (int, error) {
	m := re.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("%w: no %q line in checker output", domain.ErrMalformedInput, label)
	}
	return strconv.Atoi(m[1])
}
