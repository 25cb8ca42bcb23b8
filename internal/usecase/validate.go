package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store"
	"go.ngs.io/ncmodel/internal/check"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/profile"
)

// ErrCheckFailed is returned when a check fails and the settings ask to
// abort.
var ErrCheckFailed = errors.New("model check failed")

// Result is the outcome of a validation run.
type Result struct {
	Options CheckOptions      `json:"options"`
	Report  *check.Report     `json:"report"`
	CF      *profile.CFResult `json:"cf,omitempty"`
}

// OK reports whether neither the report nor the CF checker found errors.
func (r *Result) OK() bool {
	return r.Report.OK() && (r.CF == nil || r.CF.OK())
}

// Validator runs the consistency check and the selected profile checks.
type Validator struct {
	consistency *check.Checker
	profiles    *profile.Checker
	cf          profile.CFChecker
	scratch     store.ModelWriter
	log         logrus.FieldLogger
}

// NewValidator returns a Validator. cf may be nil when no CF checker is
// installed; scratch writes the NetCDF file the CF checker reads when the
// model has no NetCDF rendition yet.
func NewValidator(consistency *check.Checker, profiles *profile.Checker, cf profile.CFChecker, scratch store.ModelWriter, log logrus.FieldLogger) *Validator {
	return &Validator{
		consistency: consistency,
		profiles:    profiles,
		cf:          cf,
		scratch:     scratch,
		log:         log,
	}
}

// Validate checks m, which was read from or is about to be written to
// name. ncPath names an existing NetCDF file holding m; when empty and the
// CF profile is selected, m is written to a temporary file first.
func (v *Validator) Validate(ctx context.Context, m *domain.Model, name, ncPath string, opts CheckOptions) (*Result, error) {
	log := v.log.WithField("file", name)
	res := &Result{Options: opts, Report: v.consistency.Check(m)}
	if res.Report.OK() {
		log.Info("Data model consistency check passed")
	} else {
		log.Error("Data model consistency check failed, see the errors above")
	}

	if opts.CF {
		cf, err := v.runCF(ctx, m, ncPath)
		if err != nil {
			return nil, err
		}
		res.CF = &cf
		switch {
		case cf.Errors > 0:
			log.WithField("errors", cf.Errors).Error("CF checker found errors, the file is not valid CF")
		case cf.Warnings > 0:
			log.WithField("warnings", cf.Warnings).Warn("CF checker gave warnings but found no errors")
		default:
			log.Info("CF checker found no errors")
		}
	}

	if opts.Default {
		r := v.profiles.CheckDefaults(m)
		summarize(log, "default settings", r)
		res.Report.Merge(r)
	}
	if opts.Station {
		r := v.profiles.CheckStation(m, name)
		summarize(log, "station time series", r)
		res.Report.Merge(r)
	}
	return res, nil
}

func (v *Validator) runCF(ctx context.Context, m *domain.Model, ncPath string) (profile.CFResult, error) {
	if v.cf == nil {
		return profile.CFResult{}, errors.New("no CF checker configured")
	}
	if ncPath != "" {
		return v.cf.Check(ctx, ncPath)
	}

	dir, err := os.MkdirTemp("", "ncmodel-cf-")
	if err != nil {
		return profile.CFResult{}, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "model"+domain.NetCDFSuffix)
	if err := v.scratch.Write(path, m); err != nil {
		return profile.CFResult{}, fmt.Errorf("failed to write NetCDF file for the CF checker: %w", err)
	}
	return v.cf.Check(ctx, path)
}

func summarize(log logrus.FieldLogger, name string, r *check.Report) {
	if r.OK() {
		log.Infof("%s check passed", name)
		return
	}
	log.WithField("errors", len(r.Errors())).Errorf("%s check failed, see the errors above", name)
}
