// Package app wires settings into the stores, checkers and use cases shared
// by the commands.
package app

import (
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store"
	"go.ngs.io/ncmodel/internal/adapter/store/csv"
	"go.ngs.io/ncmodel/internal/adapter/store/modelfile"
	"go.ngs.io/ncmodel/internal/adapter/store/ncfile"
	"go.ngs.io/ncmodel/internal/check"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/dtype"
	"go.ngs.io/ncmodel/internal/profile"
	"go.ngs.io/ncmodel/internal/usecase"
)

// App holds the components built from one Settings value.
type App struct {
	Settings   config.Settings
	Classifier *coord.Classifier
	Registry   *dtype.Registry
	Models     *modelfile.Store
	NetCDF     *ncfile.Store
	CSV        *csv.Reader
	Validator  *usecase.Validator
	Recoder    *usecase.Recoder
	Sampler    *usecase.Sampler
	Log        logrus.FieldLogger
}

// New builds the components. The registry accepts the legacy "Byte" alias
// used by older schema files.
func New(s config.Settings, log logrus.FieldLogger) (*App, error) {
	registry, err := dtype.NewRegistry(dtype.WithLegacyByteAlias())
	if err != nil {
		return nil, err
	}
	classifier := coord.NewClassifier(coord.AliasesFromSettings(s.Aliases))

	nc := ncfile.NewStore(s, classifier, registry, log)
	validator := usecase.NewValidator(
		check.New(s, classifier, registry, check.NewUnitTable(), log),
		profile.New(s, classifier, registry, log),
		profile.NewExecCFChecker(s.CFChecker, log),
		nc,
		log,
	)

	return &App{
		Settings:   s,
		Classifier: classifier,
		Registry:   registry,
		Models:     modelfile.NewStore(classifier, registry, log),
		NetCDF:     nc,
		CSV:        csv.NewReader(s.Nodata, registry, log),
		Validator:  validator,
		Recoder:    usecase.NewRecoder(classifier, log),
		Sampler:    usecase.NewSampler(classifier),
		Log:        log,
	}, nil
}

// Store returns the store for a readable and writable format.
func (a *App) Store(f usecase.Format) (store.ModelStore, bool) {
	switch f {
	case usecase.FormatModel:
		return a.Models, true
	case usecase.FormatNetCDF:
		return a.NetCDF, true
	default:
		return nil, false
	}
}

// Converter returns a converter reading model and NetCDF files, plus CSV
// tables as stations described by st.
func (a *App) Converter(st csv.Station, header bool) *usecase.Converter {
	readers := map[usecase.Format]store.ModelReader{
		usecase.FormatModel:  a.Models,
		usecase.FormatNetCDF: a.NetCDF,
		usecase.FormatCSV:    a.CSV.StationSource(a.Settings, st, header),
	}
	writers := map[usecase.Format]store.ModelWriter{
		usecase.FormatModel:  a.Models,
		usecase.FormatNetCDF: a.NetCDF,
	}
	return usecase.NewConverter(readers, writers, a.Validator, bool(a.Settings.Data.Check), a.Log)
}
