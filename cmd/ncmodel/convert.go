package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/adapter/store/csv"
	"go.ngs.io/ncmodel/internal/usecase"
)

var convertFlags struct {
	from, to  string
	station   bool
	check     string
	header    bool
	height    float64
	latitude  float64
	longitude float64
	id        int32
	timeUnits string
	timeStep  float64
}

func init() {
	RootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.StringVar(&convertFlags.from, "from", "model", "input format: model, nc or csv")
	f.StringVar(&convertFlags.to, "to", "nc", "output format: model or nc")
	f.BoolVar(&convertFlags.station, "station", false, "write a station time series (appends _time_series to the output name)")
	f.StringVar(&convertFlags.check, "check", "", "profile checks: '', cf, default, station, cf+default or cf+default+station")
	f.BoolVar(&convertFlags.header, "header", true, "csv: the first row names the variables")
	f.Float64Var(&convertFlags.height, "station-height", 0, "csv: station elevation")
	f.Float64Var(&convertFlags.latitude, "station-lat", 0, "csv: station latitude")
	f.Float64Var(&convertFlags.longitude, "station-lon", 0, "csv: station longitude")
	f.Int32Var(&convertFlags.id, "station-id", 0, "csv: station id")
	f.StringVar(&convertFlags.timeUnits, "time-units", "hours since 1970-01-01", "csv: units and reference date of the first row")
	f.Float64Var(&convertFlags.timeStep, "time-step", 1, "csv: time between rows, in time-units")
}

// convertCmd converts a model between formats.
var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a data model between formats",
	Long: "Read a model in one format, run the consistency check and the selected " +
		"profile checks, and write it in another format. Input and output names " +
		"are base names without suffixes for the model format.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := usecase.ParseFormat(convertFlags.from)
		if err != nil {
			return err
		}
		to, err := usecase.ParseFormat(convertFlags.to)
		if err != nil {
			return err
		}
		opts, err := usecase.ParseCheckOptions(convertFlags.check)
		if err != nil {
			return err
		}

		station := csv.Station{
			Height:    convertFlags.height,
			Latitude:  convertFlags.latitude,
			Longitude: convertFlags.longitude,
			ID:        convertFlags.id,
			TimeUnits: convertFlags.timeUnits,
			TimeStep:  convertFlags.timeStep,
		}
		res, out, err := App.Converter(station, convertFlags.header).Convert(context.Background(), usecase.ConvertRequest{
			From:    from,
			To:      to,
			In:      args[0],
			Out:     args[1],
			Station: convertFlags.station || from == usecase.FormatCSV,
			Check:   opts,
		})
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (check passed: %t)\n", out, res.OK())
		return nil
	},
}
