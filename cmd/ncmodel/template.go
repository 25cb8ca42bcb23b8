package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/adapter/store/ncml"
	"go.ngs.io/ncmodel/internal/adapter/store/npy"
	"go.ngs.io/ncmodel/internal/domain"
)

var templateFlags struct {
	station bool
}

func init() {
	RootCmd.AddCommand(templateCmd)

	templateCmd.Flags().BoolVar(&templateFlags.station, "station", false, "write the station time-series schema")
}

// templateCmd writes a schema file to be completed by hand.
var templateCmd = &cobra.Command{
	Use:   "template <base>",
	Short: "Write a default NCML schema",
	Long: "Write <base>__ncml.xml with the default dimensions, global attributes " +
		"and coordinate variables. When <base>__data.npy exists the axis lengths " +
		"and one placeholder per data variable are taken from it.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		s := App.Settings
		m := ncml.Template(s)

		raw, err := npy.ReadFile(base + domain.DataSuffix)
		switch {
		case err == nil:
			if err := ncml.FillFromArray(m, raw, s.Axis); err != nil {
				return err
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if templateFlags.station {
			if err := ncml.ApplyStation(m, s.Axis); err != nil {
				return err
			}
			base = domain.StationBase(base)
		}

		path := base + domain.NcmlSuffix
		if err := ncml.Write(path, m); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}
