package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/usecase"
)

var sampleFlags struct {
	from string
	req  usecase.SampleRequest
}

func init() {
	RootCmd.AddCommand(sampleCmd)

	f := sampleCmd.Flags()
	f.StringVar(&sampleFlags.from, "from", "model", "input format: model or nc")
	f.StringVar(&sampleFlags.req.Variable, "var", "", "data variable to sample")
	f.Float64Var(&sampleFlags.req.Latitude, "lat", 0, "latitude of the sample point")
	f.Float64Var(&sampleFlags.req.Longitude, "lon", 0, "longitude of the sample point")
	f.IntVar(&sampleFlags.req.Time, "time", 0, "time index")
	f.IntVar(&sampleFlags.req.Height, "height", 0, "height index")
	_ = sampleCmd.MarkFlagRequired("var")
	_ = sampleCmd.MarkFlagRequired("lat")
	_ = sampleCmd.MarkFlagRequired("lon")
}

// sampleCmd interpolates a data variable at a horizontal position.
var sampleCmd = &cobra.Command{
	Use:   "sample <base>",
	Short: "Interpolate a data variable at a latitude and longitude",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := usecase.ParseFormat(sampleFlags.from)
		if err != nil {
			return err
		}
		st, ok := App.Store(from)
		if !ok {
			return fmt.Errorf("cannot sample format %q", from)
		}
		m, err := st.Read(args[0])
		if err != nil {
			return err
		}
		v, err := App.Sampler.Sample(m, sampleFlags.req)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}
