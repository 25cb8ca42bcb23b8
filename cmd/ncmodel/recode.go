package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/usecase"
)

var recodeFlags struct {
	name     string
	min, max float64
	bad      []float64
}

func init() {
	RootCmd.AddCommand(recodeCmd)

	f := recodeCmd.Flags()
	f.StringVar(&recodeFlags.name, "var", "", "data variable to recode")
	f.Float64Var(&recodeFlags.min, "min", 0, "smallest value to recode (default: data minimum)")
	f.Float64Var(&recodeFlags.max, "max", 0, "largest value to recode (default: data maximum)")
	f.Float64SliceVar(&recodeFlags.bad, "bad", nil, "values to skip, comma separated")
	_ = recodeCmd.MarkFlagRequired("var")
}

// recodeCmd turns a categorical variable into indicator variables.
var recodeCmd = &cobra.Command{
	Use:   "recode <in> <out>",
	Short: "Recode a categorical data variable as 0/1 byte variables",
	Long: "Read the model <in>, replace its data variables with one byte variable " +
		"per integer value of --var between --min and --max, skipping --bad, and " +
		"write the result as the model <out>.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := App.Models.Read(args[0])
		if err != nil {
			return err
		}
		v, ok := m.Variable(recodeFlags.name)
		if !ok || v.Data == nil {
			return fmt.Errorf("model %s has no data for variable %q", args[0], recodeFlags.name)
		}

		lo, hi := recodeFlags.min, recodeFlags.max
		if !cmd.Flags().Changed("min") || !cmd.Flags().Changed("max") {
			dlo, dhi, err := usecase.DataRange(v)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min") {
				lo = dlo
			}
			if !cmd.Flags().Changed("max") {
				hi = dhi
			}
		}

		if err := App.Recoder.RecodeBool(m, recodeFlags.name, lo, hi, recodeFlags.bad); err != nil {
			return err
		}
		if err := App.Models.Write(args[1], m); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[1])
		return nil
	},
}
