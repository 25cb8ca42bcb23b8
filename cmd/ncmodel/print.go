package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/usecase"
)

var printFlags struct {
	from   string
	coords bool
	vars   bool
}

func init() {
	RootCmd.AddCommand(printCmd)

	printCmd.Flags().StringVar(&printFlags.from, "from", "model", "input format: model or nc")
	printCmd.Flags().BoolVar(&printFlags.coords, "coords", false, "also print coordinate variable values")
	printCmd.Flags().BoolVar(&printFlags.vars, "vars", false, "also print data variable values")
}

// printCmd logs the content of a model.
var printCmd = &cobra.Command{
	Use:   "print <base>",
	Short: "Print the dimensions, attributes and variables of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := usecase.ParseFormat(printFlags.from)
		if err != nil {
			return err
		}
		st, ok := App.Store(from)
		if !ok {
			return fmt.Errorf("cannot print format %q", from)
		}
		m, err := st.Read(args[0])
		if err != nil {
			return err
		}

		usecase.Describe(m, App.Log)
		if printFlags.coords || printFlags.vars {
			usecase.DescribeValues(m, App.Log, func(v *domain.Variable) bool {
				isData := App.Classifier.Classify(v.Name) == coord.Data
				return (isData && printFlags.vars) || (!isData && printFlags.coords)
			})
		}
		return nil
	},
}
