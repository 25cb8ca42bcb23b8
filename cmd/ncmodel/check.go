package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/usecase"
)

var checkFlags struct {
	from string
	opts string
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.from, "from", "model", "input format: model or nc")
	checkCmd.Flags().StringVar(&checkFlags.opts, "opts", "", "profile checks: '', cf, default, station, cf+default or cf+default+station")
}

// checkCmd checks a model without converting it.
var checkCmd = &cobra.Command{
	Use:   "check <base>",
	Short: "Check a data model or NetCDF file",
	Long: "Run the consistency check and the selected profile checks. The CF " +
		"profile needs the cfchecks program configured in the settings.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := usecase.ParseFormat(checkFlags.from)
		if err != nil {
			return err
		}
		opts, err := usecase.ParseCheckOptions(checkFlags.opts)
		if err != nil {
			return err
		}
		st, ok := App.Store(from)
		if !ok {
			return fmt.Errorf("cannot check format %q", from)
		}

		m, err := st.Read(args[0])
		if err != nil {
			return err
		}
		var ncPath string
		if from == usecase.FormatNetCDF {
			ncPath = args[0]
		}
		res, err := App.Validator.Validate(context.Background(), m, args[0], ncPath, opts)
		if err != nil {
			return err
		}
		fmt.Printf("%d errors, %d warnings\n", len(res.Report.Errors()), len(res.Report.Warnings()))
		if !res.OK() {
			return fmt.Errorf("%s: %w", args[0], usecase.ErrCheckFailed)
		}
		return nil
	},
}
