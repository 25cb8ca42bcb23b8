package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scaleFlags struct {
	name   string
	factor float64
}

func init() {
	RootCmd.AddCommand(scaleCmd)

	scaleCmd.Flags().StringVar(&scaleFlags.name, "var", "", "data variable to scale")
	scaleCmd.Flags().Float64Var(&scaleFlags.factor, "factor", 1, "factor to multiply the values by")
	_ = scaleCmd.MarkFlagRequired("var")
	_ = scaleCmd.MarkFlagRequired("factor")
}

// scaleCmd multiplies one data variable by a constant.
var scaleCmd = &cobra.Command{
	Use:   "scale <in> <out>",
	Short: "Multiply a data variable by a factor, keeping its type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := App.Models.Read(args[0])
		if err != nil {
			return err
		}
		if err := App.Recoder.Scale(m, scaleFlags.name, scaleFlags.factor); err != nil {
			return err
		}
		if err := App.Models.Write(args[1], m); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[1])
		return nil
	},
}
