package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// stepsCmd lists the available processor types.
var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List available recipe step types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range newRegistry().Types() {
			fmt.Println(name)
		}
	},
}

func init() {
	RootCmd.AddCommand(stepsCmd)
}
