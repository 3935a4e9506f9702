package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/prbatch/internal/batch"
	"github.com/dshills/prbatch/internal/output"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model information",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models with known batch pricing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.WriteRates(cmd.OutOrStdout(), batch.KnownModels())
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
}
