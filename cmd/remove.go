package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storesync/core/syncer"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a key from every backend in the chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logg, chain, err := setup()
		if err != nil {
			return err
		}

		engine, err := syncer.NewKey(chain, args[0], syncer.KeyOptions{Logger: logg})
		if err != nil {
			return err
		}

		engine.Remove()
		logg.Info("key removed", zap.String("key", args[0]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(removeCmd)
}
