package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storesync/core/syncer"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a value through a sync engine",
	Long: `Writes the value through a key engine so the same equality gating
and mirroring applies as for library consumers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logg, chain, err := setup()
		if err != nil {
			return err
		}

		engine, err := syncer.NewKey(chain, args[0], syncer.KeyOptions{Logger: logg})
		if err != nil {
			return err
		}

		engine.Set(args[1])
		logg.Info("value written", zap.String("key", args[0]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(setCmd)
}
