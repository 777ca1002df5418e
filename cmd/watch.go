package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storesync/core/syncer"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <key>",
	Short: "Follow a key and print every change",
	Long: `Binds a listening key engine to the backend chain and prints the
current value whenever it changes, until interrupted. With the file
backend this picks up edits made by other processes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logg, chain, err := setup()
		if err != nil {
			return err
		}

		engine, err := syncer.NewKey(chain, args[0], syncer.KeyOptions{
			Listen: true,
			Logger: logg,
		})
		if err != nil {
			return err
		}

		cancel := engine.Subscribe(func(v syncer.Value) {
			if !v.Valid {
				fmt.Printf("%s = (null)\n", args[0])
				return
			}
			fmt.Printf("%s = %s\n", args[0], v.String)
		})
		defer cancel()

		logg.Info("watching", zap.String("key", args[0]))

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("stopping watch")
		engine.Listener().Off()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}
