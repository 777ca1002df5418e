package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a value from the backend chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, chain, err := setup()
		if err != nil {
			return err
		}

		value, ok := chain.Get(args[0])
		if !ok {
			fmt.Println("(null)")
			return nil
		}
		fmt.Println(value)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(getCmd)
}
