package expense

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var RemoveCmd = &cobra.Command{
	Use:   "remover <despesa-id>",
	Short: "Remover uma despesa",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		if err := app.Expenses().Remove(args[0]); err != nil {
			return fmt.Errorf("erro ao remover a despesa: %w", err)
		}

		color.Green("✓ Despesa removida.")
		return nil
	},
}
