package sale

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var CancelCmd = &cobra.Command{
	Use:   "cancelar <venda-id>",
	Short: "Cancelar uma venda do dia",
	Long: `Cancela uma venda ainda aberta e devolve o estoque do produto.
Vendas já fechadas no caixa não podem ser canceladas.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		if err := app.Ledger().CancelSale(args[0]); err != nil {
			return fmt.Errorf("erro ao cancelar a venda: %w", err)
		}

		color.Green("✓ Venda cancelada e estoque devolvido.")
		return nil
	},
}
