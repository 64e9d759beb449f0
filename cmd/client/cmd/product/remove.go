package product

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var RemoveCmd = &cobra.Command{
	Use:   "remover <produto-id>",
	Short: "Remover um produto do catálogo",
	Long: `Remove um produto do catálogo. As vendas antigas dele continuam no
histórico com o nome que tinham na hora da venda.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		if err := app.Catalog().DeleteProduct(args[0]); err != nil {
			return fmt.Errorf("erro ao remover o produto: %w", err)
		}

		color.Green("✓ Produto removido.")
		return nil
	},
}
