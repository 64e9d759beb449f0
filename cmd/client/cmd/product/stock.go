// cmd/client/cmd/product/stock.go
package product

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var clearStock bool

var StockCmd = &cobra.Command{
	Use:   "estoque <produto-id> [quantidade]",
	Short: "Ajustar o estoque de um produto",
	Long: `Define a quantidade em estoque de um produto. Com --sem-controle o
produto passa a vender sem limite de estoque.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		var stock *int64
		if !clearStock {
			if len(args) < 2 {
				return fmt.Errorf("informe a quantidade ou use --sem-controle")
			}
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("quantidade inválida: %q", args[1])
			}
			stock = &n
		}

		if err := app.Catalog().SetStock(args[0], stock); err != nil {
			return fmt.Errorf("erro ao ajustar o estoque: %w", err)
		}

		if stock == nil {
			color.Green("✓ Produto sem controle de estoque.")
		} else {
			color.Green("✓ Estoque ajustado para %d.", *stock)
		}
		return nil
	},
}

func init() {
	StockCmd.Flags().BoolVar(&clearStock, "sem-controle", false, "parar de controlar o estoque deste produto")
}
