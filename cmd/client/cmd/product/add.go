// cmd/client/cmd/product/add.go
package product

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var (
	addPrice    string
	addCost     string
	addStock    int64
	addCategory string
)

var AddCmd = &cobra.Command{
	Use:   "adicionar <nome>",
	Short: "Cadastrar um produto",
	Long: `Cadastra um produto no catálogo. Informe --estoque para controlar a
quantidade; sem o flag o produto vende sem limite de estoque.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		price, err := parseReal(addPrice)
		if err != nil {
			return fmt.Errorf("preço inválido: %q", addPrice)
		}
		cost, err := parseReal(addCost)
		if err != nil {
			return fmt.Errorf("custo inválido: %q", addCost)
		}

		var stock *int64
		if cmd.Flags().Changed("estoque") {
			stock = &addStock
		}

		p, err := app.Catalog().CreateProduct(args[0], price, cost, stock, addCategory)
		if err != nil {
			return fmt.Errorf("erro ao cadastrar o produto: %w", err)
		}

		color.Green("✓ Produto cadastrado!")
		fmt.Printf("  %s — %s (ID: %s)\n", p.Name, formatReal(p.Price), p.ID)
		if p.Stock != nil {
			fmt.Printf("  Estoque inicial: %d\n", *p.Stock)
		}

		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addPrice, "preco", "p", "0", "preço de venda")
	AddCmd.Flags().StringVar(&addCost, "custo", "0", "custo unitário")
	AddCmd.Flags().Int64VarP(&addStock, "estoque", "e", 0, "estoque inicial (omita para não controlar)")
	AddCmd.Flags().StringVar(&addCategory, "categoria", "", "categoria do produto")
}
