// cmd/client/cmd/product/list.go
package product

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
	"contafeira/internal/domain/catalog"
)

var lowOnly bool

var ListCmd = &cobra.Command{
	Use:   "listar",
	Short: "Listar os produtos",
	Long: `Lista o catálogo com preço, custo e estoque. Com --acabando mostra
apenas os produtos com estoque no limite ou abaixo.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		var products []catalog.Product
		var err error
		if lowOnly {
			products, err = app.Catalog().LowStock(app.LowStockThreshold())
		} else {
			products, err = app.Catalog().Products()
		}
		if err != nil {
			return fmt.Errorf("erro ao listar os produtos: %w", err)
		}

		if len(products) == 0 {
			fmt.Println("Nenhum produto encontrado.")
			return nil
		}

		threshold := app.LowStockThreshold()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Produto\tPreço\tCusto\tEstoque\tCategoria\tID\t\n")
		for _, p := range products {
			stock := "-"
			if p.Stock != nil {
				stock = strconv.FormatInt(*p.Stock, 10)
				if *p.Stock <= threshold {
					stock = color.YellowString(stock + " ⚠")
				}
			}
			category := p.Category
			if category == "" {
				category = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				p.Name, formatReal(p.Price), formatReal(p.Cost), stock, category, p.ID)
		}
		w.Flush()

		return nil
	},
}

func init() {
	ListCmd.Flags().BoolVar(&lowOnly, "acabando", false, "apenas produtos com estoque baixo")
}
