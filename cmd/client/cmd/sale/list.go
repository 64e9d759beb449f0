// cmd/client/cmd/sale/list.go
package sale

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
	"contafeira/internal/domain/ledger"
)

var ListCmd = &cobra.Command{
	Use:   "hoje",
	Short: "Vendas do dia",
	Long:  `Lista as vendas abertas de hoje e o total parcial por forma de pagamento.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		sales, err := app.Ledger().TodayOpenSales()
		if err != nil {
			return fmt.Errorf("erro ao listar as vendas: %w", err)
		}

		if len(sales) == 0 {
			fmt.Println("Nenhuma venda registrada hoje.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Hora\tProduto\tQtd\tValor\tForma\tCliente\tID\t\n")
		for _, s := range sales {
			customer := "-"
			if s.CustomerName != nil {
				customer = *s.CustomerName
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
				s.TimeOfDay, s.ProductName, s.Quantity,
				formatReal(s.Amount), paymentLabel(s.PaymentMethod), customer, s.ID)
		}
		w.Flush()

		stats, err := app.Ledger().TodayStats()
		if err != nil {
			return nil
		}

		fmt.Println()
		fmt.Printf("Total parcial: %s (%d vendas, %d itens)\n",
			formatReal(stats.Total), stats.SaleCount, stats.Quantity)
		for _, m := range ledger.PaymentMethods {
			if total, ok := stats.ByMethod[m]; ok && !total.IsZero() {
				fmt.Printf("  %s: %s\n", paymentLabel(m), formatReal(total))
			}
		}

		return nil
	},
}
