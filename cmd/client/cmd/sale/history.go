package sale

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var HistoryCmd = &cobra.Command{
	Use:   "historico",
	Short: "Fechamentos anteriores",
	Long:  `Lista os resumos de caixa já fechados, do mais recente ao mais antigo.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		summaries, err := app.Ledger().History()
		if err != nil {
			return fmt.Errorf("erro ao listar o histórico: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Println("Nenhum fechamento registrado ainda.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Data\tVendas\tTotal\tPix\tDinheiro\tCartão\tFiado\tCusto\t\n")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				s.BusinessDate, s.SaleCount,
				formatReal(s.Total), formatReal(s.TotalPix), formatReal(s.TotalCash),
				formatReal(s.TotalCard), formatReal(s.TotalFiado), formatReal(s.TotalCost))
		}
		w.Flush()

		return nil
	},
}
