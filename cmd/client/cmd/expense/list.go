package expense

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var ListCmd = &cobra.Command{
	Use:   "listar",
	Short: "Listar as despesas",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		expenses, err := app.Expenses().List()
		if err != nil {
			return fmt.Errorf("erro ao listar as despesas: %w", err)
		}

		if len(expenses) == 0 {
			fmt.Println("Nenhuma despesa anotada.")
			return nil
		}

		total := decimal.Zero
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Data\tDescrição\tValor\tCategoria\tID\t\n")
		for _, e := range expenses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				e.Date, e.Description, formatReal(e.Amount), e.Category, e.ID)
			total = total.Add(e.Amount)
		}
		w.Flush()

		fmt.Printf("\nTotal: %s\n", formatReal(total))
		return nil
	},
}
