// cmd/client/cmd/expense/add.go
package expense

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var (
	addCategory string
	addDate     string
)

var AddCmd = &cobra.Command{
	Use:   "anotar <descrição> <valor>",
	Short: "Anotar uma despesa",
	Long: `Anota uma despesa do dia. Sem --data a despesa entra na data de hoje;
sem --categoria ela entra como "Outros".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(args[1], ",", "."))
		if err != nil {
			return fmt.Errorf("valor inválido: %q", args[1])
		}

		e, err := app.Expenses().Add(args[0], amount, addCategory, addDate)
		if err != nil {
			return fmt.Errorf("erro ao anotar a despesa: %w", err)
		}

		color.Green("✓ Despesa anotada!")
		fmt.Printf("  %s — %s (%s, %s)\n", e.Description, formatReal(e.Amount), e.Category, e.Date)

		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addCategory, "categoria", "c", "", "categoria da despesa")
	AddCmd.Flags().StringVarP(&addDate, "data", "d", "", "data no formato AAAA-MM-DD (padrão: hoje)")
}
