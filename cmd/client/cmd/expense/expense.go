package expense

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ExpenseCmd groups the expense commands.
var ExpenseCmd = &cobra.Command{
	Use:   "despesa",
	Short: "Anotar as despesas da barraca",
	Long:  `Anotar, listar e remover despesas como insumos, taxa da feira e transporte.`,
}

func formatReal(d decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(d.StringFixed(2), ".", ",")
}
