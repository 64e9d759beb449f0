package product

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ProductCmd groups the catalog commands.
var ProductCmd = &cobra.Command{
	Use:   "produto",
	Short: "Gerenciar o catálogo de produtos",
	Long:  `Cadastrar produtos, ajustar estoque e acompanhar o que está acabando.`,
}

func formatReal(d decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

func parseReal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
