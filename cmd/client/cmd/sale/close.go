// cmd/client/cmd/sale/close.go
package sale

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var CloseCmd = &cobra.Command{
	Use:   "fechar",
	Short: "Fechar o caixa do dia",
	Long: `Fecha o caixa: soma as vendas abertas de hoje por forma de pagamento,
grava o resumo do dia e arquiva as vendas. O resumo não muda depois de
gravado; vendas novas entram no próximo fechamento.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		summary, err := app.Ledger().CloseDay()
		if err != nil {
			return fmt.Errorf("erro ao fechar o caixa: %w", err)
		}
		if summary == nil {
			fmt.Println("Nenhuma venda aberta para fechar hoje.")
			return nil
		}

		color.Green("✓ Caixa fechado! (%s)", summary.BusinessDate)
		fmt.Println()
		fmt.Printf("  Total do dia:  %s (%d vendas)\n", formatReal(summary.Total), summary.SaleCount)
		fmt.Printf("  Pix:           %s\n", formatReal(summary.TotalPix))
		fmt.Printf("  Dinheiro:      %s\n", formatReal(summary.TotalCash))
		fmt.Printf("  Cartão:        %s\n", formatReal(summary.TotalCard))
		fmt.Printf("  Fiado:         %s\n", formatReal(summary.TotalFiado))
		fmt.Printf("  Custo:         %s\n", formatReal(summary.TotalCost))
		fmt.Printf("  Lucro bruto:   %s\n", formatReal(summary.Total.Sub(summary.TotalCost)))

		return nil
	},
}
