package sale

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"contafeira/internal/domain/ledger"
)

// SaleCmd groups the day-to-day operations of the stall: register a sale,
// cancel one, see today's movement and close the register.
var SaleCmd = &cobra.Command{
	Use:   "venda",
	Short: "Registrar e acompanhar vendas",
	Long:  `Registrar vendas, cancelar, listar as vendas do dia e fechar o caixa.`,
}

// paymentNames maps the names the user types to the stored payment methods.
var paymentNames = map[string]ledger.PaymentMethod{
	"pix":      ledger.PaymentPix,
	"dinheiro": ledger.PaymentCash,
	"cartao":   ledger.PaymentCard,
	"cartão":   ledger.PaymentCard,
	"fiado":    ledger.PaymentCreditTab,
}

func parsePayment(name string) (ledger.PaymentMethod, error) {
	method, ok := paymentNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("forma de pagamento inválida: %q (use pix, dinheiro, cartao ou fiado)", name)
	}
	return method, nil
}

func paymentLabel(m ledger.PaymentMethod) string {
	switch m {
	case ledger.PaymentPix:
		return "Pix"
	case ledger.PaymentCash:
		return "Dinheiro"
	case ledger.PaymentCard:
		return "Cartão"
	case ledger.PaymentCreditTab:
		return "Fiado"
	}
	return string(m)
}

func formatReal(d decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(d.StringFixed(2), ".", ",")
}
