// cmd/client/cmd/sale/register.go
package sale

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var (
	registerPayment  string
	registerQuantity int64
	registerCustomer string
)

var RegisterCmd = &cobra.Command{
	Use:   "registrar <produto-id>",
	Short: "Registrar uma venda",
	Long: `Registra a venda de um produto. O valor é o preço atual vezes a
quantidade e o estoque baixa na hora, mesmo sem internet.

Vendas no fiado exigem o nome do cliente (--cliente).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		method, err := parsePayment(registerPayment)
		if err != nil {
			return err
		}

		var customer *string
		if registerCustomer != "" {
			customer = &registerCustomer
		}

		sale, err := app.Ledger().RegisterSale(args[0], method, registerQuantity, customer)
		if err != nil {
			return fmt.Errorf("erro ao registrar a venda: %w", err)
		}

		color.Green("✓ Venda registrada!")
		fmt.Printf("  %dx %s — %s (%s)\n",
			sale.Quantity, sale.ProductName, formatReal(sale.Amount), paymentLabel(sale.PaymentMethod))
		if sale.CustomerName != nil {
			fmt.Printf("  Cliente: %s\n", *sale.CustomerName)
		}
		fmt.Printf("  ID: %s\n", sale.ID)

		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVarP(&registerPayment, "forma", "f", "dinheiro", "forma de pagamento (pix, dinheiro, cartao, fiado)")
	RegisterCmd.Flags().Int64VarP(&registerQuantity, "qtd", "q", 1, "quantidade vendida")
	RegisterCmd.Flags().StringVarP(&registerCustomer, "cliente", "c", "", "nome do cliente (obrigatório no fiado)")
}
