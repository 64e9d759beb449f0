// cmd/client/cmd/auth/register.go
package auth

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Criar uma conta nova",
	Long: `Cria uma conta no servidor ContaFeira.

Toda conta nova começa com 7 dias de teste do plano Pro, com sincronização
entre aparelhos liberada. As vendas registradas antes do cadastro continuam
no aparelho e sobem na primeira sincronização.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		fmt.Println("=== Criar conta ===")
		fmt.Println()

		fmt.Print("Usuário: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Senha (mínimo 8 caracteres): ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("erro ao ler a senha: %w", err)
		}
		fmt.Println()

		fmt.Print("Repita a senha: ")
		confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("erro ao ler a senha: %w", err)
		}
		fmt.Println()

		if string(password) != string(confirm) {
			return fmt.Errorf("as senhas não conferem")
		}

		if err := app.Register(cmd.Context(), login, string(password)); err != nil {
			return fmt.Errorf("falha no cadastro: %w", err)
		}

		fmt.Println()
		color.Green("✓ Conta criada! Você ganhou 7 dias de teste do plano Pro.")

		return nil
	},
}
