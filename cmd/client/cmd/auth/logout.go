package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sair da conta",
	Long: `Encerra a sessão neste aparelho. Os dados desta conta permanecem
guardados localmente e voltam a sincronizar no próximo login.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		if app.IsGuest() {
			fmt.Println("Você não está logado.")
			return nil
		}

		if err := app.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("erro ao sair: %w", err)
		}

		fmt.Println("Sessão encerrada. Até logo!")
		return nil
	},
}
