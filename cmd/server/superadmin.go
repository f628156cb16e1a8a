package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/domain/admin"
	"storefront/internal/platform/database"
)

var createSuperAdminCmd = &cobra.Command{
	Use:   "create-superadmin",
	Short: "Create the first SUPERADMIN account",
	Long:  "Create the first SUPERADMIN account. Refuses to run once any SUPERADMIN exists;\nfurther admins are created through the API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		nome, _ := cmd.Flags().GetString("nome")
		email, _ := cmd.Flags().GetString("email")
		senha, _ := cmd.Flags().GetString("senha")

		store, db, err := openStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer database.Close(db)

		svc := admin.NewService(store.Admins(), admin.Options{Logger: logger})
		a, err := svc.Bootstrap(cmd.Context(), nome, email, senha)
		if errors.Is(err, admin.ErrSuperAdminExists) {
			return errors.New("a SUPERADMIN already exists; create further admins through the API")
		}
		if err != nil {
			return err
		}

		logger.Info("superadmin created", "admin_id", a.ID, "email", a.Email)
		return nil
	},
}

func init() {
	createSuperAdminCmd.Flags().String("nome", "Administrador", "display name")
	createSuperAdminCmd.Flags().String("email", "", "login email")
	createSuperAdminCmd.Flags().String("senha", "", "password (at least 6 characters)")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("senha")
}
