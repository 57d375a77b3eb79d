package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nimasrn/marketplace/internal/config"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/internal/services"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/spf13/cobra"
)

var (
	envPath      string
	migrationDir string
)

var rootCmd = &cobra.Command{
	Use:   "marketplace-cli",
	Short: "Operational commands for the marketplace",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := envPath
		if path == "" {
			if _, err := os.Stat(".env"); err == nil {
				path = ".env"
			}
		}
		return config.Load(path)
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pg.Migrate(config.Get().PostgresWrite(), migrationDir)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pg.MigrationStatus(config.Get().PostgresWrite(), migrationDir)
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		super, _ := cmd.Flags().GetBool("super")

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := services.NewAdminService(db, repository.NewAdminRepository(db), nil, nil)
		admin, err := svc.Create(cmd.Context(), model.AdminCreateRequest{
			Email:        email,
			Name:         name,
			Password:     password,
			IsSuperAdmin: super,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %d created for %s\n", admin.ID, admin.Email)
		return nil
	},
}

var unlockPinCmd = &cobra.Command{
	Use:   "unlock-pin",
	Short: "Clear the PIN lockout of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("user")
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			return fmt.Errorf("--user must be a positive integer, got %q", raw)
		}

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := services.NewPinService(db, repository.NewUserRepository(db), repository.NewAuditRepository(db), nil)
		if err := svc.Unlock(cmd.Context(), nil, userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pin of user %d unlocked\n", userID)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "Path of the env file (defaults to ./.env when present)")

	migrateCmd.PersistentFlags().StringVar(&migrationDir, "dir", "./migrations", "Directory holding the goose migrations")
	migrateCmd.AddCommand(migrateStatusCmd)

	createAdminCmd.Flags().String("email", "", "Admin email")
	createAdminCmd.Flags().String("name", "", "Admin display name")
	createAdminCmd.Flags().String("password", "", "Admin password")
	createAdminCmd.Flags().Bool("super", false, "Grant super admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	unlockPinCmd.Flags().String("user", "", "User id")
	_ = unlockPinCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(migrateCmd, createAdminCmd, unlockPinCmd)
}

func connect() (*pg.DB, error) {
	cfg := config.Get()
	return pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), false)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
