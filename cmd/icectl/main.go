// Command icectl runs maintenance tasks against the Ice Breakun database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ice-breakun/backend/internal/seed"
	"ice-breakun/backend/pkg/config"
	"ice-breakun/backend/pkg/di"
	"ice-breakun/backend/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "icectl",
	Short:         "Maintenance commands for the Ice Breakun API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
			cfg.Database.Driver = driver
		}
		if path, _ := cmd.Flags().GetString("db"); path != "" {
			cfg.Database.Path = path
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = cfg.Logging.Level
		logConfig.JSON = false
		log = logger.New(logConfig)
		logger.SetGlobal(log)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(*gorm.DB) error {
			fmt.Println("✓ Schema is up to date")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users and messages; existing emails are skipped",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture := seed.Default
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			if fixture, err = seed.Decode(f); err != nil {
				return err
			}
		}

		return withDB(cmd.Context(), func(db *gorm.DB) error {
			container, err := di.New(db, cfg, log)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			res, err := seed.New(container.UserService, container.MessageService, log).Run(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %d users created, %d skipped, %d messages created\n",
				res.UsersCreated, res.UsersSkipped, res.MessagesCreated)
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the database and event bridge are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			container, err := di.New(db, cfg, log)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			container.Health.RunChecks(ctx)
			for _, comp := range container.Health.GetStatus() {
				line := fmt.Sprintf("%-10s %s", comp.Name, comp.Status)
				if comp.Error != "" {
					line += "  " + comp.Error
				}
				fmt.Println(line)
			}
			if !container.Health.IsSystemHealthy() {
				return fmt.Errorf("a critical component is down")
			}
			return nil
		})
	},
}

func withDB(ctx context.Context, fn func(*gorm.DB) error) error {
	db, err := di.OpenDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer config.Close(db)
	return fn(db)
}

func init() {
	rootCmd.PersistentFlags().String("driver", "", "database driver: sqlite or postgres (default from DB_DRIVER)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default from DB_PATH)")
	seedCmd.Flags().StringP("file", "f", "", "JSON fixture file; uses the built-in demo data when empty")

	rootCmd.AddCommand(migrateCmd, seedCmd, checkCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}
