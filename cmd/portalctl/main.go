// Command portalctl runs maintenance tasks against the portal database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/database"
	"github.com/unetra-global/member-portal-sub000/internal/logging"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Member portal administration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedTaxonomyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads config the same way the server does.
func openDatabase() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Log)

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
