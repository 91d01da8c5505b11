package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unetra-global/member-portal-sub000/internal/database"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/services"
)

// taxonomyFile is the layout of a seed file:
//
//	categories:
//	  - name: Taxation
//	    field: Finance
//	    services: [GST Filing, Income Tax Returns]
type taxonomyFile struct {
	Categories []services.TaxonomyEntry `yaml:"categories"`
}

func parseTaxonomy(r io.Reader) ([]services.TaxonomyEntry, error) {
	var file taxonomyFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}

	for i, entry := range file.Categories {
		if entry.Name == "" {
			return nil, fmt.Errorf("parse taxonomy: categories[%d] has no name", i)
		}
	}
	return file.Categories, nil
}

func seedTaxonomyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed-taxonomy [file]",
		Short: "Upsert categories and services from a YAML file",
		Long: `Upsert categories and the services filed under them.

Existing rows are matched by name, case-insensitively, so the command can be
re-run after editing the file.

Examples:
  portalctl seed-taxonomy cmd/portalctl/taxonomy.yaml
  portalctl seed-taxonomy taxonomy.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := parseTaxonomy(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, entry := range entries {
					fmt.Fprintf(out, "%s (%s): %d services\n", entry.Name, entry.Field, len(entry.Services))
				}
				fmt.Fprintln(out, "Dry run - no changes made")
				return nil
			}

			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			repos := repository.New(db)
			result, err := services.Seed(cmd.Context(),
				services.NewCategoryService(repos.Category),
				services.NewServicesService(repos.Service, repos.Category),
				entries,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Seeded %d categories and %d services\n", result.Categories, result.Services)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the parsed taxonomy without writing")

	return cmd
}
