package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the categories the public site filters on",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}

		services := service.NewServices(repository.New(db), nil, log)
		created, err := services.Category.Seed(cmd.Context(), models.DefaultCategories)
		if err != nil {
			return err
		}

		log.Info().Int("created", created).Strs("categories", models.DefaultCategories).Msg("Seed complete")
		return nil
	},
}
