package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blog-cms/internal/config"
	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/pkg/logger"
)

var cfgFile string

// rootCmd runs the server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Minimal CMS blog",
	Long: `blog serves a small content-managed site: a public blog and news
section, authoring pages and an admin scaffold for categories and articles.

Example usage:
  blog                 # same as "blog serve"
  blog serve           # migrate the schema and start the HTTP server
  blog migrate         # apply the schema and exit
  blog migrate --down  # drop the schema
  blog seed            # create the "Блог" and "Новости" categories`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the database
func bootstrap() (*config.Config, zerolog.Logger, *database.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, log, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, log, db, nil
}
