package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	dbpkg "github.com/codr1/Coursely/internal/db"
	"github.com/codr1/Coursely/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

type rootOptions struct {
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "themectl",
		Short:         "Inspect built-in themes and validate theme payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "Catalog YAML to read instead of the embedded built-ins")

	cmd.AddCommand(
		newCatalogCmd(opts),
		newShowCmd(opts),
		newValidateCmd(),
		newConvertCmd(),
	)
	return cmd
}

func (o *rootOptions) loadCatalog() ([]models.Theme, string, error) {
	if o.catalogPath == "" {
		themes, err := dbpkg.ParseThemesFile()
		if err != nil {
			return nil, "", err
		}
		return themes, dbpkg.DefaultBuiltInSlug(), nil
	}

	file, err := os.Open(o.catalogPath)
	if err != nil {
		return nil, "", fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return dbpkg.ParseThemes(file)
}

func findTheme(catalog []models.Theme, slug string) (*models.Theme, error) {
	for i := range catalog {
		if catalog[i].Slug == slug {
			return &catalog[i], nil
		}
	}
	return nil, fmt.Errorf("no built-in theme with slug %q", slug)
}
