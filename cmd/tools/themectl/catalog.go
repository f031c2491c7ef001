package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var slugColumn = lipgloss.NewStyle().Width(16)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, defaultSlug, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d built-in themes", len(catalog))))
			for _, theme := range catalog {
				line := slugColumn.Render(theme.Slug) + theme.Name
				if theme.Slug == defaultSlug {
					line += " " + mutedStyle.Render("(default)")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
