package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/codr1/Coursely/internal/color"
	"github.com/codr1/Coursely/internal/models"
)

var tokenColumn = lipgloss.NewStyle().Width(24)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Preview a built-in theme's resolved colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedMode, ok := models.ParseMode(mode)
			if !ok {
				return fmt.Errorf("mode must be light or dark, got %q", mode)
			}
			catalog, _, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			theme, err := findTheme(catalog, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s (%s)", theme.Name, parsedMode)))
			for _, token := range models.Tokens {
				value := models.ResolveColor(theme, token, parsedMode)
				hex := color.HSLToHex(value)
				swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
				fmt.Fprintf(out, "%s %s%s %s\n", swatch, tokenColumn.Render(string(token)), hex, mutedStyle.Render(value))
			}
			fmt.Fprintf(out, "fonts  %s | %s | %s\n", theme.Typography.Sans, theme.Typography.Serif, theme.Typography.Mono)
			fmt.Fprintf(out, "radius %s  shadow %s\n", theme.Layout.Radius, theme.Layout.ShadowStrength)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(models.ModeLight), "Color mode to preview: light | dark")
	return cmd
}
