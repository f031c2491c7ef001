package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codr1/Coursely/internal/themes"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <payload.json>",
		Short: "Check an AI-generated theme payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			out := cmd.OutOrStdout()
			theme, err := themes.ParseGeneratedTheme(data)
			var validationErrs themes.ValidationErrors
			if errors.As(err, &validationErrs) {
				for _, fieldErr := range validationErrs {
					fmt.Fprintf(out, "%s %s\n", errorStyle.Render(fieldErr.Field), fieldErr.Message)
				}
				return fmt.Errorf("payload rejected: %d invalid fields", len(validationErrs))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s is a valid theme payload\n", headerStyle.Render(theme.Name))
			return nil
		},
	}
}
