package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codr1/Coursely/internal/color"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <hsl|hex>",
		Short: "Convert between HSL token strings and hex",
		Example: `  themectl convert "200 85% 50%"
  themectl convert '#13A4EC'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if color.IsHSL(input) {
				fmt.Fprintln(out, color.HSLToHex(input))
				return nil
			}
			hsl, err := color.HexToHSL(input)
			if err != nil {
				return fmt.Errorf("%q is neither an HSL token nor a hex color", input)
			}
			fmt.Fprintln(out, hsl)
			return nil
		},
	}
}
