package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/slug"
)

func newSlugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Slug helpers",
	}

	var existing []string
	makeCmd := &cobra.Command{
		Use:   "make <text>...",
		Short: "Print the slug for text, made unique against --existing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			s, err := slug.GenerateUnique(text, existing)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	makeCmd.Flags().StringSliceVar(&existing, "existing", nil, "slugs that are already taken")

	checkCmd := &cobra.Command{
		Use:   "check <slug>",
		Short: "Validate a slug and print the violations as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := slug.Validate(args[0])
			out := struct {
				Slug   string   `json:"slug"`
				Valid  bool     `json:"valid"`
				Errors []string `json:"errors,omitempty"`
			}{Slug: args[0], Valid: len(errs) == 0, Errors: errs}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.AddCommand(makeCmd, checkCmd)
	return cmd
}
