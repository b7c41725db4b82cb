// cmd/planner/brand.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/spf13/cobra"
)

func newBrandCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Show or edit the brand settings used for generation",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the brand settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brand, err := state.planner.Service.Brand(cmd.Context())
			if err != nil {
				return err
			}
			printBrand(cmd.OutOrStdout(), brand)
			return nil
		},
	}

	var name, tone, audience, keywords string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update brand fields; only the given flags change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			brand, err := state.planner.Service.UpdateBrand(cmd.Context(), func(b *models.BrandProfile) {
				if flags.Changed("name") {
					b.Name = name
				}
				if flags.Changed("tone") {
					b.Tone = tone
				}
				if flags.Changed("audience") {
					b.Audience = audience
				}
				if flags.Changed("keywords") {
					b.Keywords = models.ParseKeywords(keywords)
				}
			})
			if err != nil {
				return err
			}
			printBrand(cmd.OutOrStdout(), brand)
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "brand name")
	set.Flags().StringVar(&tone, "tone", "", "brand tone of voice")
	set.Flags().StringVar(&audience, "audience", "", "target audience")
	set.Flags().StringVar(&keywords, "keywords", "", "comma-separated keywords")

	cmd.AddCommand(show, set)
	return cmd
}

func printBrand(w io.Writer, brand models.BrandProfile) {
	fmt.Fprintf(w, "Name:     %s\n", brand.Name)
	fmt.Fprintf(w, "Tone:     %s\n", brand.Tone)
	fmt.Fprintf(w, "Audience: %s\n", brand.Audience)
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(brand.Keywords, ", "))
}
