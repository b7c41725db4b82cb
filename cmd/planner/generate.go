// cmd/planner/generate.go
package main

import (
	"fmt"
	"strings"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/trigger"
	"github.com/spf13/cobra"
)

func newGenerateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:       "generate post|hashtags",
		Short:     "Generate copy or hashtags for the draft through the proxy",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(models.KindPost), string(models.KindHashtags)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := state.planner.Service
			kind := models.ParseKind(args[0])

			brand, err := svc.Brand(ctx)
			if err != nil {
				return err
			}
			draft, err := svc.Draft(ctx)
			if err != nil {
				return err
			}

			result, err := state.planner.Trigger.Generate(ctx, kind, brand, &draft)
			if err != nil {
				return err
			}

			if _, err := svc.UpdateDraft(ctx, func(d *models.Draft) {
				d.Title = draft.Title
				d.Copy = draft.Copy
				d.Hashtags = draft.Hashtags
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Source == trigger.SourceProxy && result.Response != nil && result.Response.Error != "" {
				fmt.Fprintf(out, "⚠️ proxy returned %s\n", result.Response.Error)
			}
			if kind == models.KindHashtags {
				fmt.Fprintln(out, strings.Join(draft.Hashtags, " "))
				return nil
			}
			if draft.Title != "" {
				fmt.Fprintln(out, draft.Title)
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, draft.Copy)
			return nil
		},
	}
}
