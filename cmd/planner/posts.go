// cmd/planner/posts.go
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSaveCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "save draft|approved|scheduled|published",
		Short: "Save the draft to the post list with a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParsePostStatus(args[0])
			if err != nil {
				return err
			}
			saved, err := state.planner.Service.SaveDraft(cmd.Context(), status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved %q as %s (%s)\n", saved.Title, saved.Status, saved.ID)
			return nil
		},
	}
}

func newPostsCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List or delete saved posts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := state.planner.Service.Posts(cmd.Context())
			if err != nil {
				return err
			}
			renderPosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a saved post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.planner.Service.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️ Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func newCalendarCommand(state *cliState) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the monthly calendar of scheduled posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := state.planner.Service.Calendar(cmd.Context(), time.Now(), offset)
			if err != nil {
				return err
			}
			renderCalendar(cmd.OutOrStdout(), month)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "months relative to the current month")
	return cmd
}

func renderPosts(w io.Writer, posts []models.ScheduledPost) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Scheduled", "Platforms", "Hashtags"})

	for _, p := range posts {
		platforms := make([]string, len(p.Platforms))
		for i, pl := range p.Platforms {
			platforms[i] = string(pl)
		}
		t.AppendRow(table.Row{
			p.ID,
			p.Title,
			p.Status,
			formatSchedule(p.ScheduledAt),
			strings.Join(platforms, ", "),
			len(p.Hashtags),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(posts)})
	t.Render()
}

func renderCalendar(w io.Writer, month models.CalendarMonth) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(month.Month.Format("January 2006"))
	t.AppendHeader(table.Row{"Date", "Day", "Posts"})

	for _, day := range month.Days {
		titles := make([]string, len(day.Posts))
		for i, p := range day.Posts {
			titles[i] = fmt.Sprintf("%s [%s]", p.Title, p.Status)
		}
		t.AppendRow(table.Row{
			day.Date.Format("2006-01-02"),
			day.Date.Format("Mon"),
			strings.Join(titles, "\n"),
		})
	}
	t.Render()
}

func newExportCommand(state *cliState) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export brand settings and posts to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := state.planner.Service.Export(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			path, err := writeExport(outDir, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📦 Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export file to")
	return cmd
}

func newImportCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import brand settings and posts from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImport(args[0])
			if err != nil {
				return err
			}
			result, err := state.planner.Service.Import(cmd.Context(), data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.BrandReplaced {
				fmt.Fprintln(out, "✅ Brand settings imported")
			}
			if result.PostsReplaced {
				fmt.Fprintf(out, "✅ %d posts imported\n", result.PostCount)
			}
			if !result.BrandReplaced && !result.PostsReplaced {
				fmt.Fprintln(out, "Nothing to import")
			}
			return nil
		},
	}
}
