// cmd/planner/draft.go
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/spf13/cobra"
)

// 接受的排期时间格式，没有时区的按本地时间解析
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseSchedule(value string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析排期时间 %q，示例: 2025-03-14T10:30", value)
}

func newDraftCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show or edit the post being composed",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := state.planner.Service.Draft(cmd.Context())
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), draft)
			return nil
		},
	}

	var (
		title, copyText, imageURL, schedule string
		platforms                           []string
		unschedule                          bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Edit draft fields; --platform toggles a platform and may repeat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			svc := state.planner.Service

			if flags.Changed("schedule") && unschedule {
				return fmt.Errorf("--schedule 与 --unschedule 不能同时使用")
			}

			var scheduledAt *time.Time
			if flags.Changed("schedule") {
				t, err := parseSchedule(schedule)
				if err != nil {
					return err
				}
				scheduledAt = &t
			}

			toggles := make([]models.Platform, 0, len(platforms))
			for _, p := range platforms {
				platform, err := models.ParsePlatform(p)
				if err != nil {
					return err
				}
				toggles = append(toggles, platform)
			}

			draft, err := svc.UpdateDraft(ctx, func(d *models.Draft) {
				if flags.Changed("title") {
					d.Title = title
				}
				if flags.Changed("copy") {
					d.Copy = copyText
				}
				if flags.Changed("image-url") {
					d.ImageURL = imageURL
				}
			})
			if err != nil {
				return err
			}
			for _, p := range toggles {
				if draft, err = svc.TogglePlatform(ctx, p); err != nil {
					return err
				}
			}
			if scheduledAt != nil || unschedule {
				if draft, err = svc.SetSchedule(ctx, scheduledAt); err != nil {
					return err
				}
			}

			printDraft(cmd.OutOrStdout(), draft)
			return nil
		},
	}
	set.Flags().StringVar(&title, "title", "", "post title")
	set.Flags().StringVar(&copyText, "copy", "", "post copy")
	set.Flags().StringVar(&imageURL, "image-url", "", "image URL")
	set.Flags().StringArrayVar(&platforms, "platform", nil, "toggle a platform (instagram, facebook, twitter, linkedin, youtube)")
	set.Flags().StringVar(&schedule, "schedule", "", "schedule time, e.g. 2025-03-14T10:30")
	set.Flags().BoolVar(&unschedule, "unschedule", false, "clear the schedule time")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard the draft, keeping the platform selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := state.planner.Service.ClearDraft(cmd.Context())
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), draft)
			return nil
		},
	}

	openCmd := &cobra.Command{
		Use:   "open <post-id>",
		Short: "Load a saved post into the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := state.planner.Service.OpenPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), draft)
			return nil
		},
	}

	cmd.AddCommand(show, set, clearCmd, openCmd)
	return cmd
}

func printDraft(w io.Writer, draft models.Draft) {
	platforms := make([]string, len(draft.Platforms))
	for i, p := range draft.Platforms {
		platforms[i] = string(p)
	}

	fmt.Fprintf(w, "ID:        %s\n", draft.ID)
	fmt.Fprintf(w, "Status:    %s\n", draft.Status)
	fmt.Fprintf(w, "Title:     %s\n", draft.Title)
	fmt.Fprintf(w, "Platforms: %s\n", strings.Join(platforms, ", "))
	fmt.Fprintf(w, "Scheduled: %s\n", formatSchedule(draft.ScheduledAt))
	if draft.ImageURL != "" {
		fmt.Fprintf(w, "Image:     %s\n", draft.ImageURL)
	}
	fmt.Fprintf(w, "Hashtags:  %s\n", strings.Join(draft.Hashtags, " "))
	fmt.Fprintln(w, "Copy:")
	fmt.Fprintln(w, draft.Copy)
}

func formatSchedule(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
