package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"atelier/internal/assets"
	"atelier/internal/config"
	"atelier/internal/history"
	"atelier/internal/snapshot"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and maintain the session history",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsNewCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRenameCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDeleteCommand(ctx))
	sessionsCmd.AddCommand(newSessionsExportCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var searchTerm string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *history.Store) error {
				var records []history.Record
				var err error
				if term := strings.TrimSpace(searchTerm); term != "" {
					records, err = store.Search(cmd.Context(), term)
				} else {
					records, err = store.List(cmd.Context())
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No sessions found")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						record.ID,
						record.Title,
						formatTimestamp(record.CreatedAt),
						formatTimestamp(record.UpdatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Title", "Created", "Updated"},
					rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&searchTerm, "search", "s", "", "Filter sessions by title prefix")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	var withMessages bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session and its snapshot summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *history.Store) error {
				entry, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("session %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:      %s\n", entry.Record.ID)
				fmt.Fprintf(out, "Title:   %s\n", entry.Record.Title)
				fmt.Fprintf(out, "Created: %s\n", formatTimestamp(entry.Record.CreatedAt))
				fmt.Fprintf(out, "Updated: %s\n", formatTimestamp(entry.Record.UpdatedAt))
				fmt.Fprintln(out)

				snap := entry.Snapshot
				rows := [][]string{
					{"Messages", strconv.Itoa(len(snap.Messages))},
					{"Mood board images", strconv.Itoa(len(snap.Content.MoodBoard))},
					{"Storyboard scenes", strconv.Itoa(len(snap.Content.Storyboard))},
					{"Hex colors", strconv.Itoa(len(snap.Content.HexCodes))},
					{"Constraints", strconv.Itoa(len(snap.Content.Constraints))},
					{"Summary", yesNo(snap.Content.Summary != nil)},
					{"Final outputs", strconv.Itoa(len(snap.Content.FinalOutputs))},
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Section", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight}))

				if withMessages {
					fmt.Fprintln(out)
					titleCaser := cases.Title(language.English)
					for _, message := range snap.Messages {
						role := titleCaser.String(string(message.Role))
						fmt.Fprintf(out, "[%s] %s\n", role, message.Content)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withMessages, "messages", false, "Print the full message transcript")
	return cmd
}

func newSessionsNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create an empty session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *history.Store) error {
				title := cfg.Workspace.DefaultSessionTitle
				if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
					title = strings.TrimSpace(args[0])
				}
				record := history.NewRecord(title)
				if err := store.Upsert(cmd.Context(), record, snapshot.Empty()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created session %s (%q)\n", record.ID, record.Title)
				return nil
			})
		},
	}
}

func newSessionsRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session-id> <title>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *history.Store) error {
				title := strings.TrimSpace(args[1])
				if title == "" {
					title = cfg.Workspace.DefaultSessionTitle
				}
				if err := store.Rename(cmd.Context(), args[0], title); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed session %s to %q\n", args[0], title)
				return nil
			})
		},
	}
}

func newSessionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its stored assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *history.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				// Asset cleanup is best effort; the session row is already gone.
				cleaner := assets.NewStore(cfg.ImagesDir(), nil)
				if err := cleaner.RemoveSessionAssets(args[0]); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to remove assets for session %s: %v\n", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionsExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *history.Store) error {
				entry, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("session %s not found", args[0])
				}

				data, err := snapshot.Encode(entry.Snapshot)
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}

				target := strings.TrimSpace(outputPath)
				if target == "" {
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}
				if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported session %s to %s\n", args[0], target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
