package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
)

func newNoteTypesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "notetypes", Short: "Manage the note types used for dictionary notes"}

	var yes bool
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create missing note types and bring existing ones up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.connectAnki(ctx); err != nil {
				return err
			}

			confirm := promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = func(*notetype.Plan) (bool, error) { return true, nil }
			}
			res, err := a.notetypes.Sync(ctx, confirm)
			if err != nil {
				return err
			}
			printSync(cmd.OutOrStdout(), res)
			return nil
		},
	}
	syncCmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply consequential changes without asking")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List note types managed by this tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.connectAnki(ctx); err != nil {
				return err
			}
			plan, err := a.notetypes.PlanUpdates(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, it := range plan.Items {
				state := "up to date"
				if it.Diff.IsRequired() {
					state = "update required"
				} else if !it.Diff.IsEmpty() {
					state = "update available"
				}
				fmt.Fprintf(out, "%s (%s)\n", it.Schema.Name, state)
			}
			for _, blocked := range plan.Blocked {
				fmt.Fprintf(out, "%s (broken: %s)\n", blocked.Schema.Name, blocked.Reason)
			}
			return nil
		},
	}

	cmd.AddCommand(syncCmd, listCmd)
	return cmd
}

// ensureNoteType makes sure the presets exist and that name can take notes.
func ensureNoteType(ctx context.Context, a *app, name string) error {
	if _, err := a.notetypes.EnsureDefaultsExist(ctx); err != nil {
		return err
	}
	valid, err := a.notetypes.ListValid(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(valid, func(s notetype.Schema) bool { return s.Name == name }) {
		return fmt.Errorf("note type %q is missing or out of date, run \"notetypes sync\" first", name)
	}
	return nil
}

func promptConfirm(in io.Reader, out io.Writer) notetype.Confirm {
	return func(plan *notetype.Plan) (bool, error) {
		fmt.Fprintln(out, "The following note type changes affect existing notes:")
		for _, line := range plan.Describe() {
			fmt.Fprintf(out, "  %s\n", line)
		}
		if plan.Required() {
			fmt.Fprintln(out, "Without them the note types cannot be used for new notes.")
		}
		fmt.Fprint(out, "Apply these changes? [y/N] ")

		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	}
}

func printSync(w io.Writer, res *notetype.SyncResult) {
	for _, name := range res.Created {
		fmt.Fprintf(w, "Created %s\n", name)
	}
	for _, blocked := range res.Plan.Blocked {
		fmt.Fprintf(w, "Skipped %s: %s\n", blocked.Schema.Name, blocked.Reason)
	}
	switch {
	case res.Declined:
		fmt.Fprintln(w, "Update declined")
	case res.Applied > 0:
		fmt.Fprintf(w, "Updated %d note type(s)\n", res.Applied)
	default:
		fmt.Fprintln(w, "Note types are up to date")
	}
	names := make([]string, 0, len(res.Valid))
	for _, s := range res.Valid {
		names = append(names, s.Name)
	}
	fmt.Fprintf(w, "Usable note types: %s\n", strings.Join(names, ", "))
}
