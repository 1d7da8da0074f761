package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Resolve a word and print every homonym",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if lang == "" {
				lang = a.cfg.Translation.Language
			}

			ctx := cmd.Context()
			entries, err := a.resolver.ResolveAll(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				return printCandidates(cmd, a, args[0])
			}
			for i, entry := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printEntry(out, entry, lang)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "translation language to show (defaults to translation.language)")
	return cmd
}

func printCandidates(cmd *cobra.Command, a *app, query string) error {
	out := cmd.OutOrStdout()
	candidates, err := a.resolver.Candidates(cmd.Context(), query)
	if err != nil {
		return err
	}
	if candidates.Empty() {
		fmt.Fprintf(out, "%q was not found\n", query)
		return nil
	}
	fmt.Fprintf(out, "%q was not found as a base form\n", query)
	if len(candidates.BaseForms) > 0 {
		fmt.Fprintf(out, "See also: %s\n", strings.Join(candidates.BaseForms, ", "))
	}
	return nil
}

func printEntry(w io.Writer, entry *models.WordEntry, lang string) {
	fmt.Fprintf(w, "%s", entry.Headword)
	if entry.WordClass != "" {
		fmt.Fprintf(w, " (%s)", entry.WordClass)
	}
	fmt.Fprintf(w, "  [%s]\n", entry.ID)

	if forms := entry.EssentialFormsLine(false); forms != entry.Headword {
		fmt.Fprintf(w, "  %s\n", forms)
	}
	if entry.SourceURL != "" {
		fmt.Fprintf(w, "  %s\n", entry.SourceURL)
	}

	for _, lexeme := range entry.Lexemes {
		fmt.Fprintf(w, "  %s. %s\n", lexeme.OrdinalMarker, strings.Join(lexeme.Definitions, "; "))
		if words, ok := lexeme.Translations[lang]; ok {
			fmt.Fprintf(w, "     %s: %s\n", lang, strings.Join(words, ", "))
		} else if len(lexeme.Translations) > 0 {
			langs := make([]string, 0, len(lexeme.Translations))
			for l := range lexeme.Translations {
				langs = append(langs, l)
			}
			sort.Strings(langs)
			fmt.Fprintf(w, "     no %s translation, available: %s\n", lang, strings.Join(langs, ", "))
		}
		if len(lexeme.Rection) > 0 {
			fmt.Fprintf(w, "     rection: %s\n", strings.Join(lexeme.Rection, ", "))
		}
		for _, ex := range lexeme.Examples {
			fmt.Fprintf(w, "     > %s\n", ex)
		}
	}
}
