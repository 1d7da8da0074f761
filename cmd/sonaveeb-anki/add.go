package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/sonaveeb-anki/internal/cards"
	"github.com/kpauljoseph/sonaveeb-anki/internal/dispatch"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

type addOptions struct {
	deck     string
	noteType string
	lang     string
	all      bool
	update   bool
}

// prepared is a fetched entry with its translation, ready to become a note.
type prepared struct {
	ref   models.WordReference
	entry *models.WordEntry
	tr    cards.Translation
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	addOpts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <word>",
		Short: "Add notes for a word to an Anki deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdd(cmd, a, addOpts, args[0])
		},
	}
	cmd.Flags().StringVar(&addOpts.deck, "deck", "", "target deck (defaults to anki.deck)")
	cmd.Flags().StringVar(&addOpts.noteType, "note-type", "", "note type to use (defaults to anki.note_type)")
	cmd.Flags().StringVar(&addOpts.lang, "lang", "", "translation language (defaults to translation.language)")
	cmd.Flags().BoolVar(&addOpts.all, "all", false, "add every homonym instead of the first one")
	cmd.Flags().BoolVar(&addOpts.update, "update", false, "rewrite notes that already exist")
	return cmd
}

func runAdd(cmd *cobra.Command, a *app, opts *addOptions, word string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if opts.deck == "" {
		opts.deck = a.cfg.Anki.Deck
	}
	if opts.noteType == "" {
		opts.noteType = a.cfg.Anki.NoteType
	}
	if opts.lang == "" {
		opts.lang = a.cfg.Translation.Language
	}

	if err := a.connectAnki(ctx); err != nil {
		return err
	}
	if err := ensureNoteType(ctx, a, opts.noteType); err != nil {
		return err
	}

	refs, err := a.resolver.References(ctx, word)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return printCandidates(cmd, a, word)
	}
	if !opts.all {
		refs = refs[:1]
	}

	items, err := prepare(ctx, a, refs, opts.lang)
	if err != nil {
		return err
	}

	var added, updated, skipped int
	for _, it := range items {
		if !it.entry.Found() {
			a.log.Warn("Skipping %s, the entry could not be read", it.ref.ID)
			skipped++
			continue
		}
		if opts.update {
			n, err := a.cards.UpdateNote(ctx, opts.deck, it.entry, it.tr)
			if err != nil {
				return err
			}
			if n > 0 {
				updated += n
				fmt.Fprintf(out, "Updated %s\n", it.entry.Headword)
				continue
			}
		}

		_, err := a.cards.AddNote(ctx, opts.deck, opts.noteType, it.entry, it.tr)
		switch {
		case errors.Is(err, cards.ErrDuplicate):
			fmt.Fprintf(out, "%s is already in %s\n", it.entry.Headword, opts.deck)
			skipped++
		case err != nil:
			a.log.Error("Could not add %s: %v", it.entry.Headword, err)
			skipped++
		default:
			added++
			source := "dictionary"
			if it.tr.External {
				source = "machine translation"
			}
			fmt.Fprintf(out, "Added %s (%s) from %s\n", it.entry.Headword, it.entry.EssentialFormsLine(true), source)
		}
	}

	a.log.Info("Processing complete: %d added, %d updated, %d skipped", added, updated, skipped)
	return nil
}

// prepare fetches and translates every reference on the worker pool. The
// results are collected on this goroutine in reference order.
func prepare(ctx context.Context, a *app, refs []models.WordReference, lang string) ([]prepared, error) {
	pool := dispatch.NewPool(a.cfg.Workers, len(refs), a.log)
	pool.Start(ctx)

	owner := dispatch.NewOwner(ctx)
	defer owner.Close()

	items := make([]prepared, len(refs))
	var errs []error
	for i, ref := range refs {
		i, ref := i, ref
		err := dispatch.Run(pool, owner,
			func(ctx context.Context) (prepared, error) {
				entry, err := a.resolver.Fetch(ctx, ref)
				if err != nil || !entry.Found() {
					return prepared{ref: ref, entry: entry}, err
				}
				tr, err := a.cards.Translations(ctx, entry, lang)
				return prepared{ref: ref, entry: entry, tr: tr}, err
			},
			func(p prepared, err error) {
				if err != nil {
					errs = append(errs, err)
					return
				}
				items[i] = p
			},
		)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	pool.Close()
	pool.Drain()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return items, nil
}
