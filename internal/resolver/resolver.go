// Package resolver turns a raw query into dictionary entries: inflected form
// to base form, base form to homonyms, homonym to parsed article.
package resolver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/sonaveeb-anki/internal/sonaveeb"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

// Dictionary is the subset of the Sõnaveeb client the resolver needs.
type Dictionary interface {
	LookupForms(ctx context.Context, word string) (sonaveeb.Forms, error)
	SearchHomonyms(ctx context.Context, baseForm, lang string) ([]models.WordReference, error)
	FetchEntry(ctx context.Context, ref models.WordReference) (*models.WordEntry, error)
}

// Resolver holds no state between calls; only the dictionary's session is shared.
type Resolver struct {
	dict     Dictionary
	language string
	logger   *logger.Logger
}

type Option func(*Resolver)

// WithLanguage sets the homonym language filter. Empty keeps all languages.
func WithLanguage(lang string) Option {
	return func(r *Resolver) {
		r.language = lang
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l.Named("resolver")
		}
	}
}

func New(dict Dictionary, opts ...Option) *Resolver {
	r := &Resolver{
		dict:     dict,
		language: sonaveeb.DefaultLanguage,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates is what a search box needs to offer choices: homonyms of the
// query when it is itself a base form, and the base forms it may inflect.
type Candidates struct {
	Homonyms  []models.WordReference
	BaseForms []string
}

func (c Candidates) Empty() bool {
	return len(c.Homonyms) == 0 && len(c.BaseForms) == 0
}

// Lemma picks the base form to search for: the exact match if there is one,
// otherwise the first candidate. ok is false when the query matched nothing.
func Lemma(forms sonaveeb.Forms) (lemma string, ok bool) {
	if forms.HasExactMatch() {
		return forms.ExactMatch, true
	}
	if len(forms.BaseForms) > 0 {
		return forms.BaseForms[0], true
	}
	return "", false
}

// References returns the homonyms of the query's lemma in document order.
// A nil slice with a nil error means the word is unknown.
func (r *Resolver) References(ctx context.Context, query string) ([]models.WordReference, error) {
	forms, err := r.dict.LookupForms(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolver: look up forms of %q: %w", query, err)
	}

	lemma, ok := Lemma(forms)
	if !ok {
		r.logger.Debug("No base form for %q", query)
		return nil, nil
	}
	if !forms.HasExactMatch() && len(forms.BaseForms) > 1 {
		r.logger.Debug("Query %q has %d base forms, using %q", query, len(forms.BaseForms), lemma)
	}

	refs, err := r.dict.SearchHomonyms(ctx, lemma, r.language)
	if err != nil {
		return nil, fmt.Errorf("resolver: search homonyms of %q: %w", lemma, err)
	}
	if len(refs) == 0 {
		r.logger.Debug("No homonyms for %q", lemma)
		return nil, nil
	}
	return refs, nil
}

// Resolve returns the entry of the first homonym of the query's lemma, or
// nil, nil when the word is unknown.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.WordEntry, error) {
	refs, err := r.References(ctx, query)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	return r.Fetch(ctx, refs[0])
}

// ResolveAll fetches every homonym of the query's lemma concurrently. The
// result keeps the document order of the homonym list.
func (r *Resolver) ResolveAll(ctx context.Context, query string) ([]*models.WordEntry, error) {
	refs, err := r.References(ctx, query)
	if err != nil || len(refs) == 0 {
		return nil, err
	}

	entries := make([]*models.WordEntry, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			entry, err := r.Fetch(gctx, ref)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Fetch resolves a single reference, e.g. one picked by the user.
func (r *Resolver) Fetch(ctx context.Context, ref models.WordReference) (*models.WordEntry, error) {
	entry, err := r.dict.FetchEntry(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolver: fetch entry %s: %w", ref.ID, err)
	}
	if !entry.Found() {
		r.logger.Warn("Entry %s has no headword", ref.ID)
	}
	return entry, nil
}

// Candidates lists homonyms of the query when it is a base form itself, along
// with every base form the query could be an inflection of.
func (r *Resolver) Candidates(ctx context.Context, query string) (Candidates, error) {
	forms, err := r.dict.LookupForms(ctx, query)
	if err != nil {
		return Candidates{}, fmt.Errorf("resolver: look up forms of %q: %w", query, err)
	}

	c := Candidates{BaseForms: forms.BaseForms, Homonyms: []models.WordReference{}}
	if !forms.HasExactMatch() {
		return c, nil
	}
	refs, err := r.dict.SearchHomonyms(ctx, forms.ExactMatch, r.language)
	if err != nil {
		return Candidates{}, fmt.Errorf("resolver: search homonyms of %q: %w", forms.ExactMatch, err)
	}
	c.Homonyms = refs
	return c, nil
}
