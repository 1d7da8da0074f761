package translate

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// CrossTranslate translates the words of every source language into target
// and keeps the candidates at least threshold sources agree on, most common
// first. A threshold below one means all sources must agree.
func CrossTranslate(ctx context.Context, tr Translator, sources map[string][]string, target string, threshold int) ([]string, error) {
	if threshold < 1 {
		threshold = len(sources)
	}

	langs := make([]string, 0, len(sources))
	for lang := range sources {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	counts := map[string]int{}
	var order []string
	for _, lang := range langs {
		words := sources[lang]
		if len(words) == 0 {
			continue
		}
		out, err := tr.Translate(ctx, strings.Join(words, ", "), lang, target)
		if err != nil {
			return nil, fmt.Errorf("translate: cross translate from %s: %w", lang, err)
		}
		for _, t := range strings.Split(strings.ToLower(out), ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	kept := make([]string, 0, len(order))
	for _, t := range order {
		if counts[t] >= threshold {
			kept = append(kept, t)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return counts[kept[i]] > counts[kept[j]]
	})
	return kept, nil
}

// Func adapts CrossTranslate with a fixed translator and threshold.
type Func func(ctx context.Context, sources map[string][]string, target string) ([]string, error)

func Cross(tr Translator, threshold int) Func {
	return func(ctx context.Context, sources map[string][]string, target string) ([]string, error) {
		return CrossTranslate(ctx, tr, sources, target, threshold)
	}
}
