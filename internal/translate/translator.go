// Package translate provides machine translation used when the dictionary has
// no translation into the learner's language.
package translate

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Translator translates text between two ISO 639-1 languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleTranslator uses the Cloud Translation API. Without options it
// authenticates with application default credentials.
type GoogleTranslator struct {
	client *gtranslate.Client
}

func NewGoogleTranslator(ctx context.Context, opts ...option.ClientOption) (*GoogleTranslator, error) {
	client, err := gtranslate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate: create client: %w", err)
	}
	return &GoogleTranslator{client: client}, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	src, err := language.Parse(source)
	if err != nil {
		return "", fmt.Errorf("translate: source language %q: %w", source, err)
	}
	dst, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("translate: target language %q: %w", target, err)
	}

	resp, err := g.client.Translate(ctx, []string{text}, dst, &gtranslate.Options{
		Source: src,
		Format: gtranslate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %s->%s: %w", source, target, err)
	}
	if len(resp) == 0 {
		return "", fmt.Errorf("translate: empty response for %q", text)
	}
	return strings.ReplaceAll(resp[0].Text, "&#39;", "'"), nil
}

func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}
