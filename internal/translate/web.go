package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

const DefaultWebURL = "https://translate.google.com/m"

var selResult = cascadia.MustCompile("div.result-container")

// WebTranslator reads translations off the unauthenticated mobile page of
// Google Translate. It needs no credentials but may break with markup changes.
type WebTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebTranslator(baseURL string, timeout time.Duration) *WebTranslator {
	if baseURL == "" {
		baseURL = DefaultWebURL
	}
	return &WebTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (w *WebTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: parse response: %w", err)
	}
	result := cascadia.Query(doc, selResult)
	if result == nil {
		return "", fmt.Errorf("translate: no result in response for %q", text)
	}
	return strings.TrimSpace(dom.TextContent(result)), nil
}
