package sonaveeb

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

var (
	selHomonymItem   = cascadia.MustCompile("li.homonym-list-item")
	selWordIDInput   = cascadia.MustCompile(`input[name="word-id"]`)
	selWordURLInput  = cascadia.MustCompile(`input[name="word-select-url"]`)
	selLangCode      = cascadia.MustCompile(".lang-code")
	selHomonymBody   = cascadia.MustCompile(".homonym__body")
	selHomonymName   = cascadia.MustCompile(".text-body-two")
	selHomonymText   = cascadia.MustCompile(".homonym__text")
	selHomonymCount  = cascadia.MustCompile(".homonym__matches")
	selSelectedWord  = cascadia.MustCompile("input#selected-word-homonym-nr")
	selWordResults   = cascadia.MustCompile(".word-results")
	selLexTitle      = cascadia.MustCompile(".search__lex-title")
	selSpeaker       = cascadia.MustCompile("button.btn-speaker")
	selWordClass     = cascadia.MustCompile(".lang-code--unrestricted")
	selLexemeSection = cascadia.MustCompile(`[id^="lexeme-section"]`)
	selLexemeLevel   = cascadia.MustCompile(".lexeme-level")
	selDefinitionRow = cascadia.MustCompile(".definition-row")
	selLanguageLevel = cascadia.MustCompile(`[title="Keeleoskustase"]`)
	selDefinition    = cascadia.MustCompile(".definition-value")
	selMatchesPanel  = cascadia.MustCompile(`[id^="matches-show-more-panel"]`)
	selTranslation   = cascadia.MustCompile(".mr-1")
	selExample       = cascadia.MustCompile(".example-text")
	selRectionBlock  = cascadia.MustCompile(".rekts-est")
	selRection       = cascadia.MustCompile("span.lang-code--unrestricted")
	selSynonym       = cascadia.MustCompile("a.synonym")
	selParadigm      = cascadia.MustCompile(".morphology-paradigm")
	selFormCell      = cascadia.MustCompile("span.form-value-field")
	selDiv           = cascadia.MustCompile("div")
	selSpan          = cascadia.MustCompile("span")
	selAnchor        = cascadia.MustCompile("a")
	selParagraph     = cascadia.MustCompile("p")
	selTable         = cascadia.MustCompile("table")
)

// Inline EKI annotations that leak into text content: stress and
// inflection-boundary marks.
var reAnnotation = regexp.MustCompile(`</?eki-(?:stress|form)>`)

// StripAnnotations removes EKI inline markers and surrounding whitespace,
// collapsing inner runs of whitespace the way a browser renders them.
func StripAnnotations(s string) string {
	s = reAnnotation.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Parser turns Sõnaveeb HTML fragments into models. It holds no mutable state.
type Parser struct {
	baseURL string
}

func NewParser(baseURL string) *Parser {
	return &Parser{baseURL: strings.TrimRight(baseURL, "/")}
}

// ParseSearchResults reads a homonym list. References whose language tag
// differs from lang are dropped; an empty lang keeps all of them.
func (p *Parser) ParseSearchResults(r io.Reader, lang string) ([]models.WordReference, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return p.searchResults(doc, lang), nil
}

// ParseWordEntry reads a word details page. Missing blocks leave their fields
// empty; a page without a title block yields an entry with an empty headword.
func (p *Parser) ParseWordEntry(r io.Reader) (*models.WordEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse word details: %w", err)
	}
	return p.wordEntry(doc), nil
}

func (p *Parser) searchResults(doc *html.Node, lang string) []models.WordReference {
	refs := []models.WordReference{}
	for _, item := range cascadia.QueryAll(doc, selHomonymItem) {
		var ref models.WordReference
		if input := cascadia.Query(item, selWordIDInput); input != nil {
			ref.ID = dom.GetAttribute(input, "value")
		}
		if input := cascadia.Query(item, selWordURLInput); input != nil {
			if v := dom.GetAttribute(input, "value"); v != "" {
				ref.URL = p.baseURL + "/" + strings.TrimLeft(v, "/")
			}
		}
		if code := cascadia.Query(item, selLangCode); code != nil {
			ref.Language = text(code)
		}
		if body := cascadia.Query(item, selHomonymBody); body != nil {
			if name := cascadia.Query(body, selHomonymName); name != nil {
				ref.DisplayName = text(descend(name, selSpan, selSpan))
			}
			if summary := cascadia.Query(body, selHomonymText); summary != nil {
				if matches := cascadia.Query(summary, selHomonymCount); matches != nil {
					ref.Matches = text(matches)
				}
				ref.MatchSummary = text(cascadia.Query(summary, selParagraph))
			}
		}
		if lang != "" && ref.Language != lang {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func (p *Parser) wordEntry(doc *html.Node) *models.WordEntry {
	entry := models.NewWordEntry()

	if input := cascadia.Query(doc, selSelectedWord); input != nil {
		entry.ID = dom.GetAttribute(input, "value")
	}

	title := descend(cascadia.Query(doc, selWordResults), selDiv, selDiv)
	if title == nil {
		return entry
	}
	entry.Headword = text(descend(cascadia.Query(title, selLexTitle), selSpan))
	if button := cascadia.Query(title, selSpeaker); button != nil {
		entry.PronunciationAudioURL = p.absolute(dom.GetAttribute(button, "data-audio-url"))
	}
	entry.WordClass = text(cascadia.Query(title, selWordClass))

	for _, section := range cascadia.QueryAll(doc, selLexemeSection) {
		lexeme := parseLexeme(section)
		if lexeme.IsSubSense() {
			continue
		}
		if lexeme.OrdinalMarker == "" {
			lexeme.OrdinalMarker = strconv.Itoa(len(entry.Lexemes) + 1)
		}
		entry.Lexemes = append(entry.Lexemes, lexeme)
	}

	p.morphology(doc, entry)
	return entry
}

func parseLexeme(section *html.Node) models.LexemeEntry {
	lexeme := models.LexemeEntry{
		Definitions:  []string{},
		Rection:      []string{},
		Synonyms:     []string{},
		Translations: map[string][]string{},
		Examples:     []string{},
	}

	id := dom.GetAttribute(section, "id")
	if i := strings.LastIndex(id, "-"); i >= 0 {
		lexeme.ID, _ = strconv.Atoi(id[i+1:])
	}

	lexeme.OrdinalMarker = text(cascadia.Query(section, selLexemeLevel))

	if row := cascadia.Query(section, selDefinitionRow); row != nil {
		lexeme.Level = text(cascadia.Query(row, selLanguageLevel))
		for _, def := range cascadia.QueryAll(row, selDefinition) {
			if t := text(def); t != "" {
				lexeme.Definitions = append(lexeme.Definitions, t)
			}
		}
	}

	for _, panel := range cascadia.QueryAll(section, selMatchesPanel) {
		lang := text(cascadia.Query(panel, selLangCode))
		if lang == "" {
			continue
		}
		for _, item := range cascadia.QueryAll(panel, selTranslation) {
			if t := text(descend(item, selAnchor, selSpan)); t != "" {
				lexeme.Translations[lang] = append(lexeme.Translations[lang], t)
			}
		}
	}

	for _, example := range cascadia.QueryAll(section, selExample) {
		if t := text(descend(example, selSpan)); t != "" {
			lexeme.Examples = append(lexeme.Examples, t)
		}
	}

	if block := cascadia.Query(section, selRectionBlock); block != nil {
		for _, r := range cascadia.QueryAll(block, selRection) {
			if t := text(r); t != "" {
				lexeme.Rection = append(lexeme.Rection, t)
			}
		}
	}

	for _, link := range cascadia.QueryAll(section, selSynonym) {
		if t := text(descend(link, selSpan)); t != "" {
			lexeme.Synonyms = append(lexeme.Synonyms, t)
		}
	}

	return lexeme
}

func (p *Parser) morphology(doc *html.Node, entry *models.WordEntry) {
	table := descend(cascadia.Query(doc, selParadigm), selTable)
	if table == nil {
		return
	}
	for _, cell := range cascadia.QueryAll(table, selFormCell) {
		name, _, _ := strings.Cut(dom.GetAttribute(cell, "title"), " - ")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		entry.Morphology[name] = text(cell)
		for sib := dom.NextElementSibling(cell); sib != nil; sib = dom.NextElementSibling(sib) {
			if !selSpeaker.Match(sib) {
				continue
			}
			if u := dom.GetAttribute(sib, "data-audio-url"); u != "" {
				entry.MorphologyAudio[name] = p.absolute(u)
			}
			break
		}
	}
}

func (p *Parser) absolute(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

// descend follows a chain of "first matching descendant" steps and returns
// nil as soon as one is missing.
func descend(n *html.Node, chain ...cascadia.Matcher) *html.Node {
	for _, m := range chain {
		if n == nil {
			return nil
		}
		n = cascadia.Query(n, m)
	}
	return n
}

func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return StripAnnotations(dom.TextContent(n))
}
