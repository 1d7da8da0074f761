package cards_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/sonaveeb-anki/internal/cards"
	"github.com/kpauljoseph/sonaveeb-anki/internal/memstore"
	"github.com/kpauljoseph/sonaveeb-anki/internal/notetype"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

type crossCall struct {
	sources map[string][]string
	target  string
}

func suurEntry() *models.WordEntry {
	e := models.NewWordEntry()
	e.ID = "12345"
	e.Headword = "suur"
	e.WordClass = "omadussõna"
	e.SourceURL = "https://sonaveeb.ee/et/suur/12345/1"
	e.Morphology = map[string]string{
		"ainsuse nimetav": "suur",
		"ainsuse omastav": "suure",
		"ainsuse osastav": "suurt",
	}
	e.Lexemes = []models.LexemeEntry{{
		ID:            1,
		OrdinalMarker: "1",
		Definitions:   []string{"mõõtmetelt keskmisest suurem"},
		Rection:       []string{},
		Examples:      []string{"suur maja", "suur linn"},
		Translations:  map[string][]string{"de": {"groß", "riesig"}},
	}}
	return e
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		store   *memstore.Store
		calls   []crossCall
		reply   []string
		service *cards.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		calls = nil
		reply = []string{"grand", "énorme"}

		catalogue, err := notetype.DefaultCatalogue()
		Expect(err).NotTo(HaveOccurred())
		_, err = notetype.NewManager(store, catalogue, nil).EnsureDefaultsExist(ctx)
		Expect(err).NotTo(HaveOccurred())

		cross := func(_ context.Context, sources map[string][]string, target string) ([]string, error) {
			calls = append(calls, crossCall{sources: sources, target: target})
			return reply, nil
		}
		service = cards.NewService(store, cross, logger.New(logger.WithOutput(GinkgoWriter)))
	})

	Describe("Translations", func() {
		It("uses direct translations when present", func() {
			tr, err := service.Translations(ctx, suurEntry(), "de")
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Words).To(Equal([]string{"groß", "riesig"}))
			Expect(tr.External).To(BeFalse())
			Expect(calls).To(BeEmpty())
		})

		It("cross-translates exactly once when the language is missing", func() {
			tr, err := service.Translations(ctx, suurEntry(), "fr")
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Words).To(Equal([]string{"grand", "énorme"}))
			Expect(tr.External).To(BeTrue())
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].sources).To(Equal(map[string][]string{"de": {"groß", "riesig"}}))
			Expect(calls[0].target).To(Equal("fr"))
		})

		It("does not translate a sense without translations", func() {
			e := suurEntry()
			e.Lexemes[0].Translations = map[string][]string{}
			tr, err := service.Translations(ctx, e, "fr")
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Words).To(BeEmpty())
			Expect(calls).To(BeEmpty())
		})

		It("surfaces translation failures", func() {
			failing := cards.NewService(store, func(context.Context, map[string][]string, string) ([]string, error) {
				return nil, errors.New("quota exceeded")
			}, nil)
			_, err := failing.Translations(ctx, suurEntry(), "fr")
			Expect(err).To(MatchError(ContainSubstring("quota exceeded")))
		})
	})

	DescribeTable("FormatTranslations",
		func(in []string, lang, class string, want []string) {
			Expect(cards.FormatTranslations(in, lang, class)).To(Equal(want))
		},
		Entry("keeps three", []string{"big", "large", "great", "huge"}, "en", "omadussõna", []string{"big", "large", "great"}),
		Entry("trims punctuation", []string{"big!", " large.,"}, "en", "omadussõna", []string{"big", "large"}),
		Entry("english verbs", []string{"be", "to exist"}, "en", "tegusõna", []string{"to be", "to exist"}),
		Entry("other languages untouched", []string{"sein"}, "de", "tegusõna", []string{"sein"}),
	)

	It("maps an entry onto note fields", func() {
		fields := cards.Fields(suurEntry(), []string{"big", "large"})
		Expect(fields).To(Equal(map[string]string{
			"Word ID":     "12345",
			"Morphology":  "suur, -e, -t",
			"Definition":  "mõõtmetelt keskmisest suurem",
			"Rection":     "",
			"Translation": "big, large",
			"Examples":    "suur maja<br>suur linn",
			"URL":         "https://sonaveeb.ee/et/suur/12345/1",
			"Audio":       "",
		}))
	})

	Describe("existing notes", func() {
		It("finds a note by word ID within the deck only", func() {
			_, err := service.AddNote(ctx, "Estonian", "Sõnaveeb (bidirectional)", suurEntry(), cards.Translation{Words: []string{"big"}})
			Expect(err).NotTo(HaveOccurred())

			exists, err := service.NoteExists(ctx, "Estonian", suurEntry())
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = service.NoteExists(ctx, "Spanish", suurEntry())
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("falls back to the URL for notes without a word ID", func() {
			Expect(store.CreateDeck(ctx, "Estonian")).To(Succeed())
			_, err := store.AddNote(ctx, cards.Note{
				Deck:     "Estonian",
				NoteType: "Sõnaveeb (from Estonian)",
				Fields:   map[string]string{"URL": "https://sonaveeb.ee/et/suur/12345/1", "Morphology": "suur"},
			})
			Expect(err).NotTo(HaveOccurred())

			exists, err := service.NoteExists(ctx, "Estonian", suurEntry())
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("refuses to add a duplicate", func() {
			tr := cards.Translation{Words: []string{"big"}}
			id, err := service.AddNote(ctx, "Estonian", "Sõnaveeb (bidirectional)", suurEntry(), tr)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeZero())

			_, err = service.AddNote(ctx, "Estonian", "Sõnaveeb (bidirectional)", suurEntry(), tr)
			Expect(err).To(MatchError(cards.ErrDuplicate))

			notes, err := store.NotesInfo(ctx, []int64{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes[0].Tags).To(Equal([]string{"sonaveeb", "omadussõna"}))
		})

		It("refuses entries without translation", func() {
			_, err := service.AddNote(ctx, "Estonian", "Sõnaveeb (bidirectional)", suurEntry(), cards.Translation{})
			Expect(err).To(HaveOccurred())
		})

		It("updates changed notes and removes them", func() {
			tr := cards.Translation{Words: []string{"big"}}
			_, err := service.AddNote(ctx, "Estonian", "Sõnaveeb (bidirectional)", suurEntry(), tr)
			Expect(err).NotTo(HaveOccurred())

			n, err := service.UpdateNote(ctx, "Estonian", suurEntry(), tr)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			n, err = service.UpdateNote(ctx, "Estonian", suurEntry(), cards.Translation{Words: []string{"large"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			n, err = service.RemoveNotes(ctx, "Estonian", suurEntry())
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			exists, err := service.NoteExists(ctx, "Estonian", suurEntry())
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})
