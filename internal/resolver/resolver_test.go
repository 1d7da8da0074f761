package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/sonaveeb-anki/internal/resolver"
	"github.com/kpauljoseph/sonaveeb-anki/internal/sonaveeb"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

type fakeDictionary struct {
	mu       sync.Mutex
	calls    []string
	forms    map[string]sonaveeb.Forms
	homonyms map[string][]models.WordReference
	failID   string
}

func (f *fakeDictionary) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDictionary) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDictionary) LookupForms(_ context.Context, word string) (sonaveeb.Forms, error) {
	f.record("forms:" + word)
	return f.forms[word], nil
}

func (f *fakeDictionary) SearchHomonyms(_ context.Context, baseForm, lang string) ([]models.WordReference, error) {
	f.record(fmt.Sprintf("search:%s:%s", baseForm, lang))
	return f.homonyms[baseForm], nil
}

func (f *fakeDictionary) FetchEntry(_ context.Context, ref models.WordReference) (*models.WordEntry, error) {
	f.record("fetch:" + ref.ID)
	if ref.ID == f.failID {
		return nil, &sonaveeb.RequestError{Op: "fetch entry", StatusCode: 502}
	}
	entry := models.NewWordEntry()
	entry.ID = ref.ID
	entry.Headword = ref.DisplayName
	return entry, nil
}

var _ = Describe("Resolver", func() {
	var (
		dict *fakeDictionary
		r    *resolver.Resolver
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dict = &fakeDictionary{
			forms: map[string]sonaveeb.Forms{
				"suurt": {BaseForms: []string{"suur"}},
				"suur":  {ExactMatch: "suur", BaseForms: []string{}},
				"tee":   {ExactMatch: "tee", BaseForms: []string{"tegema"}},
				"teed":  {BaseForms: []string{"tee", "tegema"}},
			},
			homonyms: map[string][]models.WordReference{
				"suur": {{ID: "12345", DisplayName: "suur"}},
				"tee": {
					{ID: "1", DisplayName: "tee"},
					{ID: "2", DisplayName: "tee"},
					{ID: "3", DisplayName: "tee"},
				},
			},
		}
		r = resolver.New(dict, resolver.WithLogger(logger.New(logger.WithOutput(GinkgoWriter))))
	})

	It("resolves an inflected form through its base form", func() {
		entry, err := r.Resolve(ctx, "suurt")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry).NotTo(BeNil())
		Expect(entry.Headword).To(Equal("suur"))
		Expect(dict.Calls()).To(Equal([]string{"forms:suurt", "search:suur:et", "fetch:12345"}))
	})

	It("stops after the form lookup when nothing matches", func() {
		entry, err := r.Resolve(ctx, "xyzzy")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry).To(BeNil())
		Expect(dict.Calls()).To(Equal([]string{"forms:xyzzy"}))
	})

	It("reports not found when the lemma has no homonyms", func() {
		dict.forms["kala"] = sonaveeb.Forms{ExactMatch: "kala"}
		entry, err := r.Resolve(ctx, "kala")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry).To(BeNil())
		Expect(dict.Calls()).To(Equal([]string{"forms:kala", "search:kala:et"}))
	})

	It("prefers the exact match over other base forms", func() {
		_, err := r.Resolve(ctx, "tee")
		Expect(err).NotTo(HaveOccurred())
		Expect(dict.Calls()).To(ContainElement("search:tee:et"))
		Expect(dict.Calls()).NotTo(ContainElement("search:tegema:et"))
	})

	It("takes the first base form without an exact match", func() {
		refs, err := r.References(ctx, "teed")
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(3))
		Expect(dict.Calls()).To(Equal([]string{"forms:teed", "search:tee:et"}))
	})

	It("resolves only the first homonym", func() {
		entry, err := r.Resolve(ctx, "tee")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.ID).To(Equal("1"))
		Expect(dict.Calls()).NotTo(ContainElement("fetch:2"))
	})

	It("resolves every homonym in document order", func() {
		entries, err := r.ResolveAll(ctx, "tee")
		Expect(err).NotTo(HaveOccurred())
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		Expect(ids).To(Equal([]string{"1", "2", "3"}))
	})

	It("fails the whole batch when one homonym fails", func() {
		dict.failID = "2"
		entries, err := r.ResolveAll(ctx, "tee")
		Expect(entries).To(BeNil())

		var reqErr *sonaveeb.RequestError
		Expect(errors.As(err, &reqErr)).To(BeTrue())
		Expect(reqErr.StatusCode).To(Equal(502))
	})

	It("passes the language filter through", func() {
		r = resolver.New(dict, resolver.WithLanguage(""))
		_, err := r.References(ctx, "suur")
		Expect(err).NotTo(HaveOccurred())
		Expect(dict.Calls()).To(ContainElement("search:suur:"))
	})

	Describe("Candidates", func() {
		It("lists homonyms of an exact match and its base forms", func() {
			c, err := r.Candidates(ctx, "tee")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Homonyms).To(HaveLen(3))
			Expect(c.BaseForms).To(Equal([]string{"tegema"}))
		})

		It("only lists base forms for an inflected query", func() {
			c, err := r.Candidates(ctx, "teed")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Homonyms).To(BeEmpty())
			Expect(c.BaseForms).To(Equal([]string{"tee", "tegema"}))
			Expect(dict.Calls()).To(Equal([]string{"forms:teed"}))
		})

		It("is empty for unknown words", func() {
			c, err := r.Candidates(ctx, "xyzzy")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Empty()).To(BeTrue())
		})
	})
})
