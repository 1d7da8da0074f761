package translate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/sonaveeb-anki/internal/translate"
)

type stubTranslator struct {
	replies map[string]string
	calls   []string
}

func (s *stubTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	s.calls = append(s.calls, source+">"+target+":"+text)
	reply, ok := s.replies[source]
	if !ok {
		return "", errors.New("unsupported language")
	}
	return reply, nil
}

var _ = Describe("CrossTranslate", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("keeps translations every source agrees on by default", func() {
		tr := &stubTranslator{replies: map[string]string{
			"de": "Grand, énorme",
			"en": "grand, gros",
		}}
		out, err := translate.CrossTranslate(ctx, tr, map[string][]string{
			"de": {"groß", "riesig"},
			"en": {"big", "large"},
		}, "fr", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"grand"}))
		Expect(tr.calls).To(Equal([]string{"de>fr:groß, riesig", "en>fr:big, large"}))
	})

	It("orders by agreement when the threshold is lowered", func() {
		tr := &stubTranslator{replies: map[string]string{
			"de": "gros, grand",
			"en": "grand, vaste",
			"ru": "grand",
		}}
		out, err := translate.CrossTranslate(ctx, tr, map[string][]string{
			"de": {"groß"},
			"en": {"big"},
			"ru": {"большой"},
		}, "fr", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"grand", "gros", "vaste"}))
	})

	It("returns everything from a single source", func() {
		tr := &stubTranslator{replies: map[string]string{"de": " Grand ,  Gros,"}}
		out, err := translate.CrossTranslate(ctx, tr, map[string][]string{"de": {"groß"}}, "fr", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"grand", "gros"}))
	})

	It("propagates translator failures", func() {
		tr := &stubTranslator{replies: map[string]string{}}
		_, err := translate.CrossTranslate(ctx, tr, map[string][]string{"xx": {"foo"}}, "fr", 0)
		Expect(err).To(MatchError(ContainSubstring("unsupported language")))
	})

	It("adapts to a fixed translator", func() {
		tr := &stubTranslator{replies: map[string]string{"en": "grand"}}
		fn := translate.Cross(tr, 0)
		out, err := fn(ctx, map[string][]string{"en": {"big"}}, "fr")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"grand"}))
	})
})

var _ = Describe("WebTranslator", func() {
	It("reads the result container", func() {
		var query url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			_, _ = w.Write([]byte(`<html><body><div class="result-container"> grand, énorme </div></body></html>`))
		}))
		DeferCleanup(server.Close)

		tr := translate.NewWebTranslator(server.URL, time.Second)
		out, err := tr.Translate(context.Background(), "groß, riesig", "de", "fr")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("grand, énorme"))
		Expect(query.Get("sl")).To(Equal("de"))
		Expect(query.Get("tl")).To(Equal("fr"))
		Expect(query.Get("q")).To(Equal("groß, riesig"))
	})

	It("fails on an error status", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		DeferCleanup(server.Close)

		_, err := translate.NewWebTranslator(server.URL, time.Second).Translate(context.Background(), "suur", "et", "en")
		Expect(err).To(MatchError(ContainSubstring("429")))
	})

	It("fails when the page has no result", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><body><p>captcha</p></body></html>`))
		}))
		DeferCleanup(server.Close)

		_, err := translate.NewWebTranslator(server.URL, time.Second).Translate(context.Background(), "suur", "et", "en")
		Expect(err).To(MatchError(ContainSubstring("no result")))
	})
})
