package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/sonaveeb-anki/internal/config"
)

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)
		GinkgoT().Setenv("HOME", tmpDir)
	})

	writeConfig := func(content string) string {
		path := filepath.Join(tmpDir, "config.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	Context("without a config file", func() {
		It("falls back to defaults", func() {
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Dictionary.Profile).To(Equal("lite"))
			Expect(cfg.Dictionary.BaseURL).To(Equal("https://sonaveeb.ee"))
			Expect(cfg.Dictionary.Timeout).To(Equal(10 * time.Second))
			Expect(cfg.Dictionary.Language).To(Equal("et"))
			Expect(cfg.Anki.ConnectURL).To(Equal("http://localhost:8765"))
			Expect(cfg.Anki.RegistryPath).To(Equal(filepath.Join(tmpDir, ".sonaveeb-anki", "markers.db")))
			Expect(cfg.Translation.Backend).To(Equal("web"))
			Expect(cfg.Workers).To(Equal(4))
		})

		It("reads environment overrides", func() {
			GinkgoT().Setenv("SONAVEEB_PROFILE", "advanced")
			GinkgoT().Setenv("SONAVEEB_TIMEOUT", "3s")
			GinkgoT().Setenv("ANKI_DECK", "Eesti")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Dictionary.Profile).To(Equal("advanced"))
			Expect(cfg.Dictionary.Timeout).To(Equal(3 * time.Second))
			Expect(cfg.Anki.Deck).To(Equal("Eesti"))
		})

		It("fails when an explicit path is missing", func() {
			_, err := config.Load(filepath.Join(tmpDir, "missing.yaml"))
			Expect(err).To(MatchError(ContainSubstring("missing.yaml")))
		})
	})

	Context("with a config file", func() {
		It("loads values and keeps defaults for the rest", func() {
			path := writeConfig(`
dictionary:
  profile: advanced
  timeout: 2s
anki:
  deck: "Estonian::Words"
translation:
  language: de
  backend: google
workers: 2
log:
  level: debug
`)
			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Dictionary.Profile).To(Equal("advanced"))
			Expect(cfg.Dictionary.Timeout).To(Equal(2 * time.Second))
			Expect(cfg.Dictionary.Language).To(Equal("et"))
			Expect(cfg.Anki.Deck).To(Equal("Estonian::Words"))
			Expect(cfg.Anki.NoteType).To(Equal("Sõnaveeb (from Estonian)"))
			Expect(cfg.Translation.Language).To(Equal("de"))
			Expect(cfg.Translation.Backend).To(Equal("google"))
			Expect(cfg.Workers).To(Equal(2))
			Expect(cfg.Log.Level).To(Equal("debug"))
		})

		It("lets the environment win over the file", func() {
			path := writeConfig("workers: 2\n")
			GinkgoT().Setenv("SONAVEEB_WORKERS", "8")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Workers).To(Equal(8))
		})

		It("rejects invalid values", func() {
			path := writeConfig(`
dictionary:
  profile: medium
  timeout: -1s
translation:
  backend: deepl
`)
			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`unknown profile "medium"`))
			Expect(err.Error()).To(ContainSubstring("dictionary.timeout must be positive"))
			Expect(err.Error()).To(ContainSubstring(`unknown backend "deepl"`))
		})
	})
})
