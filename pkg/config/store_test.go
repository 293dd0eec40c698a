package config_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/pkg/config"
)

var _ = Describe("StaticStore", func() {
	It("starts from defaults", func() {
		s := config.NewStaticStore(nil)
		Expect(s.Get()).To(Equal(*config.NewDefaultConfig()))
	})

	It("returns copies", func() {
		s := config.NewStaticStore(nil)
		cfg := s.Get()
		cfg.Endpoint.Model = "changed"
		Expect(s.Get().Endpoint.Model).NotTo(Equal("changed"))
	})

	It("applies a valid change and notifies subscribers", func() {
		s := config.NewStaticStore(nil)

		var seen []string
		cancel := s.Subscribe(func(c config.Config) {
			seen = append(seen, c.Endpoint.Model)
		})

		Expect(s.Set("endpoint.model", "a")).To(Succeed())
		cancel()
		Expect(s.Set("endpoint.model", "b")).To(Succeed())

		Expect(seen).To(Equal([]string{"a"}))
		Expect(s.Get().Endpoint.Model).To(Equal("b"))
	})

	It("leaves the config untouched on an invalid change", func() {
		s := config.NewStaticStore(nil)
		Expect(s.Set("endpoint.temperature", "9")).NotTo(Succeed())
		Expect(s.Get().Endpoint.Temperature).To(Equal(config.NewDefaultConfig().Endpoint.Temperature))
	})
})

var _ = Describe("FileStore", func() {
	var (
		tmpDir   string
		configer *config.Configer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		configer, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists changes made through Set", func() {
		store, err := config.NewFileStore(configer, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Set("endpoint.model", "gpt-4.1")).To(Succeed())

		cfg, err := configer.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Endpoint.Model).To(Equal("gpt-4.1"))
	})

	It("picks up edits made by another process", func() {
		store, err := config.NewFileStore(configer, nil)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			defer GinkgoRecover()
			_ = store.Watch(ctx)
		}()

		path := filepath.Join(tmpDir, "config.toml")
		Eventually(func() string {
			_ = os.WriteFile(path, []byte("[endpoint]\nmodel = \"edited\"\n"), 0o600)
			return store.Get().Endpoint.Model
		}).WithTimeout(5 * time.Second).WithPolling(50 * time.Millisecond).Should(Equal("edited"))
	})

	It("keeps the previous config when the file becomes unreadable", func() {
		store, err := config.NewFileStore(configer, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[endpoint\n"), 0o600)).To(Succeed())
		Expect(store.Reload()).NotTo(Succeed())
		Expect(store.Get().Endpoint.Model).To(Equal(config.NewDefaultConfig().Endpoint.Model))
	})
})
