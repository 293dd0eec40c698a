package workspace_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/cmd/notechat/workspace"
	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/credentials"
	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/logger"
	storageutils "github.com/papercomputeco/notechat/pkg/storage/utils"
	testutils "github.com/papercomputeco/notechat/pkg/utils/test"
)

var _ = Describe("Workspace", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv(credentials.APIKeyEnvVar, "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		GinkgoT().Setenv("OPENROUTER_API_KEY", "")
	})

	Describe("Open", func() {
		It("opens file storage in the config directory by default", func() {
			w, err := workspace.Open(workspace.Options{ConfigDir: dir, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			defer w.Close()

			Expect(w.Driver.WriteScratch(context.Background(), "### You (10:00:00)\n\nhi\n")).To(Succeed())
			_, err = os.Stat(filepath.Join(dir, "scratch.md"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("uses a fixed configuration when one is given", func() {
			cfg := config.NewDefaultConfig()
			cfg.Storage.Driver = storageutils.DriverMemory
			cfg.Endpoint.Model = "llama3.2"

			w, err := workspace.Open(workspace.Options{ConfigDir: dir, Config: cfg, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			defer w.Close()

			Expect(w.Store.Get().Endpoint.Model).To(Equal("llama3.2"))
		})

		It("follows config.toml when no configuration is given", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.SetConfigValue("transcript.language", "zh")).To(Succeed())

			w, err := workspace.Open(workspace.Options{ConfigDir: dir, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			defer w.Close()

			Expect(w.Store.Get().Transcript.Language).To(Equal("zh"))
			Expect(w.Codec().Labels().User).To(Equal("我"))
		})
	})

	Describe("Key", func() {
		It("resolves the key for the endpoint's provider", func() {
			GinkgoT().Setenv("OPENROUTER_API_KEY", "sk-or")

			w, err := workspace.Open(workspace.Options{ConfigDir: dir, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			defer w.Close()

			cfg := *config.NewDefaultConfig()
			cfg.Endpoint.BaseURL = "https://openrouter.ai/api/v1"

			key, err := w.Key(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-or"))
		})
	})

	Describe("NewSession", func() {
		It("builds a session over the workspace storage", func() {
			cfg := config.NewDefaultConfig()
			cfg.Storage.Driver = storageutils.DriverMemory

			w, err := workspace.Open(workspace.Options{ConfigDir: dir, Config: cfg, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			defer w.Close()

			completer := &testutils.MockCompleter{Checkpoints: []string{"Hi", "Hi there"}}
			session, err := w.NewSession(completer)
			Expect(err).NotTo(HaveOccurred())
			defer session.Close()

			turn, err := session.Send(context.Background(), "Hello", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Role).To(Equal(llm.RoleAssistant))
			Expect(turn.Text).To(Equal("Hi there"))

			Expect(session.Flush(context.Background())).To(Succeed())
			scratch, err := w.Driver.ReadScratch(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(scratch).To(ContainSubstring("Hi there"))
		})
	})
})

var _ = Describe("ResolveSQLitePath", func() {
	BeforeEach(func() {
		GinkgoT().Setenv(workspace.SQLiteEnvVar, "")
	})

	It("prefers the configured path", func() {
		Expect(workspace.ResolveSQLitePath("/data", "/tmp/custom.db")).To(Equal("/tmp/custom.db"))
	})

	It("resolves a relative configured path against the directory", func() {
		Expect(workspace.ResolveSQLitePath("/data", "chats.db")).To(Equal("/data/chats.db"))
	})

	It("falls back to NOTECHAT_SQLITE", func() {
		GinkgoT().Setenv(workspace.SQLiteEnvVar, "/tmp/env.db")
		Expect(workspace.ResolveSQLitePath("/data", "")).To(Equal("/tmp/env.db"))
	})

	It("defaults to notechat.db in the directory", func() {
		Expect(workspace.ResolveSQLitePath("/data", "")).To(Equal("/data/notechat.db"))
	})
})

var _ = Describe("DriverOpts", func() {
	It("resolves a relative storage directory", func() {
		opts := workspace.DriverOpts("/data", config.StorageConfig{Driver: "fs", Dir: "chats"})
		Expect(opts.DriverType).To(Equal("fs"))
		Expect(opts.Dir).To(Equal("/data/chats"))
	})

	It("leaves the sqlite path empty for other drivers", func() {
		opts := workspace.DriverOpts("/data", config.StorageConfig{Driver: "fs"})
		Expect(opts.SQLitePath).To(BeEmpty())
	})
})
