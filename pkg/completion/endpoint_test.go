package completion_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/pkg/completion"
)

var _ = Describe("ResolveEndpoint", func() {
	DescribeTable("completes base URLs",
		func(base, expected string) {
			Expect(completion.ResolveEndpoint(base)).To(Equal(expected))
		},
		Entry("host only", "https://api.example.com", "https://api.example.com/v1/chat/completions"),
		Entry("host with trailing slash", "https://api.example.com/", "https://api.example.com/v1/chat/completions"),
		Entry("version path", "https://api.example.com/v1", "https://api.example.com/v1/chat/completions"),
		Entry("version path with trailing slash", "https://api.example.com/v1/", "https://api.example.com/v1/chat/completions"),
		Entry("nested version path", "https://gateway.example.com/openai/v1", "https://gateway.example.com/openai/v1/chat/completions"),
		Entry("host with port", "http://localhost:11434", "http://localhost:11434/v1/chat/completions"),
		Entry("custom path", "https://gateway.example.com/custom/path", "https://gateway.example.com/custom/path"),
		Entry("full endpoint", "https://api.example.com/v1/chat/completions", "https://api.example.com/v1/chat/completions"),
		Entry("query string", "https://api.example.com?key=1", "https://api.example.com?key=1"),
	)
})

var _ = Describe("RequestConfig", func() {
	var cfg completion.RequestConfig

	BeforeEach(func() {
		cfg = completion.RequestConfig{
			BaseURL:          "https://api.example.com",
			Model:            "gpt-4o-mini",
			Temperature:      0.7,
			MaxRetryAttempts: completion.DefaultMaxRetryAttempts,
		}
	})

	It("accepts a complete configuration", func() {
		Expect(cfg.Validate()).To(Succeed())
	})

	It("accepts a zero temperature", func() {
		cfg.Temperature = 0
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects an empty base URL", func() {
		cfg.BaseURL = ""
		Expect(cfg.Validate()).To(MatchError(completion.ErrEmptyBaseURL))
	})

	It("rejects a base URL without scheme", func() {
		cfg.BaseURL = "api.example.com"
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects an empty model", func() {
		cfg.Model = ""
		Expect(cfg.Validate()).To(MatchError(completion.ErrEmptyModel))
	})

	It("rejects an out of range temperature", func() {
		cfg.Temperature = 2.5
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("temperature")))
	})

	It("rejects negative retries", func() {
		cfg.MaxRetryAttempts = -1
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects an invalid proxy URL", func() {
		cfg.ProxyURL = "ftp://relay"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("proxy")))
	})
})
