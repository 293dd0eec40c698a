package mcp

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/storage/inmemory"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

var _ = Describe("MCP Server", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()

		codec := transcript.NewCodec(transcript.WithLocation(time.UTC))
		at := time.Date(2026, 10, 17, 14, 3, 22, 0, time.UTC)
		Expect(driver.PutSnapshot(ctx, "2026-10-17T14-03-30-000Z.md", codec.Encode([]llm.Turn{
			llm.NewTurn(llm.RoleUser, "How do I reverse a slice?", at),
			llm.NewTurn(llm.RoleAssistant, "Use slices.Reverse.", at.Add(3*time.Second)),
		}))).To(Succeed())
		Expect(driver.PutSnapshot(ctx, "2026-10-16T08-00-00-000Z.md", codec.Encode([]llm.Turn{
			llm.NewTurn(llm.RoleUser, "What is a goroutine?", at),
		}))).To(Succeed())

		var err error
		server, err = NewServer(Config{
			Driver: driver,
			Codec:  codec,
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when storage driver is nil", func() {
			_, err := NewServer(Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := NewServer(Config{Driver: driver})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("builds an empty server in noop mode", func() {
			s, err := NewServer(Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Handler()).NotTo(BeNil())
		})
	})

	Describe("search_history", func() {
		It("returns matching snapshots", func() {
			res, out, err := server.handleSearch(ctx, nil, SearchInput{Query: "SLICES"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Count).To(Equal(1))
			Expect(out.Results[0].Name).To(Equal("2026-10-17T14-03-30-000Z.md"))
			Expect(out.Query).To(Equal("SLICES"))
		})

		It("rejects an empty query", func() {
			res, _, err := server.handleSearch(ctx, nil, SearchInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})

	Describe("list_history", func() {
		It("lists newest first and honors the limit", func() {
			_, out, err := server.handleList(ctx, nil, ListInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Count).To(Equal(2))
			Expect(out.Results[0].Name).To(Equal("2026-10-17T14-03-30-000Z.md"))

			_, out, err = server.handleList(ctx, nil, ListInput{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Results).To(HaveLen(1))
		})
	})

	Describe("read_history", func() {
		It("returns the decoded turns", func() {
			res, out, err := server.handleRead(ctx, nil, ReadInput{Name: "2026-10-17T14-03-30-000Z.md"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Turns).To(HaveLen(2))
			Expect(out.Turns[0].Role).To(Equal("user"))
			Expect(out.Turns[1].Text).To(Equal("Use slices.Reverse."))
			Expect(out.Turns[1].Timestamp).To(Equal(time.Date(2026, 10, 17, 14, 3, 25, 0, time.UTC)))
		})

		It("reports an unknown snapshot as a tool error", func() {
			res, _, err := server.handleRead(ctx, nil, ReadInput{Name: "nope.md"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})
})
