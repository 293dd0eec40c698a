package historycmder_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	historycmder "github.com/papercomputeco/notechat/cmd/notechat/history"
	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/storage/fs"
)

const (
	older = "2026-10-16T09-00-00-000Z.md"
	newer = "2026-10-17T14-03-22-123Z.md"

	olderContent = "### You (09:00:00)\n\nHow do tides work?\n\n### Assistant (09:00:05)\n\nThe moon pulls the oceans.\n"
	newerContent = "### You (14:03:22)\n\nName a prime.\n\n### Assistant (14:03:25)\n\nSeven.\n"
)

var _ = Describe("History command", func() {
	var (
		tmpDir string
		driver *fs.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()

		var err error
		driver, err = fs.NewDriver(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.PutSnapshot(ctx, older, olderContent)).To(Succeed())
		Expect(driver.PutSnapshot(ctx, newer, newerContent)).To(Succeed())
	})

	execute := func(args ...string) (string, error) {
		cmd := historycmder.NewHistoryCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .notechat/ config directory")
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		err := cmd.Execute()
		return out.String(), err
	}

	It("has every subcommand", func() {
		cmd := historycmder.NewHistoryCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("list", "show", "search", "load", "archive"))
	})

	Describe("list", func() {
		It("lists snapshots newest first", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())

			Expect(out).To(ContainSubstring("2026-10-17T14-03-22-123Z"))
			Expect(out).To(ContainSubstring("How do tides work?"))
			Expect(bytes.Index([]byte(out), []byte("Name a prime."))).To(
				BeNumerically("<", bytes.Index([]byte(out), []byte("How do tides work?"))))
		})

		It("honors --limit", func() {
			out, err := execute("list", "--limit", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Name a prime."))
			Expect(out).NotTo(ContainSubstring("tides"))
		})
	})

	Describe("search", func() {
		It("finds snapshots case-insensitively", func() {
			out, err := execute("search", "MOON")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("2026-10-16T09-00-00-000Z"))
			Expect(out).NotTo(ContainSubstring("2026-10-17T14-03-22-123Z"))
		})

		It("reports no matches", func() {
			out, err := execute("search", "volcano")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No snapshots match"))
		})
	})

	Describe("show", func() {
		It("prints the raw transcript, with or without extension", func() {
			out, err := execute("show", "2026-10-16T09-00-00-000Z")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(olderContent))

			out, err = execute("show", older)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(olderContent))
		})

		It("fails for unknown snapshots", func() {
			_, err := execute("show", "2020-01-01T00-00-00-000Z")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("load", func() {
		It("replaces the scratch transcript with the snapshot", func() {
			Expect(driver.WriteScratch(ctx, "### You (08:00:00)\n\nold chat\n")).To(Succeed())

			out, err := execute("load", newer)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("2 turns"))

			scratch, err := driver.ReadScratch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(scratch).To(ContainSubstring("Name a prime."))
			Expect(scratch).NotTo(ContainSubstring("old chat"))
		})
	})

	Describe("archive", func() {
		It("archives the live conversation and clears it", func() {
			Expect(driver.WriteScratch(ctx, "### You (08:00:00)\n\nkeep this\n\n### Assistant (08:00:02)\n\nKept.\n")).To(Succeed())

			out, err := execute("archive")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Archived as"))

			infos, err := driver.ListSnapshots(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(3))

			scratch, err := driver.ReadScratch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(scratch).To(BeEmpty())

			found, err := driver.Search(ctx, "keep this")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
		})

		It("does nothing for an empty conversation", func() {
			out, err := execute("archive")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Nothing to archive"))

			infos, err := driver.ListSnapshots(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(2))
		})
	})
})
