package testutils

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

// DescribeDriverConformance registers the behaviour every storage.Driver
// must share. newDriver is called before each spec.
func DescribeDriverConformance(newDriver func() storage.Driver) {
	Describe("storage.Driver conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
			older  = transcript.SnapshotName(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
			newer  = transcript.SnapshotName(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		Describe("scratch transcript", func() {
			It("is empty before the first write", func() {
				content, err := driver.ReadScratch(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(BeEmpty())
			})

			It("is overwritten by every write", func() {
				Expect(driver.WriteScratch(ctx, "### You (10:00:00)\n\nfirst\n\n")).To(Succeed())
				Expect(driver.WriteScratch(ctx, "### You (10:00:01)\n\nsecond\n\n")).To(Succeed())

				content, err := driver.ReadScratch(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(Equal("### You (10:00:01)\n\nsecond\n\n"))
			})

			It("can be cleared", func() {
				Expect(driver.WriteScratch(ctx, "something")).To(Succeed())
				Expect(driver.WriteScratch(ctx, "")).To(Succeed())

				content, err := driver.ReadScratch(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(BeEmpty())
			})
		})

		Describe("snapshots", func() {
			It("stores and returns content", func() {
				Expect(driver.PutSnapshot(ctx, older, "### You (09:00:00)\n\nhello\n\n")).To(Succeed())

				content, err := driver.GetSnapshot(ctx, older)
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(Equal("### You (09:00:00)\n\nhello\n\n"))
			})

			It("never overwrites an existing snapshot", func() {
				Expect(driver.PutSnapshot(ctx, older, "original")).To(Succeed())

				err := driver.PutSnapshot(ctx, older, "replacement")
				Expect(storage.IsExists(err)).To(BeTrue())

				content, err := driver.GetSnapshot(ctx, older)
				Expect(err).NotTo(HaveOccurred())
				Expect(content).To(Equal("original"))
			})

			It("reports missing snapshots", func() {
				_, err := driver.GetSnapshot(ctx, newer)
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})

			It("rejects names that are not plain transcript files", func() {
				Expect(driver.PutSnapshot(ctx, "../escape.md", "x")).NotTo(Succeed())
				Expect(driver.PutSnapshot(ctx, "notes.txt", "x")).NotTo(Succeed())
			})

			It("lists newest first with metadata", func() {
				Expect(driver.PutSnapshot(ctx, older, "### You (09:00:00)\n\nolder question\n\n")).To(Succeed())
				Expect(driver.PutSnapshot(ctx, newer, "### You (09:00:00)\n\nnewer question\n\n")).To(Succeed())

				infos, err := driver.ListSnapshots(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(HaveLen(2))
				Expect(infos[0].Name).To(Equal(newer))
				Expect(infos[0].Preview).To(Equal("newer question"))
				Expect(infos[0].CreatedAt).To(Equal(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))
				Expect(infos[1].Name).To(Equal(older))
			})

			It("lists nothing when empty", func() {
				infos, err := driver.ListSnapshots(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(BeEmpty())
			})

			It("searches content case-insensitively", func() {
				Expect(driver.PutSnapshot(ctx, older, "### You (09:00:00)\n\nHow do goroutines work?\n\n")).To(Succeed())
				Expect(driver.PutSnapshot(ctx, newer, "### You (09:00:00)\n\nBake bread\n\n")).To(Succeed())

				infos, err := driver.Search(ctx, "GOROUTINE")
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(HaveLen(1))
				Expect(infos[0].Name).To(Equal(older))

				infos, err = driver.Search(ctx, "nothing like this")
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(BeEmpty())
			})

			It("folds case beyond ASCII", func() {
				Expect(driver.PutSnapshot(ctx, older, "### You (09:00:00)\n\nCAFÉ ПРИВЕТ\n\n")).To(Succeed())

				for _, query := range []string{"café", "привет", "Café Привет"} {
					infos, err := driver.Search(ctx, query)
					Expect(err).NotTo(HaveOccurred())
					Expect(infos).To(HaveLen(1), query)
					Expect(infos[0].Name).To(Equal(older))
				}
			})
		})
	})
}
