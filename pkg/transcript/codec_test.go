package transcript_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 10, 17, h, m, s, 0, time.UTC)
}

// pairs reduces turns to role/text for comparison.
func pairs(turns []llm.Turn) [][2]string {
	out := make([][2]string, len(turns))
	for i, t := range turns {
		out[i] = [2]string{string(t.Role), t.Text}
	}
	return out
}

var _ = Describe("Codec", func() {
	var codec *transcript.Codec

	BeforeEach(func() {
		codec = transcript.NewCodec(transcript.WithLocation(time.UTC))
	})

	Describe("Encode", func() {
		It("writes a header, a blank line, the text and a trailing blank line", func() {
			out := codec.Encode([]llm.Turn{
				llm.NewTurn(llm.RoleUser, "Hello", at(14, 3, 22)),
				llm.NewTurn(llm.RoleAssistant, "Hi!\n\nHow can I help?", at(14, 3, 25)),
			})

			Expect(out).To(Equal(
				"### You (14:03:22)\n\nHello\n\n" +
					"### Assistant (14:03:25)\n\nHi!\n\nHow can I help?\n\n",
			))
		})

		It("writes localized labels", func() {
			codec = transcript.NewCodec(
				transcript.WithLabels(transcript.Chinese),
				transcript.WithLocation(time.UTC),
			)
			out := codec.Encode([]llm.Turn{llm.NewTurn(llm.RoleAssistant, "你好", at(9, 5, 1))})
			Expect(out).To(HavePrefix("### AI (09:05:01)\n"))
		})

		It("selects labels by language code", func() {
			codec = transcript.NewCodec(
				transcript.WithLanguage("zh"),
				transcript.WithLocation(time.UTC),
			)
			Expect(codec.Labels()).To(Equal(transcript.Chinese))

			codec = transcript.NewCodec(transcript.WithLanguage("xx"))
			Expect(codec.Labels()).To(Equal(transcript.English))
		})

		It("writes dates when enabled", func() {
			codec = transcript.NewCodec(
				transcript.WithDatedHeaders(true),
				transcript.WithLocation(time.UTC),
			)
			out := codec.Encode([]llm.Turn{llm.NewTurn(llm.RoleUser, "Hello", at(23, 59, 59))})
			Expect(out).To(HavePrefix("### You (2026-10-17 23:59:59)\n"))
		})

		It("returns an empty string for no turns", func() {
			Expect(codec.Encode(nil)).To(BeEmpty())
		})
	})

	Describe("Decode", func() {
		It("round trips roles and trimmed text", func() {
			turns := []llm.Turn{
				llm.NewTurn(llm.RoleUser, "  What is Go?  ", at(10, 0, 0)),
				llm.NewTurn(llm.RoleAssistant, "A language.\n\n```go\nfmt.Println(1)\n```", at(10, 0, 5)),
				llm.NewTurn(llm.RoleUser, "Thanks", at(10, 1, 0)),
				llm.NewTurn(llm.RoleAssistant, "- one\n- two", at(10, 1, 3)),
			}

			decoded := codec.Decode(codec.Encode(turns))
			Expect(pairs(decoded)).To(Equal([][2]string{
				{"user", "What is Go?"},
				{"assistant", "A language.\n\n```go\nfmt.Println(1)\n```"},
				{"user", "Thanks"},
				{"assistant", "- one\n- two"},
			}))
		})

		It("round trips the system role", func() {
			turns := []llm.Turn{llm.NewTurn(llm.RoleSystem, "Be brief.", at(8, 0, 0))}
			Expect(pairs(codec.Decode(codec.Encode(turns)))).To(Equal([][2]string{{"system", "Be brief."}}))
		})

		It("recovers the time of day", func() {
			decoded := codec.Decode("### You (7:08:09)\n\nhi\n")
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Timestamp.Hour()).To(Equal(7))
			Expect(decoded[0].Timestamp.Minute()).To(Equal(8))
			Expect(decoded[0].Timestamp.Second()).To(Equal(9))
		})

		It("anchors time-only headers to the given day", func() {
			day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
			decoded := codec.DecodeOn("### Assistant (12:30:00)\n\nok\n", day)
			Expect(decoded[0].Timestamp).To(Equal(time.Date(2026, 3, 4, 12, 30, 0, 0, time.UTC)))
		})

		It("prefers the date carried by a dated header", func() {
			day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
			decoded := codec.DecodeOn("### You (2026-03-05 00:00:01)\n\nafter midnight\n", day)
			Expect(decoded[0].Timestamp).To(Equal(time.Date(2026, 3, 5, 0, 0, 1, 0, time.UTC)))
		})

		It("round trips full timestamps with dated headers", func() {
			codec = transcript.NewCodec(
				transcript.WithDatedHeaders(true),
				transcript.WithLocation(time.UTC),
			)
			turns := []llm.Turn{llm.NewTurn(llm.RoleUser, "late", at(23, 59, 59))}
			decoded := codec.Decode(codec.Encode(turns))
			Expect(decoded[0].Timestamp).To(Equal(at(23, 59, 59)))
		})

		It("reads headers written in another language", func() {
			decoded := codec.Decode("### 我 (10:00:00)\n\n你好\n\n### AI (10:00:02)\n\n你好！\n")
			Expect(pairs(decoded)).To(Equal([][2]string{{"user", "你好"}, {"assistant", "你好！"}}))
		})

		It("yields no turns without a recognizable header", func() {
			Expect(codec.Decode("just some notes\n## Heading\n### Unknown (10:00:00)\n")).To(BeEmpty())
			Expect(codec.Decode("")).To(BeEmpty())
		})

		It("discards lines before the first header", func() {
			decoded := codec.Decode("preamble\n\n### You (10:00:00)\n\nhi\n")
			Expect(pairs(decoded)).To(Equal([][2]string{{"user", "hi"}}))
		})

		It("drops turns with no content", func() {
			decoded := codec.Decode("### You (10:00:00)\n\n\n### Assistant (10:00:01)\n\nanswer\n")
			Expect(pairs(decoded)).To(Equal([][2]string{{"assistant", "answer"}}))
		})

		It("tolerates loose header spacing and trailing text", func() {
			decoded := codec.Decode("###You(10:00:00) edited\nhi\n")
			Expect(pairs(decoded)).To(Equal([][2]string{{"user", "hi"}}))
		})

		It("handles CRLF line endings", func() {
			decoded := codec.Decode("### You (10:00:00)\r\n\r\nhi\r\nthere\r\n")
			Expect(pairs(decoded)).To(Equal([][2]string{{"user", "hi\nthere"}}))
		})

		It("does not treat deeper headings as turn headers", func() {
			decoded := codec.Decode("### You (10:00:00)\n\n#### You (10:00:01)\n")
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Text).To(Equal("#### You (10:00:01)"))
		})

		It("keeps an invalid clock as the start of the day", func() {
			decoded := codec.Decode("### You (99:99:99)\n\nhi\n")
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Timestamp.Hour()).To(BeZero())
		})

		It("round trips text that quotes a header line", func() {
			turns := []llm.Turn{
				llm.NewTurn(llm.RoleUser, "What does a transcript look like?", at(9, 0, 0)),
				llm.NewTurn(llm.RoleAssistant, "Like this:\n\n### You (09:00:00)\n\nhello\n\\### AI (09:00:01)", at(9, 0, 5)),
			}

			encoded := codec.Encode(turns)
			Expect(encoded).To(ContainSubstring("\n\\### You (09:00:00)\n"))

			decoded := codec.Decode(encoded)
			Expect(pairs(decoded)).To(Equal(pairs(turns)))
		})

		It("leaves other backslashed lines alone", func() {
			decoded := codec.Decode("### You (10:00:00)\n\n\\# not a header\n")
			Expect(decoded[0].Text).To(Equal("\\# not a header"))
		})

		It("never fails on arbitrary input", func() {
			Expect(func() {
				codec.Decode(strings.Repeat("### (\n)", 100))
			}).NotTo(Panic())
		})
	})

	Describe("Labels", func() {
		It("looks up language presets", func() {
			l, err := transcript.LabelsFor("zh")
			Expect(err).NotTo(HaveOccurred())
			Expect(l).To(Equal(transcript.Chinese))

			_, err = transcript.LabelsFor("xx")
			Expect(err).To(HaveOccurred())
		})

		It("formats the failure message with the error", func() {
			msg := transcript.English.FailureMessage(errors.New("endpoint returned status 500"))
			Expect(msg).To(Equal("Request failed: endpoint returned status 500"))
		})
	})
})
