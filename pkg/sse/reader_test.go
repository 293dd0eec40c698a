package sse

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// drain collects the data of every remaining event.
func drain(r *Reader) []string {
	var out []string
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return out
		}
		out = append(out, ev.Data)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("downstream closed")
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with completion chunks", func() {
			It("yields one event per data line without blank separators", func() {
				input := "data: {\"choices\":[{\"delta\":{\"content\":\"He\"}}]}\n" +
					"data: {\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n" +
					"data: [DONE]\n"
				r := NewReader(strings.NewReader(input))

				Expect(drain(r)).To(Equal([]string{
					"{\"choices\":[{\"delta\":{\"content\":\"He\"}}]}",
					"{\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}",
					"[DONE]",
				}))
			})

			It("yields events separated by blank lines", func() {
				r := NewReader(strings.NewReader("data: first\n\ndata: second\n\n"))
				Expect(drain(r)).To(Equal([]string{"first", "second"}))
			})

			It("does not join consecutive data lines", func() {
				r := NewReader(strings.NewReader("data: line one\ndata: line two\n\n"))
				Expect(drain(r)).To(Equal([]string{"line one", "line two"}))
			})

			It("recognizes the done sentinel", func() {
				r := NewReader(strings.NewReader("data: [DONE]\n"))
				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.IsDone()).To(BeTrue())
			})

			It("strips carriage returns", func() {
				r := NewReader(strings.NewReader("data: hello\r\n\r\ndata: [DONE]\r\n"))
				Expect(drain(r)).To(Equal([]string{"hello", "[DONE]"}))
			})
		})

		Context("with event and id fields", func() {
			It("attaches them to the following data line", func() {
				r := NewReader(strings.NewReader("event: delta\nid: 42\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal("delta"))
				Expect(ev.ID).To(Equal("42"))
				Expect(ev.Data).To(Equal("hello"))
			})

			It("resets them after a blank line", func() {
				r := NewReader(strings.NewReader("event: delta\ndata: a\n\ndata: b\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal("delta"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(BeEmpty())
				Expect(ev.Data).To(Equal("b"))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				ev, err := NewReader(strings.NewReader("")).Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("skips comments and unknown fields", func() {
				r := NewReader(strings.NewReader(": keep-alive\nretry: 3000\nfoo: bar\ndata: hello\n"))
				Expect(drain(r)).To(Equal([]string{"hello"}))
			})

			It("handles a data field with no space after the colon", func() {
				r := NewReader(strings.NewReader("data:no-space\n"))
				Expect(drain(r)).To(Equal([]string{"no-space"}))
			})

			It("treats a bare field name as an empty value", func() {
				r := NewReader(strings.NewReader("data\n"))
				Expect(drain(r)).To(Equal([]string{""}))
			})

			It("yields the last line when the stream has no trailing newline", func() {
				r := NewReader(strings.NewReader("data: unterminated"))
				Expect(drain(r)).To(Equal([]string{"unterminated"}))
			})

			It("ignores non-SSE noise lines", func() {
				r := NewReader(strings.NewReader("garbage\ndata: ok\n"))
				Expect(drain(r)).To(Equal([]string{"ok"}))
			})

			It("reports lines over the size limit", func() {
				big := "data: " + strings.Repeat("x", maxLineSize+1) + "\n"
				_, err := NewReader(strings.NewReader(big)).Next()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("WithTee", func() {
		It("forwards every consumed byte verbatim", func() {
			input := ": comment\nevent: delta\ndata: first\n\ndata: [DONE]\n"
			dst := &bytes.Buffer{}
			r := NewReader(strings.NewReader(input), WithTee(dst))

			Expect(drain(r)).To(Equal([]string{"first", "[DONE]"}))
			Expect(dst.String()).To(Equal(input))
		})

		It("forwards only up to the returned event", func() {
			dst := &bytes.Buffer{}
			r := NewReader(strings.NewReader("data: a\ndata: b\n"), WithTee(dst))

			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(dst.String()).To(Equal("data: a\n"))
		})

		It("surfaces destination write errors", func() {
			r := NewReader(strings.NewReader("data: a\n"), WithTee(failingWriter{}))
			_, err := r.Next()
			Expect(err).To(MatchError("downstream closed"))
		})

		It("works with a pipe", func() {
			pr, pw := io.Pipe()
			r := NewReader(strings.NewReader("data: piped\n"), WithTee(pw))

			done := make(chan string)
			go func() {
				b, _ := io.ReadAll(pr)
				done <- string(b)
			}()

			Expect(drain(r)).To(Equal([]string{"piped"}))
			Expect(pw.Close()).To(Succeed())
			Eventually(done).Should(Receive(Equal("data: piped\n")))
		})
	})
})
