package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("counts runes rather than bytes", func() {
		Expect(Truncate("你好世界", 2)).To(Equal("你好..."))
	})
})

var _ = Describe("FirstLine", func() {
	It("skips blank lines", func() {
		Expect(FirstLine("\n  \n  hello \nworld")).To(Equal("hello"))
	})

	It("returns empty for blank input", func() {
		Expect(FirstLine(" \n\t\n")).To(BeEmpty())
	})
})
