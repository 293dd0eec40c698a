package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/notechat/cmd/version"
	"github.com/papercomputeco/notechat/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints the build metadata", func() {
		cmd := versioncmder.NewVersionCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: " + utils.Version))
		Expect(out.String()).To(ContainSubstring("Sha: " + utils.Sha))
	})

	It("rejects arguments", func() {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})
		Expect(cmd.Execute()).NotTo(Succeed())
	})
})
