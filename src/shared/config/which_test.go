package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/shared/config"
	"github.com/veedubyou/stem-split-be/src/shared/values/envvar"
)

var _ = Describe("SpleeterBinPath", func() {
	Describe("With the bin path env var set", func() {
		BeforeEach(func() {
			GinkgoT().Setenv(envvar.SPLEETER_BIN_PATH, "/opt/custom/spleeter")
		})

		// spleeter isn't installed in the test environment, so this
		// only passes if the override short circuits PATH discovery
		It("returns the override without consulting the PATH", func() {
			Expect(config.SpleeterBinPath()).To(Equal("/opt/custom/spleeter"))
		})
	})
})

var _ = Describe("FindBin", func() {
	It("resolves a bin that exists on the PATH", func() {
		Expect(config.FindBin("ls")).To(ContainSubstring("ls"))
	})

	It("panics for a bin that doesn't exist", func() {
		Expect(func() {
			config.FindBin("no-such-bin-anywhere")
		}).To(Panic())
	})
})
