package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
)

var _ = Describe("SplitType", func() {
	Describe("ConvertToSplitType", func() {
		It("converts all well known split types", func() {
			Expect(engine.ConvertToSplitType("2stems")).To(Equal(engine.TwoStemSplitType))
			Expect(engine.ConvertToSplitType("4stems")).To(Equal(engine.FourStemSplitType))
			Expect(engine.ConvertToSplitType("5stems")).To(Equal(engine.FiveStemSplitType))
		})

		It("rejects anything else", func() {
			_, err := engine.ConvertToSplitType("3stems")
			Expect(err).To(HaveOccurred())

			_, err = engine.ConvertToSplitType("")
			Expect(err).To(HaveOccurred())

			_, err = engine.ConvertToSplitType("4STEMS")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("StemNames", func() {
		It("names two stems for the vocal split", func() {
			Expect(engine.TwoStemSplitType.StemNames()).To(ConsistOf("vocals", "accompaniment"))
		})

		It("names four stems for the band split", func() {
			Expect(engine.FourStemSplitType.StemNames()).To(ConsistOf("vocals", "drums", "bass", "other"))
		})

		It("adds piano for the five stem split", func() {
			Expect(engine.FiveStemSplitType.StemNames()).To(ConsistOf("vocals", "drums", "bass", "other", "piano"))
		})
	})

	Describe("StemCount", func() {
		It("matches the length of the stem names", func() {
			for _, splitType := range engine.AllSplitTypes() {
				Expect(splitType.StemCount()).To(Equal(len(splitType.StemNames())))
			}
		})
	})

	Describe("Defaults", func() {
		It("defaults to the four stem split", func() {
			Expect(engine.DefaultSplitType).To(Equal(engine.FourStemSplitType))
		})
	})
})

var _ = Describe("OutputFormat", func() {
	Describe("ConvertToOutputFormat", func() {
		It("converts the supported formats", func() {
			Expect(engine.ConvertToOutputFormat("mp3")).To(Equal(engine.MP3OutputFormat))
			Expect(engine.ConvertToOutputFormat("wav")).To(Equal(engine.WAVOutputFormat))
		})

		It("rejects anything else", func() {
			_, err := engine.ConvertToOutputFormat("flac")
			Expect(err).To(HaveOccurred())

			_, err = engine.ConvertToOutputFormat("")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Extension", func() {
		It("derives the file extension from the format", func() {
			Expect(engine.MP3OutputFormat.Extension()).To(Equal(".mp3"))
			Expect(engine.WAVOutputFormat.Extension()).To(Equal(".wav"))
		})
	})
})
