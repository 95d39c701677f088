package spleeter_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/server/internal/executor"
	"github.com/veedubyou/stem-split-be/src/server/internal/integration_test/dummy"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine/spleeter"
	. "github.com/veedubyou/stem-split-be/src/shared/testing"
)

// partialExecutor pretends spleeter exited cleanly but only produced
// a vocals stem
type partialExecutor struct{}

type partialCommand struct {
	args []string
}

func (p partialExecutor) CommandContext(_ context.Context, _ string, arg ...string) executor.Command {
	return &partialCommand{args: arg}
}

func (p *partialCommand) SetDir(_ string)   {}
func (p *partialCommand) SetEnv(_ []string) {}

func (p *partialCommand) CombinedOutput() ([]byte, error) {
	destinationDir := ""
	for i, arg := range p.args {
		if arg == "-o" {
			destinationDir = p.args[i+1]
		}
	}

	err := os.WriteFile(filepath.Join(destinationDir, "vocals.mp3"), []byte("vocals"), os.ModePerm)
	if err != nil {
		return nil, err
	}

	return []byte("Success"), nil
}

var _ = Describe("Spleeter engine", func() {
	var (
		dummyExecutor *dummy.SpleeterExecutor
		modelDir      string
		outputDir     string
		sourcePath    string
	)

	BeforeEach(func() {
		dummyExecutor = dummy.NewDummySpleeterExecutor()

		modelDir = GinkgoT().TempDir()
		outputDir = GinkgoT().TempDir()

		sourceDir := GinkgoT().TempDir()
		sourcePath = filepath.Join(sourceDir, "song.mp3")
		err := os.WriteFile(sourcePath, []byte("song-contents"), os.ModePerm)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewEngine", func() {
		It("rejects a split type it has no spleeter param for", func() {
			_, err := spleeter.NewEngine("spleeter", modelDir, engine.InvalidSplitType, dummyExecutor)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Separate", func() {
		var (
			splitEngine spleeter.Engine
		)

		BeforeEach(func() {
			splitEngine = ExpectSuccess(spleeter.NewEngine("spleeter", modelDir, engine.FourStemSplitType, dummyExecutor))
		})

		It("produces a file path for every stem of the configuration", func() {
			stemPaths := ExpectSuccess(splitEngine.Separate(context.Background(), sourcePath, outputDir, engine.MP3OutputFormat))

			Expect(stemPaths).To(HaveLen(4))
			for _, stemName := range engine.FourStemSplitType.StemNames() {
				stemPath, ok := stemPaths[stemName]
				Expect(ok).To(BeTrue())

				contents := ExpectSuccess(os.ReadFile(stemPath))
				Expect(string(contents)).To(Equal("song-contents-" + stemName))
			}
		})

		It("writes stems in the requested output format", func() {
			stemPaths := ExpectSuccess(splitEngine.Separate(context.Background(), sourcePath, outputDir, engine.WAVOutputFormat))

			for _, stemPath := range stemPaths {
				Expect(filepath.Ext(stemPath)).To(Equal(".wav"))
			}
		})

		It("fails when the binary fails", func() {
			dummyExecutor.Unavailable = true

			_, err := splitEngine.Separate(context.Background(), sourcePath, outputDir, engine.MP3OutputFormat)
			Expect(err).To(HaveOccurred())
		})

		It("fails without running when the context is already expired", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := splitEngine.Separate(ctx, sourcePath, outputDir, engine.MP3OutputFormat)
			Expect(err).To(HaveOccurred())

			dirEntries := ExpectSuccess(os.ReadDir(outputDir))
			Expect(dirEntries).To(BeEmpty())
		})

		It("refuses a partial stem set even when the binary exits cleanly", func() {
			partialEngine := ExpectSuccess(spleeter.NewEngine("spleeter", modelDir, engine.FourStemSplitType, partialExecutor{}))

			_, err := partialEngine.Separate(context.Background(), sourcePath, outputDir, engine.MP3OutputFormat)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("missing"))
		})
	})
})
