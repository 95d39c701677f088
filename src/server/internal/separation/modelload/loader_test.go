package modelload_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/server/internal/integration_test/dummy"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/modelload"
	. "github.com/veedubyou/stem-split-be/src/shared/testing"
)

var _ = Describe("SpleeterLoader", func() {
	const remoteModelURL = "https://storage.googleapis.com/stem-split-models/models"

	var (
		dummyExecutor *dummy.SpleeterExecutor
		fileStore     *dummy.FileStore
		modelRoot     string
		loader        modelload.SpleeterLoader
	)

	BeforeEach(func() {
		dummyExecutor = dummy.NewDummySpleeterExecutor()
		fileStore = dummy.NewDummyFileStore()
		modelRoot = GinkgoT().TempDir()
	})

	JustBeforeEach(func() {
		loader = ExpectSuccess(modelload.NewSpleeterLoader(
			"spleeter",
			modelRoot,
			dummyExecutor,
			fileStore,
			remoteModelURL,
		))
	})

	Describe("With the weights already on disk", func() {
		BeforeEach(func() {
			configModelDir := filepath.Join(modelRoot, "4stems")
			Expect(os.MkdirAll(configModelDir, os.ModePerm)).To(Succeed())

			weightsPath := filepath.Join(configModelDir, "model.data-00000-of-00001")
			Expect(os.WriteFile(weightsPath, []byte("local-weights"), os.ModePerm)).To(Succeed())
		})

		It("constructs the engine without touching the remote store", func() {
			fileStore.Unavailable = true

			splitEngine, err := loader.Load(context.Background(), engine.FourStemSplitType)
			Expect(err).NotTo(HaveOccurred())
			Expect(splitEngine).NotTo(BeNil())
		})
	})

	Describe("With the weights only in the remote store", func() {
		BeforeEach(func() {
			writeRemote := func(fileName string, contents string) {
				url := remoteModelURL + "/4stems/" + fileName
				Expect(fileStore.WriteFile(context.Background(), url, []byte(contents))).To(Succeed())
			}

			writeRemote("model.data-00000-of-00001", "remote-weights")
			writeRemote("model.index", "remote-index")
			writeRemote("checkpoint", "remote-checkpoint")
		})

		It("syncs the weights down and constructs the engine", func() {
			splitEngine, err := loader.Load(context.Background(), engine.FourStemSplitType)
			Expect(err).NotTo(HaveOccurred())
			Expect(splitEngine).NotTo(BeNil())

			configModelDir := filepath.Join(modelRoot, "4stems")

			contents := ExpectSuccess(os.ReadFile(filepath.Join(configModelDir, "model.data-00000-of-00001")))
			Expect(string(contents)).To(Equal("remote-weights"))

			dirEntries := ExpectSuccess(os.ReadDir(configModelDir))
			Expect(dirEntries).To(HaveLen(3))
		})

		It("fails when the remote store is unreachable", func() {
			fileStore.Unavailable = true

			_, err := loader.Load(context.Background(), engine.FourStemSplitType)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("With no weights anywhere", func() {
		It("fails when the remote store has nothing for the configuration", func() {
			_, err := loader.Load(context.Background(), engine.FourStemSplitType)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("With no remote store configured", func() {
		JustBeforeEach(func() {
			loader = ExpectSuccess(modelload.NewSpleeterLoader(
				"spleeter",
				modelRoot,
				dummyExecutor,
				nil,
				"",
			))
		})

		It("fails when the weights are missing locally", func() {
			_, err := loader.Load(context.Background(), engine.FourStemSplitType)
			Expect(err).To(HaveOccurred())
		})
	})
})
