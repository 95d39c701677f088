package registry_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/registry"
)

// countingLoader tracks how many constructions actually ran per
// configuration. Load is deliberately slow so concurrent callers
// overlap with an in-flight construction.
type countingLoader struct {
	loadCounts sync.Map
	loadDelay  time.Duration
	failFor    engine.SplitType
}

type stubEngine struct {
	splitType engine.SplitType
}

func (s stubEngine) Separate(_ context.Context, _ string, _ string, _ engine.OutputFormat) (engine.StemFilePaths, error) {
	return engine.StemFilePaths{}, nil
}

func (c *countingLoader) Load(_ context.Context, splitType engine.SplitType) (engine.Engine, error) {
	counter, _ := c.loadCounts.LoadOrStore(splitType, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)

	if c.loadDelay > 0 {
		time.Sleep(c.loadDelay)
	}

	if splitType == c.failFor {
		return nil, errors.New("This configuration is cursed")
	}

	return stubEngine{splitType: splitType}, nil
}

func (c *countingLoader) LoadCount(splitType engine.SplitType) int64 {
	counter, ok := c.loadCounts.Load(splitType)
	if !ok {
		return 0
	}

	return counter.(*atomic.Int64).Load()
}

var _ = Describe("ModelRegistry", func() {
	var (
		loader        *countingLoader
		modelRegistry *registry.ModelRegistry
	)

	BeforeEach(func() {
		loader = &countingLoader{}
		modelRegistry = registry.NewModelRegistry(loader)
	})

	Describe("Engine", func() {
		It("constructs the model on first use", func() {
			splitEngine, err := modelRegistry.Engine(engine.FourStemSplitType)
			Expect(err).NotTo(HaveOccurred())
			Expect(splitEngine).NotTo(BeNil())

			Expect(loader.LoadCount(engine.FourStemSplitType)).To(BeEquivalentTo(1))
		})

		It("reuses the constructed model on later uses", func() {
			first := ExpectEngine(modelRegistry, engine.FourStemSplitType)
			second := ExpectEngine(modelRegistry, engine.FourStemSplitType)

			Expect(first).To(Equal(second))
			Expect(loader.LoadCount(engine.FourStemSplitType)).To(BeEquivalentTo(1))
		})

		It("constructs each configuration independently", func() {
			_ = ExpectEngine(modelRegistry, engine.TwoStemSplitType)
			_ = ExpectEngine(modelRegistry, engine.FourStemSplitType)
			_ = ExpectEngine(modelRegistry, engine.FiveStemSplitType)

			Expect(loader.LoadCount(engine.TwoStemSplitType)).To(BeEquivalentTo(1))
			Expect(loader.LoadCount(engine.FourStemSplitType)).To(BeEquivalentTo(1))
			Expect(loader.LoadCount(engine.FiveStemSplitType)).To(BeEquivalentTo(1))
		})

		Describe("Concurrent first use", func() {
			BeforeEach(func() {
				loader.loadDelay = 50 * time.Millisecond
			})

			It("constructs the same configuration exactly once", func() {
				wg := sync.WaitGroup{}
				for i := 0; i < 10; i++ {
					wg.Add(1)
					go func() {
						defer GinkgoRecover()
						defer wg.Done()

						_, err := modelRegistry.Engine(engine.FourStemSplitType)
						Expect(err).NotTo(HaveOccurred())
					}()
				}
				wg.Wait()

				Expect(loader.LoadCount(engine.FourStemSplitType)).To(BeEquivalentTo(1))
			})

			It("doesn't serialize different configurations behind each other", func() {
				start := time.Now()

				wg := sync.WaitGroup{}
				for _, splitType := range engine.AllSplitTypes() {
					splitType := splitType
					wg.Add(1)
					go func() {
						defer GinkgoRecover()
						defer wg.Done()

						_, err := modelRegistry.Engine(splitType)
						Expect(err).NotTo(HaveOccurred())
					}()
				}
				wg.Wait()

				// three sequential loads would take 150ms+
				Expect(time.Since(start)).To(BeNumerically("<", 120*time.Millisecond))
			})
		})

		Describe("A failing configuration", func() {
			BeforeEach(func() {
				loader.failFor = engine.FiveStemSplitType
			})

			It("surfaces the failure", func() {
				_, err := modelRegistry.Engine(engine.FiveStemSplitType)
				Expect(err).To(HaveOccurred())
			})

			It("caches the failure instead of retrying", func() {
				_, err := modelRegistry.Engine(engine.FiveStemSplitType)
				Expect(err).To(HaveOccurred())

				_, err = modelRegistry.Engine(engine.FiveStemSplitType)
				Expect(err).To(HaveOccurred())

				Expect(loader.LoadCount(engine.FiveStemSplitType)).To(BeEquivalentTo(1))
			})

			It("doesn't taint the other configurations", func() {
				_, err := modelRegistry.Engine(engine.FiveStemSplitType)
				Expect(err).To(HaveOccurred())

				_, err = modelRegistry.Engine(engine.FourStemSplitType)
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("IsLoaded", func() {
		It("reports false before the first use", func() {
			Expect(modelRegistry.IsLoaded(engine.FourStemSplitType)).To(BeFalse())
		})

		It("reports true after a successful construction", func() {
			_ = ExpectEngine(modelRegistry, engine.FourStemSplitType)
			Expect(modelRegistry.IsLoaded(engine.FourStemSplitType)).To(BeTrue())
		})

		It("reports false after a failed construction", func() {
			loader.failFor = engine.FourStemSplitType

			_, err := modelRegistry.Engine(engine.FourStemSplitType)
			Expect(err).To(HaveOccurred())

			Expect(modelRegistry.IsLoaded(engine.FourStemSplitType)).To(BeFalse())
		})
	})

	Describe("LoadedConfigurations", func() {
		It("starts empty", func() {
			Expect(modelRegistry.LoadedConfigurations()).To(BeEmpty())
		})

		It("lists successful configurations by stem count", func() {
			_ = ExpectEngine(modelRegistry, engine.FiveStemSplitType)
			_ = ExpectEngine(modelRegistry, engine.TwoStemSplitType)

			Expect(modelRegistry.LoadedConfigurations()).To(Equal([]engine.SplitType{
				engine.TwoStemSplitType,
				engine.FiveStemSplitType,
			}))
		})
	})
})

func ExpectEngine(modelRegistry *registry.ModelRegistry, splitType engine.SplitType) engine.Engine {
	splitEngine, err := modelRegistry.Engine(splitType)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return splitEngine
}
