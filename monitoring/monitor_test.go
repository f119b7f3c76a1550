package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/simulation"
)

var _ = Describe("Monitor", func() {
	var (
		sim    *simulation.Simulation
		m      *Monitor
		router *mux.Router
	)

	get := func(path string, header ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for i := 0; i+1 < len(header); i += 2 {
			req.Header.Set(header[i], header[i+1])
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		sim, err = simulation.MakeBuilder().WithPoolSize(1000).Build()
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor(sim)
		router = m.Router()
	})

	It("should fall back to a random port below 1000", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(32776).portNumber).To(Equal(32776))
	})

	It("should describe the session", func() {
		var rsp sessionRsp
		decode(get("/api/session"), &rsp)

		Expect(rsp.ID).To(Equal(sim.ID()))
		Expect(rsp.PoolInitialized).To(BeTrue())
		Expect(rsp.Capacity).To(Equal(uint64(1000)))
		Expect(rsp.Strategy).To(Equal("first_fit"))
		Expect(rsp.CacheInitialized).To(BeTrue())
		Expect(rsp.Components).To(ConsistOf("allocator", "l1", "l2"))
	})

	It("should serve the layout with an etag", func() {
		_, err := sim.Allocator().Allocate(200)
		Expect(err).NotTo(HaveOccurred())

		rec := get("/api/layout")

		var layout []map[string]any
		decode(rec, &layout)
		Expect(layout).To(HaveLen(2))
		Expect(layout[0]["base"]).To(BeNumerically("==", 0))
		Expect(layout[0]["allocated"]).To(BeTrue())
		Expect(layout[1]["size"]).To(BeNumerically("==", 800))

		etag := rec.Header().Get("ETag")
		Expect(etag).NotTo(BeEmpty())
		Expect(get("/api/layout", "If-None-Match", etag).Code).
			To(Equal(http.StatusNotModified))

		_, err = sim.Allocator().Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(get("/api/layout", "If-None-Match", etag).Code).
			To(Equal(http.StatusOK))
	})

	It("should report fragmentation", func() {
		_, _ = sim.Allocator().Allocate(100)
		_, _ = sim.Allocator().Allocate(200)
		Expect(sim.Allocator().Deallocate(1)).To(Succeed())

		var rsp fragmentationRsp
		decode(get("/api/fragmentation"), &rsp)

		Expect(rsp.FreeBytes).To(Equal(uint64(800)))
		Expect(rsp.LargestFreeBlock).To(Equal(uint64(700)))
		Expect(rsp.Utilization).To(BeNumerically("~", 20.0, 1e-9))
		Expect(rsp.ExternalFragmentation).To(BeNumerically("~", 12.5, 1e-9))
	})

	It("should report allocator statistics", func() {
		_, _ = sim.Allocator().Allocate(100)
		_, _ = sim.Allocator().Allocate(5000)

		var rsp allocatorStatsRsp
		decode(get("/api/allocator/stats"), &rsp)

		Expect(rsp).To(Equal(allocatorStatsRsp{
			Attempts: 2, Successes: 1, Failures: 1, SuccessRate: 50,
		}))
	})

	It("should report cache statistics", func() {
		_, _ = sim.Hierarchy().Access(0)
		_, _ = sim.Hierarchy().Access(0)

		var rsp cacheStatsRsp
		decode(get("/api/cache/stats"), &rsp)

		Expect(rsp.L1.Accesses).To(Equal(uint64(2)))
		Expect(rsp.L1.HitRatio).To(Equal(50.0))
		Expect(rsp.L2.Misses).To(Equal(uint64(1)))
		Expect(rsp.CombinedHitRatio).To(Equal(50.0))
	})

	It("should report cache geometry", func() {
		var rsp cacheInfoRsp
		decode(get("/api/cache/info"), &rsp)

		Expect(rsp.L1.NumBlocks).To(Equal(32))
		Expect(rsp.L2.BlockSize).To(Equal(uint64(64)))
	})

	It("should list the resident cache lines", func() {
		_, err := sim.Hierarchy().Access(0x44)
		Expect(err).NotTo(HaveOccurred())

		var rsp cacheInfoRsp
		decode(get("/api/cache/info"), &rsp)

		Expect(rsp.L1Lines).To(Equal([]cache.Line{
			{SetID: 2, WayID: 0, Tag: 0, Address: 0x44},
		}))
		Expect(rsp.L2Lines).To(Equal([]cache.Line{
			{SetID: 1, WayID: 0, Tag: 0, Address: 0x44},
		}))
	})

	Context("without a cache", func() {
		BeforeEach(func() {
			var err error
			sim, err = simulation.MakeBuilder().WithoutCache().Build()
			Expect(err).NotTo(HaveOccurred())

			m = NewMonitor(sim)
			router = m.Router()
		})

		It("should refuse cache requests", func() {
			Expect(get("/api/cache/stats").Code).To(Equal(http.StatusConflict))
			Expect(get("/api/cache/info").Code).To(Equal(http.StatusConflict))
			Expect(get("/api/component/l1").Code).To(Equal(http.StatusNotFound))
		})
	})

	It("should dump a component", func() {
		rec := get("/api/component/allocator")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown components", func() {
		Expect(get("/api/component/l3").Code).To(Equal(http.StatusNotFound))

		field := url.PathEscape(`{"comp_name":"l3","field_name":"tags"}`)
		Expect(get("/api/field/" + field).Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		Expect(get("/api/field/" + url.PathEscape("not json")).Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("script", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)

		var rsp []progressRsp
		decode(get("/api/progress"), &rsp)

		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("script"))
		Expect(rsp[0].Finished).To(Equal(uint64(3)))
		Expect(rsp[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		decode(get("/api/progress"), &rsp)
		Expect(rsp).To(BeEmpty())
	})

	It("should report resource usage", func() {
		var rsp resourceRsp
		decode(get("/api/resource"), &rsp)

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should refuse to open a browser before the server starts", func() {
		Expect(m.OpenBrowser()).NotTo(Succeed())
	})

	It("should start a server", func() {
		addr := m.WithPortNumber(0).StartServer()

		rsp, err := http.Get(addr + "/api/session")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
