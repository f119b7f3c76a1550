// Package monitoring serves the state of a running session over HTTP.
package monitoring

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"github.com/zeebo/xxh3"

	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/monitoring/web"
	"github.com/sarchlab/memsim/simulation"
)

// Monitor turns a session into a web server so that the allocator and the
// caches can be inspected while the shell is running.
type Monitor struct {
	sim        *simulation.Simulation
	portNumber int
	url        string

	profileDuration time.Duration

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor(sim *simulation.Simulation) *Monitor {
	return &Monitor{
		sim:             sim,
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		logging.L.Warn("monitor port not allowed, using a random port",
			"port", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of all the monitor endpoints.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/session", m.session)
	r.HandleFunc("/api/layout", m.layout)
	r.HandleFunc("/api/fragmentation", m.fragmentation)
	r.HandleFunc("/api/allocator/stats", m.allocatorStats)
	r.HandleFunc("/api/cache/stats", m.cacheStats)
	r.HandleFunc("/api/cache/info", m.cacheInfo)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	logging.L.Info("monitoring session", "url", m.url, "session", m.sim.ID())

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	return m.url
}

// OpenBrowser opens the monitor page in the default browser. The server
// must have been started.
func (m *Monitor) OpenBrowser() error {
	if m.url == "" {
		return errors.New("monitor server not started")
	}

	return browser.OpenURL(m.url)
}

type sessionRsp struct {
	ID               string   `json:"id"`
	PoolInitialized  bool     `json:"pool_initialized"`
	Capacity         uint64   `json:"capacity"`
	Strategy         string   `json:"strategy"`
	CacheInitialized bool     `json:"cache_initialized"`
	Components       []string `json:"components"`
}

func (m *Monitor) session(w http.ResponseWriter, _ *http.Request) {
	var rsp sessionRsp

	m.sim.Do(func() {
		a := m.sim.Allocator()
		rsp = sessionRsp{
			ID:               m.sim.ID(),
			PoolInitialized:  a.IsInitialized(),
			Capacity:         a.Capacity(),
			Strategy:         a.Strategy().String(),
			CacheInitialized: m.sim.Hierarchy().IsInitialized(),
			Components:       m.sim.Components(),
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) layout(w http.ResponseWriter, r *http.Request) {
	var body []byte

	m.sim.Do(func() {
		var err error
		body, err = sonic.Marshal(m.sim.Allocator().Layout())
		dieOnErr(err)
	})

	etag := fmt.Sprintf("\"%016x\"", xxh3.Hash(body))
	w.Header().Set("ETag", etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write(body)
	dieOnErr(err)
}

type fragmentationRsp struct {
	Capacity              uint64  `json:"capacity"`
	FreeBytes             uint64  `json:"free_bytes"`
	AllocatedBytes        uint64  `json:"allocated_bytes"`
	LargestFreeBlock      uint64  `json:"largest_free_block"`
	FreeSegments          int     `json:"free_segments"`
	AllocatedSegments     int     `json:"allocated_segments"`
	Utilization           float64 `json:"utilization"`
	ExternalFragmentation float64 `json:"external_fragmentation"`
	InternalFragmentation float64 `json:"internal_fragmentation"`
}

func (m *Monitor) fragmentation(w http.ResponseWriter, _ *http.Request) {
	var rsp fragmentationRsp

	m.sim.Do(func() {
		report := m.sim.Allocator().Fragmentation()
		rsp = fragmentationRsp{
			Capacity:              report.Capacity,
			FreeBytes:             report.FreeBytes,
			AllocatedBytes:        report.AllocatedBytes,
			LargestFreeBlock:      report.LargestFreeBlock,
			FreeSegments:          report.FreeSegments,
			AllocatedSegments:     report.AllocatedSegments,
			Utilization:           report.Utilization(),
			ExternalFragmentation: report.ExternalFragmentation(),
			InternalFragmentation: report.InternalFragmentation(),
		}
	})

	writeJSON(w, rsp)
}

type allocatorStatsRsp struct {
	Attempts    uint64  `json:"attempts"`
	Successes   uint64  `json:"successes"`
	Failures    uint64  `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

func (m *Monitor) allocatorStats(w http.ResponseWriter, _ *http.Request) {
	var rsp allocatorStatsRsp

	m.sim.Do(func() {
		stats := m.sim.Allocator().Stats()
		rsp = allocatorStatsRsp{
			Attempts:    stats.Attempts,
			Successes:   stats.Successes,
			Failures:    stats.Failures,
			SuccessRate: stats.SuccessRate(),
		}
	})

	writeJSON(w, rsp)
}

type levelStatsRsp struct {
	cache.Metrics
	HitRatio  float64 `json:"hit_ratio"`
	MissRatio float64 `json:"miss_ratio"`
}

func levelStatsOf(metrics cache.Metrics) levelStatsRsp {
	return levelStatsRsp{
		Metrics:   metrics,
		HitRatio:  metrics.HitRatio(),
		MissRatio: metrics.MissRatio(),
	}
}

type cacheStatsRsp struct {
	L1               levelStatsRsp `json:"l1"`
	L2               levelStatsRsp `json:"l2"`
	CombinedHitRatio float64       `json:"combined_hit_ratio"`
}

func (m *Monitor) cacheStats(w http.ResponseWriter, _ *http.Request) {
	var (
		stats cache.HierarchyStatistics
		err   error
	)

	m.sim.Do(func() {
		stats, err = m.sim.Hierarchy().Statistics()
	})

	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	writeJSON(w, cacheStatsRsp{
		L1:               levelStatsOf(stats.L1),
		L2:               levelStatsOf(stats.L2),
		CombinedHitRatio: stats.CombinedHitRatio,
	})
}

type cacheInfoRsp struct {
	L1      cache.Info   `json:"l1"`
	L2      cache.Info   `json:"l2"`
	L1Lines []cache.Line `json:"l1_lines"`
	L2Lines []cache.Line `json:"l2_lines"`
}

func (m *Monitor) cacheInfo(w http.ResponseWriter, _ *http.Request) {
	var (
		rsp cacheInfoRsp
		ok  bool
	)

	m.sim.Do(func() {
		h := m.sim.Hierarchy()
		if !h.IsInitialized() {
			return
		}

		ok = true
		rsp = cacheInfoRsp{
			L1:      h.L1().Info(),
			L2:      h.L2().Info(),
			L1Lines: h.L1().Lines(),
			L2Lines: h.L2().Lines(),
		}
	})

	if !ok {
		writeError(w, http.StatusConflict, cache.ErrNotInitialized)
		return
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.sim.Components())
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	buf := bytes.NewBuffer(nil)
	found := false

	m.sim.Do(func() {
		component, ok := m.sim.GetComponentByName(name)
		if !ok {
			return
		}

		found = true

		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)
		dieOnErr(serializer.Serialize(buf))
	})

	if !found {
		componentNotFound(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := sonic.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fields := strings.Split(req.FieldName, ".")
	buf := bytes.NewBuffer(nil)
	found := false

	m.sim.Do(func() {
		component, ok := m.sim.GetComponentByName(req.CompName)
		if !ok {
			return
		}

		found = true

		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(fields)
		if err == nil {
			err = serializer.Serialize(buf)
		}
	})

	if !found {
		componentNotFound(w)
		return
	}

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func componentNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)
}

type errorRsp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body, marshalErr := sonic.Marshal(errorRsp{Error: err.Error()})
	dieOnErr(marshalErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	dieOnErr(err)
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := sonic.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(body)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
