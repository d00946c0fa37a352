// Package monitoring exposes a scan run as a small web server so that the
// run can be started, reset, and observed from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/monitoring/web"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

const maxStoredReports = 64

// Monitor turns a scan run into a server and allows external controlling of
// the run.
type Monitor struct {
	engine     sim.Engine
	scanner    *scan.Scanner
	portNumber int

	reportsLock sync.Mutex
	reports     []dna.Report
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that drives the run.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterScanner registers the scanner to control and subscribes to its
// cycle reports.
func (m *Monitor) RegisterScanner(s *scan.Scanner) {
	m.scanner = s
	s.AcceptHook(m)
}

// Func captures cycle reports so that the web page can list them.
func (m *Monitor) Func(ctx sim.HookCtx) {
	if ctx.Pos != scan.HookPosCycleReport {
		return
	}

	report := ctx.Item.(dna.Report)

	m.reportsLock.Lock()
	defer m.reportsLock.Unlock()

	m.reports = append(m.reports, report)
	if len(m.reports) > maxStoredReports {
		m.reports = m.reports[len(m.reports)-maxStoredReports:]
	}
}

// StartServer starts the monitor as a web server and returns the URL it
// serves on.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/start", m.startRun)
	r.HandleFunc("/api/reset", m.resetRun)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/baseline", m.baseline)
	r.HandleFunc("/api/cycles", m.listCycleReports)
	r.HandleFunc("/api/response_script", m.responseScript)
	r.HandleFunc("/api/progress", m.listProgress)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/scanner", m.scannerDetails)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring scan run with %s\n", url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) startRun(w http.ResponseWriter, _ *http.Request) {
	err := m.scanner.Start()
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "{\"error\":%q}", err.Error())
		return
	}

	go func() {
		runErr := m.engine.Run()
		if runErr != nil {
			panic(runErr)
		}
	}()

	fmt.Fprintf(w, "{\"run_id\":%q}", m.scanner.RunID())
}

func (m *Monitor) resetRun(w http.ResponseWriter, _ *http.Request) {
	m.scanner.Reset()

	m.reportsLock.Lock()
	m.reports = nil
	m.reportsLock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.scanner.State())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) baseline(w http.ResponseWriter, _ *http.Request) {
	baseline := m.scanner.Baseline()

	display := make(map[string]string, len(baseline))
	for metric, r := range baseline {
		display[string(metric)] = r.String()
	}

	bytes, err := json.Marshal(display)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listCycleReports(w http.ResponseWriter, _ *http.Request) {
	m.reportsLock.Lock()
	reports := make([]dna.Report, len(m.reports))
	copy(reports, m.reports)
	m.reportsLock.Unlock()

	bytes, err := json.Marshal(reports)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) responseScript(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(scan.ResponseSteps)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	bar := progressFromState(m.scanner.RunID(), m.scanner.State())

	bytes, err := json.Marshal(bar)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) scannerDetails(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.scanner)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
