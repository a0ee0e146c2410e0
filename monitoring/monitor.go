// Package monitoring serves the memories of a running machine over HTTP so
// that they can be inspected and patched from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/mimavm/mima/memory"
)

// Monitor turns a set of memories into a server. The monitor owns the
// synchronization of the memories registered to it: once a memory is
// registered, the embedder must only access it through the Accessor returned
// by the monitor.
type Monitor struct {
	lock       sync.Mutex
	memories   map[string]*memory.Memory
	portNumber int
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		memories: make(map[string]*memory.Memory),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterMemory registers a memory to be monitored under the given name.
func (m *Monitor) RegisterMemory(name string, mem *memory.Memory) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, exists := m.memories[name]; exists {
		log.Panicf("memory %s is already registered", name)
	}

	m.memories[name] = mem
}

// Accessor returns an accessor that serializes its calls with the server. It
// returns nil if no memory is registered under name.
func (m *Monitor) Accessor(name string) memory.Accessor {
	m.lock.Lock()
	defer m.lock.Unlock()

	mem, ok := m.memories[name]
	if !ok {
		return nil
	}

	return &lockedAccessor{monitor: m, mem: mem}
}

type lockedAccessor struct {
	monitor *Monitor
	mem     *memory.Memory
}

func (a *lockedAccessor) Read(address uint32) (uint32, error) {
	a.monitor.lock.Lock()
	defer a.monitor.lock.Unlock()

	return a.mem.Read(address)
}

func (a *lockedAccessor) Write(address, value uint32) error {
	a.monitor.lock.Lock()
	defer a.monitor.lock.Unlock()

	return a.mem.Write(address, value)
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_memories", m.listMemories).Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{name}", m.memoryDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{name}/dump", m.dump).Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{name}/range", m.dumpRange).Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{name}/word/{address}", m.readWord).
		Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{name}/word/{address}", m.writeWord).
		Methods(http.MethodPut)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server in the background and
// returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring memories with %s\n", url)

	handler := m.router()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) listMemories(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.memories))
	for name := range m.memories {
		names = append(names, name)
	}
	m.lock.Unlock()

	sort.Strings(names)

	writeJSON(w, names)
}

type memorySummary struct {
	Name         string
	AddressBits  int
	WordBits     int
	Words        int
	NonZeroWords int
	Hooks        int
}

func (m *Monitor) memoryDetails(w http.ResponseWriter, r *http.Request) {
	m.withMemoryOr404(w, r, func(name string, mem *memory.Memory) {
		summary := &memorySummary{
			Name:         name,
			AddressBits:  memory.AddressBits,
			WordBits:     memory.WordBits,
			Words:        memory.AddressSpaceSize,
			NonZeroWords: mem.NonZeroWords(),
			Hooks:        mem.NumHooks(),
		}

		serializer := goseth.NewSerializer()
		serializer.SetRoot(summary)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(w)

		dieOnErr(err)
	})
}

func (m *Monitor) dump(w http.ResponseWriter, r *http.Request) {
	reverse := false

	reverseStr := r.URL.Query().Get("reverse")
	if reverseStr != "" {
		var err error

		reverse, err = strconv.ParseBool(reverseStr)
		if err != nil {
			badRequest(w, err)
			return
		}
	}

	m.withMemoryOr404(w, r, func(_ string, mem *memory.Memory) {
		writeText(w, mem.FormatAll(reverse))
	})
}

func (m *Monitor) dumpRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseNumber(r.URL.Query().Get("start"), "start")
	if err != nil {
		badRequest(w, err)
		return
	}

	end, err := parseNumber(r.URL.Query().Get("end"), "end")
	if err != nil {
		badRequest(w, err)
		return
	}

	m.withMemoryOr404(w, r, func(_ string, mem *memory.Memory) {
		text, err := mem.FormatRange(start, end)
		if err != nil {
			badRequest(w, err)
			return
		}

		writeText(w, text)
	})
}

type wordRsp struct {
	Address       uint32 `json:"address"`
	Value         uint32 `json:"value"`
	AddressBinary string `json:"address_binary"`
	ValueBinary   string `json:"value_binary"`
}

func newWordRsp(address, value uint32) wordRsp {
	addressBinary, err := memory.EncodeFixedWidthBinary(
		uint64(address), memory.AddressBits)
	dieOnErr(err)

	valueBinary, err := memory.EncodeFixedWidthBinary(
		uint64(value), memory.WordBits)
	dieOnErr(err)

	return wordRsp{
		Address:       address,
		Value:         value,
		AddressBinary: addressBinary,
		ValueBinary:   valueBinary,
	}
}

func (m *Monitor) readWord(w http.ResponseWriter, r *http.Request) {
	address, err := parseNumber(mux.Vars(r)["address"], "address")
	if err != nil {
		badRequest(w, err)
		return
	}

	m.withMemoryOr404(w, r, func(_ string, mem *memory.Memory) {
		value, err := mem.Read(address)
		if err != nil {
			badRequest(w, err)
			return
		}

		writeJSON(w, newWordRsp(address, value))
	})
}

func (m *Monitor) writeWord(w http.ResponseWriter, r *http.Request) {
	address, err := parseNumber(mux.Vars(r)["address"], "address")
	if err != nil {
		badRequest(w, err)
		return
	}

	value, err := parseNumber(r.URL.Query().Get("value"), "value")
	if err != nil {
		badRequest(w, err)
		return
	}

	m.withMemoryOr404(w, r, func(_ string, mem *memory.Memory) {
		err := mem.Write(address, value)
		if err != nil {
			badRequest(w, err)
			return
		}

		writeJSON(w, newWordRsp(address, value))
	})
}

// withMemoryOr404 runs f while holding the monitor lock, or replies 404 if
// the memory named in the route is not registered.
func (m *Monitor) withMemoryOr404(
	w http.ResponseWriter,
	r *http.Request,
	f func(name string, mem *memory.Memory),
) {
	name := mux.Vars(r)["name"]

	m.lock.Lock()
	defer m.lock.Unlock()

	mem, ok := m.memories[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Memory not found"))
		dieOnErr(err)

		return
	}

	f(name, mem)
}

// parseNumber accepts decimal numbers and numbers with a 0x, 0o, or 0b
// prefix.
func parseNumber(s, what string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("missing %s", what)
	}

	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}

		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}

	return uint32(n), nil
}

func badRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Error: %s", err)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(text))
	dieOnErr(err)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
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

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
