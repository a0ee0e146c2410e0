package cmd

import (
	"fmt"
	"io"
	stdlog "log"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/mimavm/mima/datarecording"
	"github.com/mimavm/mima/memory"
	"github.com/mimavm/mima/memory/trace"
)

// mainMemoryName names the memory in traces and on the monitor.
const mainMemoryName = "main"

// buildMemory creates the main memory described by cfg. The image is loaded
// first; tracers are attached afterwards so that only the pokes and later
// accesses are traced. The returned function releases the tracers.
func buildMemory(cfg *config) (*memory.Memory, func(), error) {
	mem := memory.NewMemory()
	closers := []io.Closer{}

	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Warnf("closing tracer: %v", err)
			}
		}
	}

	if cfg.image != "" {
		err := loadImage(mem, cfg.image)
		if err != nil {
			return nil, nil, err
		}
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		w := log.StandardLogger().WriterLevel(log.DebugLevel)
		closers = append(closers, w)
		mem.AcceptHook(trace.NewTracer(stdlog.New(w, "", 0)))
	}

	if cfg.traceDB != "" {
		recorder := datarecording.New(cfg.traceDB)
		closers = append(closers, recorder)
		mem.AcceptHook(trace.NewDBTracer(recorder, mainMemoryName))
	}

	for _, p := range cfg.pokes {
		err := mem.Write(p.address, p.value)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("setting word: %w", err)
		}
	}

	return mem, cleanup, nil
}

func loadImage(mem *memory.Memory, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = mem.Load(f)
	if err != nil {
		return fmt.Errorf("loading image %s: %w", path, err)
	}

	log.Debugf("loaded image %s, %d non-zero words", path, mem.NonZeroWords())

	return nil
}
