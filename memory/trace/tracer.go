// Package trace provides hooks that record the accesses made to a memory.
package trace

import (
	"log"

	"github.com/rs/xid"

	"github.com/mimavm/mima/datarecording"
	"github.com/mimavm/mima/memory"
)

// AccessTableName is the table that the database tracer records into.
const AccessTableName = "memory_accesses"

// accessEntry represents a memory access in the database
type accessEntry struct {
	ID       string
	Seq      uint64
	Memory   string
	What     string
	Address  uint32
	Value    uint32
	Previous uint32
}

// A tracer is a hook that prints every access as a line of text.
type tracer struct {
	logger *log.Logger
}

// NewTracer creates a hook that prints accesses with the given logger.
func NewTracer(logger *log.Logger) memory.Hook {
	return &tracer{logger: logger}
}

func (t *tracer) Func(ctx memory.HookCtx) {
	access, ok := ctx.Item.(memory.Access)
	if !ok {
		return
	}

	switch ctx.Pos {
	case memory.HookPosRead:
		t.logger.Printf("read, 0x%05x, 0x%06x\n", access.Address, access.Value)
	case memory.HookPosWrite:
		previous, _ := ctx.Detail.(uint32)
		t.logger.Printf("write, 0x%05x, 0x%06x, 0x%06x\n",
			access.Address, access.Value, previous)
	}
}

// A dbTracer is a hook that records accesses into a database through a data
// recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
	name         string
	seq          uint64
}

// NewDBTracer creates a hook that records the accesses of the memory called
// name. It creates the access table, so only one database tracer can share a
// recorder.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	name string,
) memory.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
		name:         name,
	}

	t.dataRecorder.CreateTable(AccessTableName, accessEntry{})

	return t
}

func (t *dbTracer) Func(ctx memory.HookCtx) {
	access, ok := ctx.Item.(memory.Access)
	if !ok {
		return
	}

	entry := accessEntry{
		ID:      xid.New().String(),
		Seq:     t.seq,
		Memory:  t.name,
		What:    ctx.Pos.Name,
		Address: access.Address,
		Value:   access.Value,
	}

	if previous, ok := ctx.Detail.(uint32); ok {
		entry.Previous = previous
	}

	t.seq++
	t.dataRecorder.InsertData(AccessTableName, entry)
}
