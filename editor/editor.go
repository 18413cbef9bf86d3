// Package editor implements the scan / rescan / poke workflow against a live
// process. Every operation opens its own handle and closes it before
// returning, so an Editor carries no per-process state and is safe for
// concurrent use.
package editor

import (
	"context"
	"runtime"

	"memedit/config"
	"memedit/process"
	"memedit/search"
	"memedit/workpool"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Editor drives a RegionEnumerator and a MemoryAccess
type Editor struct {
	regions process.RegionEnumerator
	access  process.MemoryAccess

	searcher       search.Searcher
	chunkSize      int
	ioWorkers      int
	computeWorkers int

	io      *workpool.Pool
	compute *workpool.Pool

	log     *logger.Logger
	meter   metric.Meter
	metrics *metrics
}

// Option configures an Editor
type Option func(*Editor)

// WithChunkSize sets the scan window size, values below one byte are ignored
func WithChunkSize(size int) Option {
	return func(e *Editor) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

func WithSearcher(s search.Searcher) Option {
	return func(e *Editor) {
		if s != nil {
			e.searcher = s
		}
	}
}

// WithIOWorkers bounds concurrent opens, reads and writes
func WithIOWorkers(n int) Option {
	return func(e *Editor) {
		e.ioWorkers = n
	}
}

// WithComputeWorkers bounds concurrent pattern searches, and with them the
// number of chunk buffers held in memory during a scan
func WithComputeWorkers(n int) Option {
	return func(e *Editor) {
		e.computeWorkers = n
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(e *Editor) {
		if log != nil {
			e.log = log
		}
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(e *Editor) {
		if meter != nil {
			e.meter = meter
		}
	}
}

// WithConfig applies every field of c. Options after it still override.
func WithConfig(c config.Config) Option {
	return func(e *Editor) {
		WithChunkSize(c.ChunkSize)(e)
		WithIOWorkers(c.IOWorkers)(e)
		WithComputeWorkers(c.ComputeWorkers)(e)
		WithSearcher(c.Searcher())(e)
	}
}

// New creates an Editor on top of the platform collaborators
func New(regions process.RegionEnumerator, access process.MemoryAccess, opts ...Option) *Editor {
	e := &Editor{
		regions:        regions,
		access:         access,
		searcher:       search.Default(),
		chunkSize:      config.DefaultChunkSize,
		ioWorkers:      config.DefaultIOWorkers,
		computeWorkers: runtime.NumCPU(),
		log:            logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "memory-editor")),
		meter:          otel.Meter("memedit/editor"),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.io = workpool.New("io", e.ioWorkers)
	e.compute = workpool.New("compute", e.computeWorkers)
	e.metrics = newMetrics(e.meter, e.log)

	return e
}

// ChunkSize is the scan window size in bytes
func (e *Editor) ChunkSize() int {
	return e.chunkSize
}

// open acquires a handle on the I/O pool
func (e *Editor) open(ctx context.Context, pid process.ProcessID, mode process.AccessMode) (process.Handle, error) {
	var h process.Handle
	err := e.io.Do(ctx, func() error {
		var err error
		h, err = e.access.Open(pid, mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// close releases h even when ctx is already cancelled
func (e *Editor) close(ctx context.Context, h process.Handle) {
	err := e.io.Do(context.WithoutCancel(ctx), h.Close)
	if err != nil {
		e.log.Debugln("Close handle failed:", err)
	}
}

// read performs one ReadAt on the I/O pool
func (e *Editor) read(ctx context.Context, h process.Handle, addr process.ProcessMemoryAddress, size int) ([]byte, error) {
	var buf []byte
	err := e.io.Do(ctx, func() error {
		var err error
		buf, err = h.ReadAt(addr, process.ProcessMemorySize(size))
		return err
	})
	return buf, err
}
