package editor

import (
	"context"
	"sync"
	"time"

	"memedit/process"
	"memedit/scanvalue"
)

// chunkResults collects search results that finish out of order and
// reassembles them by chunk sequence number
type chunkResults struct {
	mu      sync.Mutex
	results map[int][]process.ProcessMemoryAddress
}

func newChunkResults() *chunkResults {
	return &chunkResults{
		results: make(map[int][]process.ProcessMemoryAddress),
	}
}

func (c *chunkResults) put(seq int, addrs []process.ProcessMemoryAddress) {
	if len(addrs) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[seq] = addrs
}

// collect concatenates the results of chunks [0, n)
func (c *chunkResults) collect(n int) []process.ProcessMemoryAddress {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := []process.ProcessMemoryAddress{}
	for seq := 0; seq < n; seq++ {
		found = append(found, c.results[seq]...)
	}
	return found
}

// Scan returns every address in the readable memory of pid where the
// encoding of v occurs, in region order then ascending address.
//
// Regions are read in windows of ChunkSize bytes, each widened by the pattern
// width minus one so an occurrence straddling two windows is found by the
// first. Windows advance by ChunkSize, an occurrence is therefore reported
// once. A region that fails to read is skipped. Cancellation is checked
// before every window; the addresses found so far are returned with
// ctx.Err().
func (e *Editor) Scan(ctx context.Context, pid process.ProcessID, v scanvalue.Value) ([]process.ProcessMemoryAddress, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer e.metrics.observe(ctx, opScan, start)

	pattern := v.Encode()
	width := len(pattern)

	h, err := e.open(ctx, pid, process.ReadOnly)
	if err != nil {
		e.log.Warn("Scan failed to open process: ", err)
		return nil, err
	}
	defer e.close(ctx, h)

	var regions []process.MemoryRegion
	err = e.io.Do(ctx, func() error {
		var err error
		regions, err = e.regions.ListReadableRegions(pid)
		return err
	})
	if err != nil {
		e.log.Warn("Scan failed to enumerate regions: ", err)
		return nil, err
	}

	var (
		wg      sync.WaitGroup
		results = newChunkResults()
		seq     int
		scanErr error
		failed  int
		total   uint64
	)

regionLoop:
	for _, region := range regions {
		for off := uint64(0); off < uint64(region.Size); off += uint64(e.chunkSize) {
			if err := ctx.Err(); err != nil {
				scanErr = err
				break regionLoop
			}

			remaining := uint64(region.Size) - off
			size := min(uint64(e.chunkSize)+uint64(width-1), remaining)
			addr := region.Start + process.ProcessMemoryAddress(off)

			buf, err := e.read(ctx, h, addr, int(size))
			if err != nil {
				if ctx.Err() != nil {
					scanErr = ctx.Err()
					break regionLoop
				}
				e.log.Debugln("Skipping region", region.String(), "at", addr.ToString(), ":", err)
				failed++
				break
			}
			total += uint64(len(buf))

			n := seq
			seq++
			// a chunk already read is searched even when ctx ends meanwhile
			if err := e.compute.Go(context.WithoutCancel(ctx), &wg, func() {
				results.put(n, e.searcher.Search(buf, addr, pattern))
			}); err != nil {
				scanErr = err
				break regionLoop
			}
		}
	}

	wg.Wait()
	found := results.collect(seq)

	e.metrics.bytesRead.Add(context.WithoutCancel(ctx), int64(total))
	e.metrics.regionsFailed.Add(context.WithoutCancel(ctx), int64(failed))
	e.metrics.found(ctx, opScan, len(found))

	if scanErr != nil {
		e.log.Warn("Scan cancelled: ", scanErr)
		return found, scanErr
	}

	e.log.Infoln("Scan of", pid, "for", v.Kind().String(), v.String(), "found", len(found), "matches in",
		len(regions), "regions", "(", failed, "failed ) in", time.Since(start))
	return found, nil
}

// Rescan keeps the addresses of addrs that still hold v, in input order. An
// address that cannot be read is dropped.
func (e *Editor) Rescan(ctx context.Context, pid process.ProcessID, addrs []process.ProcessMemoryAddress, v scanvalue.Value) ([]process.ProcessMemoryAddress, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer e.metrics.observe(ctx, opRescan, start)

	h, err := e.open(ctx, pid, process.ReadOnly)
	if err != nil {
		e.log.Warn("Rescan failed to open process: ", err)
		return nil, err
	}
	defer e.close(ctx, h)

	width := v.Width()
	survivors := make([]process.ProcessMemoryAddress, 0, len(addrs))
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return survivors, err
		}

		raw, err := e.read(ctx, h, addr, width)
		if err != nil {
			if ctx.Err() != nil {
				return survivors, ctx.Err()
			}
			e.log.Debugln("Dropping", addr.ToString(), ":", err)
			continue
		}
		if len(raw) < width {
			e.log.Debugln("Dropping", addr.ToString(), ": short read of", len(raw), "bytes")
			continue
		}

		current, err := scanvalue.Decode(v.Kind(), raw)
		if err != nil {
			continue
		}
		if scanvalue.Equal(current, v) {
			survivors = append(survivors, addr)
		}
	}

	e.metrics.found(ctx, opRescan, len(survivors))
	e.log.Infoln("Rescan of", pid, "kept", len(survivors), "of", len(addrs), "addresses in", time.Since(start))
	return survivors, nil
}
