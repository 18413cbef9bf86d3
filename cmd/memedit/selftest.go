package main

import (
	"context"
	"fmt"
	"slices"

	"memedit/editor"
	"memedit/process"
	"memedit/process_blob"
	"memedit/scanvalue"

	"github.com/urfave/cli"
)

const selftestPID process.ProcessID = 1

// selftestBlob builds a simulated process holding a health counter of 100
// at two places, one of them straddling a chunk boundary
func selftestBlob(chunkSize int) (*process_blob.ProcessBlob, []process.ProcessMemoryAddress) {
	const base = process.ProcessMemoryAddress(0x400000)

	data := make([]byte, 3*chunkSize)
	hits := []int{128, chunkSize - 2}

	health := scanvalue.Int32Value(100).Encode()
	want := make([]process.ProcessMemoryAddress, 0, len(hits))
	for _, off := range hits {
		copy(data[off:], health)
		want = append(want, base+process.ProcessMemoryAddress(off))
	}

	blob := process_blob.NewProcessBlob(selftestPID).
		AddRegion(base, data).
		AddUnreadableRegion(base+process.ProcessMemoryAddress(len(data)), 4096).
		AddRegion(0x900000, []byte{0x64})
	return blob, want
}

var selftestCommand = cli.Command{
	Name:  "selftest",
	Usage: "run scan, rescan and write against a simulated process",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		blob, want := selftestBlob(cfg.ChunkSize)
		e := editor.New(blob, blob, editor.WithConfig(cfg))
		ctx := context.Background()

		found, err := e.Scan(ctx, selftestPID, scanvalue.Int32Value(100))
		if err != nil {
			return err
		}
		if !slices.Equal(found, want) {
			return fmt.Errorf("scan found %v, want %v", found, want)
		}
		fmt.Printf("scan: %d candidates\n%s\n", len(found), formatAddresses(found, 0))

		// the target loses health at one of the candidates
		if r, err := e.WriteValue(ctx, selftestPID, found[1], scanvalue.Int32Value(93)); err != nil {
			return fmt.Errorf("write: %s: %w", r.String(), err)
		}

		kept, err := e.Rescan(ctx, selftestPID, found, scanvalue.Int32Value(93))
		if err != nil {
			return err
		}
		if len(kept) != 1 || kept[0] != found[1] {
			return fmt.Errorf("rescan kept %v, want [%s]", kept, found[1].ToString())
		}
		fmt.Printf("rescan: %s\n", kept[0].ToString())

		blob.SetWriteLimit(2)
		r, err := e.WriteValue(ctx, selftestPID, kept[0], scanvalue.Int32Value(999))
		if r != editor.WritePartial {
			return fmt.Errorf("partial write reported %s: %v", r.String(), err)
		}
		fmt.Printf("partial write: %s (%v)\n", r.String(), err)

		if n := blob.OpenHandles(); n != 0 {
			return fmt.Errorf("%d handles left open", n)
		}

		fmt.Println("selftest passed")
		return nil
	},
}
