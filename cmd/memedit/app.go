package main

import (
	"fmt"
	"strings"

	"memedit/config"
	"memedit/editor"
	"memedit/process"
	"memedit/scanvalue"

	"github.com/samber/lo"
	"github.com/urfave/cli"
)

const usage = `memedit finds values in the memory of a running process and changes them.
   Scan for a value, let it change in the target, rescan the candidates for
   the new value, and write to what is left.`

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "memedit"
	app.Usage = usage
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file",
		},
		cli.IntFlag{
			Name:  "chunk-size",
			Usage: "scan window size in bytes, overrides the configuration",
		},
		cli.StringFlag{
			Name:  "algorithm",
			Usage: "search algorithm (brute, bm, bm-gs), overrides the configuration",
		},
	}
	app.Commands = []cli.Command{
		psCommand,
		kindsCommand,
		configCommand,
		scanCommand,
		rescanCommand,
		readCommand,
		writeCommand,
		selftestCommand,
	}
	return app
}

var pidFlag = cli.IntFlag{
	Name:  "pid, p",
	Usage: "target process id",
}

var typeFlag = cli.StringFlag{
	Name:  "type, t",
	Value: "int",
	Usage: "value type: int, float, long, double or string",
}

var limitFlag = cli.IntFlag{
	Name:  "limit, n",
	Value: 100,
	Usage: "print at most this many addresses, 0 prints all",
}

// loadConfig resolves the configuration from the global flags
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	if c.GlobalIsSet("chunk-size") {
		cfg.ChunkSize = c.GlobalInt("chunk-size")
	}
	if c.GlobalIsSet("algorithm") {
		cfg.Algorithm = c.GlobalString("algorithm")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newEditor(c *cli.Context, b process.Backend) (*editor.Editor, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return editor.New(b, b, editor.WithConfig(cfg)), nil
}

func targetPID(c *cli.Context) (process.ProcessID, error) {
	pid := c.Int("pid")
	if pid <= 0 {
		return 0, fmt.Errorf("--pid is required")
	}
	return process.ProcessID(pid), nil
}

func parseKind(c *cli.Context) (scanvalue.Kind, error) {
	return scanvalue.ParseKind(c.String("type"))
}

func parseAddresses(args []string) ([]process.ProcessMemoryAddress, error) {
	addrs := make([]process.ProcessMemoryAddress, 0, len(args))
	for _, arg := range args {
		addr, err := process.ParseAddress(arg)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// formatAddresses renders addrs four per line, truncated to limit
func formatAddresses(addrs []process.ProcessMemoryAddress, limit int) string {
	shown := addrs
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	hex := lo.Map(shown, func(a process.ProcessMemoryAddress, _ int) string {
		return fmt.Sprintf("%18s", a.ToString())
	})

	lines := lo.Map(lo.Chunk(hex, 4), func(row []string, _ int) string {
		return strings.Join(row, " ")
	})

	if len(shown) < len(addrs) {
		lines = append(lines, fmt.Sprintf("... %d more", len(addrs)-len(shown)))
	}
	return strings.Join(lines, "\n")
}
