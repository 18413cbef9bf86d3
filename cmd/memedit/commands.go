package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"

	"memedit/process"
	"memedit/processes"
	"memedit/scanvalue"

	"github.com/urfave/cli"
)

// signalContext is cancelled on interrupt so a long scan returns what it found
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

var psCommand = cli.Command{
	Name:      "ps",
	Usage:     "list processes, optionally only those with the given name",
	ArgsUsage: "[name]",
	Action: func(c *cli.Context) error {
		l := processes.New()

		var (
			procs []process.ProcessInfo
			err   error
		)
		if name := c.Args().First(); name != "" {
			procs, err = l.FindProcessByName(name)
		} else {
			procs, err = l.ListProcesses()
		}
		if err != nil {
			return err
		}

		for _, p := range procs {
			fmt.Printf("%8d  %s\n", p.PID, p.Name)
		}
		return nil
	},
}

var kindsCommand = cli.Command{
	Name:  "kinds",
	Usage: "list the value types",
	Action: func(c *cli.Context) error {
		for _, k := range scanvalue.Kinds() {
			fmt.Printf("%-8s %s\n", k.String(), k.Description())
		}
		return nil
	},
}

var configCommand = cli.Command{
	Name:  "config",
	Usage: "print the effective configuration as YAML",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		return cfg.Write(os.Stdout)
	},
}

var scanCommand = cli.Command{
	Name:      "scan",
	Usage:     "find every address holding a value",
	ArgsUsage: "<value>",
	Flags:     []cli.Flag{pidFlag, typeFlag, limitFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one value")
		}

		pid, err := targetPID(c)
		if err != nil {
			return err
		}
		kind, err := parseKind(c)
		if err != nil {
			return err
		}
		v, err := scanvalue.Parse(kind, c.Args().First())
		if err != nil {
			return err
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		e, err := newEditor(c, b)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		found, err := e.Scan(ctx, pid, v)
		fmt.Printf("Found %d addresses holding %s %s\n", len(found), kind.String(), v.String())
		if len(found) > 0 {
			fmt.Println(formatAddresses(found, c.Int("limit")))
		}
		return err
	},
}

var rescanCommand = cli.Command{
	Name:      "rescan",
	Usage:     "keep the addresses that now hold a value",
	ArgsUsage: "<value> <address>...",
	Flags:     []cli.Flag{pidFlag, typeFlag, limitFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return fmt.Errorf("expected a value and at least one address")
		}

		pid, err := targetPID(c)
		if err != nil {
			return err
		}
		kind, err := parseKind(c)
		if err != nil {
			return err
		}
		v, err := scanvalue.Parse(kind, c.Args().First())
		if err != nil {
			return err
		}
		addrs, err := parseAddresses(c.Args().Tail())
		if err != nil {
			return err
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		e, err := newEditor(c, b)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		kept, err := e.Rescan(ctx, pid, addrs, v)
		fmt.Printf("%d of %d addresses hold %s %s\n", len(kept), len(addrs), kind.String(), v.String())
		if len(kept) > 0 {
			fmt.Println(formatAddresses(kept, c.Int("limit")))
		}
		return err
	},
}

var readCommand = cli.Command{
	Name:      "read",
	Usage:     "show the current value at addresses",
	ArgsUsage: "<address>...",
	Flags: []cli.Flag{
		pidFlag,
		typeFlag,
		cli.IntFlag{
			Name:  "width, w",
			Usage: "bytes to read, required for strings",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("expected at least one address")
		}

		pid, err := targetPID(c)
		if err != nil {
			return err
		}
		kind, err := parseKind(c)
		if err != nil {
			return err
		}
		addrs, err := parseAddresses(c.Args())
		if err != nil {
			return err
		}

		width := c.Int("width")
		if width <= 0 {
			if width, err = kind.Width(); err != nil {
				return fmt.Errorf("%w, pass --width", err)
			}
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		e, err := newEditor(c, b)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		for _, addr := range addrs {
			raw, err := e.ReadValue(ctx, pid, addr, width)
			if err != nil {
				fmt.Printf("%18s  %v\n", addr.ToString(), err)
				continue
			}
			fmt.Printf("%18s  %-20s %s\n", addr.ToString(), scanvalue.Format(kind, raw), hex.EncodeToString(raw))
		}
		return nil
	},
}

var writeCommand = cli.Command{
	Name:      "write",
	Usage:     "write a value at an address",
	ArgsUsage: "<address> <value>",
	Flags:     []cli.Flag{pidFlag, typeFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("expected an address and a value")
		}

		pid, err := targetPID(c)
		if err != nil {
			return err
		}
		kind, err := parseKind(c)
		if err != nil {
			return err
		}
		addrs, err := parseAddresses(c.Args()[:1])
		if err != nil {
			return err
		}
		v, err := scanvalue.Parse(kind, c.Args().Get(1))
		if err != nil {
			return err
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		e, err := newEditor(c, b)
		if err != nil {
			return err
		}

		result, err := e.WriteValue(context.Background(), pid, addrs[0], v)
		fmt.Printf("Write %s %s at %s: %s\n", kind.String(), v.String(), addrs[0].ToString(), result.String())
		return err
	},
}
