// ya6502 emulates a 6502 machine with a 64k flat address space. It
// loads a raw ROM image at address 0, resets through the vector at
// 0xFFFC and hands control to the interactive monitor (or the full
// screen debugger with --tui).
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/apexdev/ya6502/cpu"
	"github.com/apexdev/ya6502/memory"
	"github.com/apexdev/ya6502/monitor"
)

func main() {
	app := &cli.App{
		Name:  "ya6502",
		Usage: "Yet another 6502 emulator with an interactive debugger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cpu",
				Aliases: []string{"t"},
				Usage:   "CPU variant (MOS or NES)",
				Value:   "MOS",
			},
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "log each executed instruction to this file",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "full screen debugger instead of the line monitor",
			},
		},
		ArgsUsage: "[rom]",
		Action:    run,
	}
	app.Run(os.Args)
}

func run(ctx *cli.Context) error {
	var typ cpu.CPUType
	switch ctx.String("cpu") {
	case "MOS":
		typ = cpu.CPU_MOS
	case "NES":
		typ = cpu.CPU_NES
	default:
		return cli.Exit(fmt.Sprintf("unknown cpu type %q", ctx.String("cpu")), 1)
	}

	mem := memory.NewMMU()
	if rom := ctx.Args().First(); rom != "" {
		fmt.Printf("Attempting to load ROM: %s\n", rom)
		b, err := os.ReadFile(rom)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: Could not open ROM file: %v", err), 1)
		}
		mem.LoadImage(b)
	} else {
		fmt.Println("No ROM provided.")
	}

	c, err := cpu.Init(&cpu.ChipDef{Cpu: typ, Mem: mem})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if ctx.Bool("tui") {
		if err := monitor.Debug(c, mem); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	m := monitor.New(c, mem, os.Stdin, os.Stdout)
	if path := ctx.String("log"); path != "" {
		m.SetLogPath(path)
	}
	return m.Run()
}
