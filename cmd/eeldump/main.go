// Command eeldump is an interactive inspector for compiled EEL module
// images: list functions and exports, disassemble a function's
// instruction stream, and print heap statistics. It does not execute or
// single-step any function.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/eel-lang/eel/bytecode"
	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/opcodes"
)

func main() {
	cmd := &cli.Command{
		Name:  "eeldump",
		Usage: "inspect a compiled EEL module image",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stats", Aliases: []string{"s"}, Usage: "print heap/refcount statistics after loading and exit"},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "image", UsageText: "path to the module's compiled image"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "eeldump:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("image")
	if path == "" {
		return fmt.Errorf("an image path is required")
	}

	img, err := bytecode.LoadModuleFile(path)
	if err != nil {
		return err
	}

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer(path, bytecode.Encode(img))
	if err != nil {
		return err
	}

	fmt.Printf("loaded %s (%s, %d functions, %d exports)\n",
		path, humanize.Bytes(uint64(len(bytecode.Encode(img)))), len(img.Functions), len(img.Exports))

	if cmd.Bool("stats") {
		printStats(h)
		return nil
	}

	rl, err := readline.New("eeldump> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return err
		}
		dispatch(strings.TrimSpace(line), img, m, h)
	}
}

func printStats(h *host.Host) {
	s := h.Stats()
	fmt.Printf("live objects:      %s\n", humanize.Comma(s.LiveObjects))
	fmt.Printf("total allocations: %s\n", humanize.Comma(s.TotalAllocated))
}

func dispatch(line string, img *bytecode.Image, m interface{ Exports() []string }, h *host.Host) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "exports":
		for _, name := range m.Exports() {
			fmt.Println(name)
		}
	case "funcs":
		for i, fe := range img.Functions {
			fmt.Printf("%4d  %-20s  req=%d opt=%d tup=%d regs=%d code=%s\n",
				i, img.Names[fe.NameIndex], fe.ReqArgs, fe.OptArgs, fe.TupArg, fe.NumRegisters,
				humanize.Bytes(uint64(len(fe.Code))))
		}
	case "dis":
		if len(fields) < 2 {
			fmt.Println("usage: dis <function-index>")
			return
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil || idx < 0 || idx >= len(img.Functions) {
			fmt.Println("no such function")
			return
		}
		disassemble(img.Functions[idx].Code)
	case "stats":
		printStats(h)
	case "help":
		fmt.Println("commands: exports, funcs, dis <index>, stats, quit")
	case "quit", "exit":
		os.Exit(0)
	default:
		fmt.Printf("unknown command %q (try: help)\n", fields[0])
	}
}

func disassemble(code []byte) {
	off := 0
	for off < len(code) {
		inst, next, err := opcodes.Decode(code, off)
		if err != nil {
			fmt.Printf("%6d  <decode error: %v>\n", off, err)
			return
		}
		operands := make([]string, inst.NumOps)
		for i := range operands {
			operands[i] = strconv.Itoa(int(inst.Op(i)))
		}
		fmt.Printf("%6d  %-10s %s\n", off, inst.Opcode, strings.Join(operands, ", "))
		off = next
	}
}
