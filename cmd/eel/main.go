// Command eel is the EEL runtime driver: load one or more
// compiled module images, optionally inspect their exports, and invoke an
// exported function with host-supplied arguments.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/values"
	"github.com/eel-lang/eel/vm"
)

func main() {
	cmd := &cli.Command{
		Name:  "eel",
		Usage: "load and run a compiled EEL module image",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "load", Aliases: []string{"l"}, Usage: "additional module image to load before the main module (repeatable)"},
			&cli.StringFlag{Name: "call", Aliases: []string{"c"}, Value: "main", Usage: "exported function to invoke in the main module"},
			&cli.StringSliceFlag{Name: "arg", Aliases: []string{"a"}, Usage: "string argument to pass to the called function (repeatable)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the run's diagnostic ring to this file instead of stderr"},
			&cli.BoolFlag{Name: "exports", Aliases: []string{"e"}, Usage: "list the main module's exports and exit, without calling anything"},
			&cli.BoolFlag{Name: "silent", Aliases: []string{"s"}, Usage: "suppress the call result on stdout"},
			&cli.BoolFlag{Name: "trace", Usage: "run with instruction-level tracing enabled"},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "image", UsageText: "path to the main module's compiled image"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	imagePath := cmd.StringArg("image")
	if imagePath == "" {
		return fmt.Errorf("eel: an image path is required")
	}

	debug := vm.DebugErrors
	if cmd.Bool("trace") {
		debug = vm.DebugTrace
	}
	h := host.Open(host.Options{Debug: debug})
	defer func() {
		if err := h.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "eel: close:", err)
		}
	}()

	for _, dep := range cmd.StringSlice("load") {
		if _, err := h.LoadFile(dep); err != nil {
			return fmt.Errorf("eel: loading %q: %w", dep, err)
		}
	}

	m, err := h.LoadFile(imagePath)
	if err != nil {
		return fmt.Errorf("eel: loading %q: %w", imagePath, err)
	}

	if cmd.Bool("exports") {
		for _, name := range m.Exports() {
			fmt.Println(name)
		}
		return nil
	}

	var callArgs []interface{}
	for _, a := range cmd.StringSlice("arg") {
		callArgs = append(callArgs, a)
	}
	format := ""
	for range callArgs {
		format += "s"
	}

	args, err := h.Argf(format, callArgs...)
	if err != nil {
		return fmt.Errorf("eel: building arguments: %w", err)
	}

	fn, ok := m.Lookup(cmd.String("call"))
	if !ok {
		return fmt.Errorf("eel: module %q has no export %q", m.Name, cmd.String("call"))
	}

	result, err := h.Call(fn, args)
	if err != nil {
		h.PError(os.Stderr, "eel", err)
		dumpDiagnostics(h, cmd.String("out"))
		os.Exit(1)
	}
	if !cmd.Bool("silent") {
		printResult(result)
	}
	return nil
}

func printResult(v values.Value) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("=> %s\n", v.String())
		return
	}
	fmt.Println(v.String())
}

func dumpDiagnostics(h *host.Host, outPath string) {
	lines := h.VM.Diagnostics()
	if len(lines) == 0 {
		return
	}
	w := os.Stderr
	if outPath != "" {
		f, err := os.Create(outPath)
		if err == nil {
			defer f.Close()
			for _, l := range lines {
				fmt.Fprintln(f, l)
			}
			return
		}
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
