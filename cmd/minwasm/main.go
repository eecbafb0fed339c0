package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tetratelabs/minwasm"
	"github.com/tetratelabs/minwasm/internal/version"
)

func main() {
	doMain(os.Stdout, os.Stderr, os.Exit)
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "print usage")

	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		exit(0)
		return
	}

	subCmd := flag.Arg(0)
	switch subCmd {
	case "run":
		doRun(flag.Args()[1:], stdOut, stdErr, exit)
	case "inspect":
		doInspect(flag.Args()[1:], stdOut, stdErr, exit)
	case "version":
		fmt.Fprintln(stdOut, version.GetMinwasmVersion())
		exit(0)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		exit(1)
	}
}

func doRun(args []string, stdOut, stdErr io.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var verbose bool
	flags.BoolVar(&verbose, "v", false, "log decoding and execution to stderr")

	var stackHeightLimit int
	flags.IntVar(&stackHeightLimit, "stack-height-limit", 0,
		"maximum count of values on the operand stack. Zero means the default.")

	if err := flags.Parse(args); err != nil {
		exit(1)
		return
	}

	if help {
		printRunUsage(stdErr, flags)
		exit(0)
		return
	}

	if flags.NArg() < 2 {
		fmt.Fprintln(stdErr, "missing path to wasm file or export name")
		printRunUsage(stdErr, flags)
		exit(1)
		return
	}
	wasmPath, exportName := flags.Arg(0), flags.Arg(1)

	params, err := parseParams(flags.Args()[2:])
	if err != nil {
		fmt.Fprintf(stdErr, "invalid param: %v\n", err)
		exit(1)
		return
	}

	source, err := os.ReadFile(wasmPath)
	if err != nil {
		fmt.Fprintf(stdErr, "error reading wasm binary: %v\n", err)
		exit(1)
		return
	}

	config := minwasm.NewRuntimeConfig().WithStackHeightLimit(stackHeightLimit)
	if verbose {
		logger := newLogger(stdErr)
		defer logger.Sync() //nolint
		config = config.WithLogger(logger)
	}
	rt := minwasm.NewRuntimeWithConfig(config)

	module, err := rt.DecodeModule(source)
	if err != nil {
		fmt.Fprintf(stdErr, "error decoding wasm binary: %v\n", err)
		exit(1)
		return
	}

	result, err := module.Invoke(context.Background(), exportName, params...)
	if err != nil {
		fmt.Fprintf(stdErr, "error invoking %s: %v\n", exportName, err)
		exit(1)
		return
	}
	fmt.Fprintln(stdOut, result)
	exit(0)
}

// parseParams parses each arg as a signed decimal i32, ex. "-1". A leading "--" is skipped.
func parseParams(args []string) ([]int32, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return nil, nil
	}
	params := make([]int32, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			return nil, err
		}
		params = append(params, int32(v))
	}
	return params, nil
}

// newLogger returns a development logger writing to w, without timestamps so output is stable.
func newLogger(w io.Writer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core)
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "minwasm CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  minwasm <command>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  inspect\tPrints the sections of a WebAssembly binary")
	fmt.Fprintln(stdErr, "  run\t\tInvokes an exported function of a WebAssembly binary")
	fmt.Fprintln(stdErr, "  version\tDisplays the version of minwasm CLI")
}

func printRunUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "minwasm CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  minwasm run <options> <path to wasm file> <export name> [--] <i32 params>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}

func printInspectUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "minwasm CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  minwasm inspect <options> <path to wasm file>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}
