package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/binary"
)

func doInspect(args []string, stdOut, stdErr io.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var color string
	flags.StringVar(&color, "color", "auto", "when to style output: auto, always or never")

	if err := flags.Parse(args); err != nil {
		exit(1)
		return
	}

	if help {
		printInspectUsage(stdErr, flags)
		exit(0)
		return
	}

	useColor, err := shouldColor(color, stdOut)
	if err != nil {
		fmt.Fprintln(stdErr, err)
		printInspectUsage(stdErr, flags)
		exit(1)
		return
	}

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to wasm file")
		printInspectUsage(stdErr, flags)
		exit(1)
		return
	}
	wasmPath := flags.Arg(0)

	source, err := os.ReadFile(wasmPath)
	if err != nil {
		fmt.Fprintf(stdErr, "error reading wasm binary: %v\n", err)
		exit(1)
		return
	}

	m, err := binary.DecodeModule(source)
	if err != nil {
		fmt.Fprintf(stdErr, "error decoding wasm binary: %v\n", err)
		exit(1)
		return
	}

	p := newPrinter(stdOut, useColor)
	p.module(filepath.Base(wasmPath), len(source), m)
	exit(0)
}

// shouldColor resolves the -color flag. "auto" styles only when stdOut is a terminal.
func shouldColor(mode string, stdOut io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := stdOut.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid color: %s", mode)
	}
}

type printer struct {
	w     io.Writer
	color bool

	titleStyle, sectionStyle, funcStyle, typeStyle, exportStyle lipgloss.Style
}

func newPrinter(w io.Writer, color bool) *printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)
	return &printer{
		w:            w,
		color:        color,
		titleStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")),
		sectionStyle: r.NewStyle().Bold(true),
		funcStyle:    r.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		typeStyle:    r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		exportStyle:  r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	}
}

func (p *printer) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// module prints each section of m in the order of the binary format, with function bodies in the text format.
func (p *printer) module(name string, size int, m *wasm.Module) {
	fmt.Fprintf(p.w, "%s (%d bytes)\n", p.paint(p.titleStyle, name), size)

	fmt.Fprintf(p.w, "%s (%d):\n", p.paint(p.sectionStyle, "types"), len(m.TypeSection))
	for i, ft := range m.TypeSection {
		fmt.Fprintf(p.w, "  [%d] %s\n", i, p.paint(p.typeStyle, signature(ft)))
	}

	fmt.Fprintf(p.w, "%s (%d):\n", p.paint(p.sectionStyle, "functions"), len(m.FunctionSection))
	for i, f := range m.FunctionSection {
		sig := "?"
		if ft := m.TypeOfFunction(wasm.Index(i)); ft != nil {
			sig = signature(ft)
		}
		fmt.Fprintf(p.w, "  [%d] %s %s\n", i, p.paint(p.funcStyle, fmt.Sprintf("type[%d]", f.TypeIndex)), p.paint(p.typeStyle, sig))
		if len(f.LocalTypes) > 0 {
			fmt.Fprintf(p.w, "    %s\n", p.paint(p.typeStyle, valueTypes("local", f.LocalTypes)))
		}
		for _, in := range f.Body {
			fmt.Fprintf(p.w, "    %s\n", in)
		}
	}

	fmt.Fprintf(p.w, "%s (%d):\n", p.paint(p.sectionStyle, "exports"), len(m.ExportSection))
	for _, e := range m.ExportSection {
		fmt.Fprintf(p.w, "  %s %s[%d]\n", p.paint(p.exportStyle, fmt.Sprintf("%q", e.Name)), wasm.ExportKindName(e.Kind), e.Index)
	}
}

// signature returns the text format of ft, ex. "(param i32 i32) (result i32)".
func signature(ft *wasm.FunctionType) string {
	parts := make([]string, 0, 2)
	if len(ft.Params) > 0 {
		parts = append(parts, valueTypes("param", ft.Params))
	}
	if len(ft.Results) > 0 {
		parts = append(parts, valueTypes("result", ft.Results))
	}
	if len(parts) == 0 {
		return "()"
	}
	return strings.Join(parts, " ")
}

func valueTypes(keyword string, vts []wasm.ValueType) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(keyword)
	for _, vt := range vts {
		b.WriteByte(' ')
		b.WriteString(wasm.ValueTypeName(vt))
	}
	b.WriteByte(')')
	return b.String()
}
