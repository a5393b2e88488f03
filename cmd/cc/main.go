// Command cc drives the compiler's CompileFile pipeline over a single
// source file and prints its diagnostics. It does not format, link, or
// colorize output -- it is a thin harness over the cc package, not the
// product surface the library describes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/claretecc/cc"
)

type args struct {
	searchPath *string
	maxErrors  *int
	debugLex   *bool
	debugAST   *bool
	debugHIR   *bool
	inputPath  *string
}

func readArgs() *args {
	a := &args{
		searchPath: flag.String("search-path", "", "comma-separated list of directories searched for #include \"...\""),
		maxErrors:  flag.Int("max-errors", 0, "stop recording errors after this many (0 = unlimited)"),
		debugLex:   flag.Bool("debug-lex", false, "trace the token stream"),
		debugAST:   flag.Bool("debug-ast", false, "trace the parsed declaration count"),
		debugHIR:   flag.Bool("debug-hir", false, "trace the lowered HIR declaration count"),
		inputPath:  flag.String("input", "", "path to the C source file to compile"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()

	path := *a.inputPath
	if path == "" {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "cc: no input file")
		os.Exit(2)
	}

	cfg := cc.NewConfig()
	if *a.searchPath != "" {
		cfg.SetStringSlice("search-path", strings.Split(*a.searchPath, ","))
	}
	cfg.SetInt("max-errors", *a.maxErrors)
	cfg.SetBool("debug-lex", *a.debugLex)
	cfg.SetBool("debug-ast", *a.debugAST)
	cfg.SetBool("debug-hir", *a.debugHIR)

	sess := cc.NewSession(cfg)
	if *a.debugLex || *a.debugAST || *a.debugHIR {
		sess.UseTracer(cc.FuncTracer(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	}

	if _, err := sess.CompileFile(path); err != nil {
		fmt.Fprintln(os.Stderr, "cc:", err)
		os.Exit(1)
	}

	diags := sess.Diags.Sorted()
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, cc.RenderAll(sess, diags))
	}
	if sess.Diags.HasErrors() {
		os.Exit(1)
	}
}
