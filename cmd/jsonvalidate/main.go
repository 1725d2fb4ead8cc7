// Command jsonvalidate checks JSON documents against a JSON Schema.
//
//	jsonvalidate [flags] SCHEMA [DOCUMENT...]
//
// With no DOCUMENT the document is read from stdin. The exit status is
// 0 when every document is valid, 1 when any is not and 2 on bad usage.
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"jsonschema-validation-service/internal/observability/logging"
	"jsonschema-validation-service/internal/schema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonvalidate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	draft := fs.StringP("draft", "d", "", "draft used when $schema is missing: 4, 6, 7, 2019-09, 2020-12")
	engine := fs.String("engine", schema.EngineSanthosh, "validation engine: santhosh or gojsonschema")
	assertFormat := fs.BoolP("assert-format", "f", false, "treat format as an assertion")
	ecma := fs.Bool("ecma-regexp", false, "use ECMA 262 regular expressions for pattern")
	locale := fs.String("locale", "en", "language used for violation messages")
	logFormat := fs.String("log-format", "console", "diagnostic format: console or json")
	quiet := fs.BoolP("quiet", "q", false, "only report through the exit status")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: jsonvalidate [flags] SCHEMA [DOCUMENT...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := "error"
	if *quiet {
		level = "disabled"
	}
	logging.Init(logging.Config{Level: level, Format: *logFormat, Output: stderr})

	cfg := schema.Config{
		Engine:       *engine,
		Draft:        *draft,
		AssertFormat: *assertFormat,
		RegexpEngine: schema.RegexpGo,
		Locale:       *locale,
	}
	if *ecma {
		cfg.RegexpEngine = schema.RegexpECMA
	}
	v, err := schema.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "jsonvalidate: %v\n", err)
		return 2
	}

	schemaPath := fs.Arg(0)
	docs := fs.Args()[1:]

	if len(docs) == 0 {
		doc, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "jsonvalidate: read stdin: %v\n", err)
			return 2
		}
		return report(stdout, *quiet, "-", v.CheckFile(schemaPath, doc))
	}

	status := 0
	for _, doc := range docs {
		if s := report(stdout, *quiet, doc, v.CheckFiles(schemaPath, doc)); s != 0 {
			status = s
		}
	}
	return status
}

func report(w io.Writer, quiet bool, name string, res schema.Result) int {
	if res.Valid {
		if !quiet {
			fmt.Fprintf(w, "%s: valid\n", name)
		}
		return 0
	}
	if !quiet {
		fmt.Fprintf(w, "%s: invalid (%s)\n", name, res.Kind)
		for _, vi := range res.Violations {
			fmt.Fprintf(w, "  %s\n", vi)
		}
	}
	return 1
}
