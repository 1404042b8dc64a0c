package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// stringList accumulates repeated flag occurrences, for "-namespace
// prefix=uri" passed more than once.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	installLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsageError)
	}

	var err error
	var code int
	switch os.Args[1] {
	case "coverage":
		code, err = runCoverageCmd(os.Args[2:])
	case "greedy":
		code, err = runGreedyCmd(os.Args[2:])
	case "smt":
		code, err = runSMTCmd(os.Args[2:])
	case "pairwise":
		code, err = runPairwiseCmd(os.Args[2:])
	case "validate":
		code, err = runValidateCmd(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "xsdcov: unknown subcommand %q\n", os.Args[1])
		printUsage()
		os.Exit(exitUsageError)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "xsdcov %s: %v\n", os.Args[1], err)
	}
	os.Exit(code)
}

func installLogger() {
	jsonLogs := false
	for _, a := range os.Args[1:] {
		if a == "-json-logs" {
			jsonLogs = true
		}
	}
	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `xsdcov - XML Schema path-coverage measurement and test generation

Usage:
  xsdcov coverage  -schema <xsd> [-max-depth N] <xml-file> [xml-file ...]
  xsdcov greedy    -schema <xsd> -out <dir> [-root NAME] [-max-depth N] [-max-gen-depth N] [-target-coverage F] [-max-files N] [-namespace prefix=uri ...]
  xsdcov smt       -schema <xsd> -out <dir> [-root NAME] [-max-depth N] [-target-coverage F] [-timeout-ms N] [-namespace prefix=uri ...]
  xsdcov pairwise  -schema <xsd> -out <dir> [-root NAME] [-max-depth N] [-max-patterns N] [-namespace prefix=uri ...]
  xsdcov validate  -schema <xsd> [-report <path>] <xml-file> [xml-file ...]

Exit codes: 0 success, 1 usage error, 2 schema error, 3 generation error, 4 validation error.`)
}

func runCoverageCmd(args []string) (int, error) {
	opts := defaultCoverageOptions()
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)
	fs.Bool("json-logs", false, "emit JSON structured logs instead of text")
	fs.StringVar(&opts.SchemaPath, "schema", "", "path to the XSD schema")
	fs.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum path depth to enumerate")
	if err := fs.Parse(args); err != nil {
		return exitUsageError, err
	}
	opts.XMLPaths = fs.Args()
	if opts.SchemaPath == "" || len(opts.XMLPaths) == 0 {
		return exitUsageError, fmt.Errorf("-schema and at least one XML file are required")
	}

	result, err := RunCoverage(opts)
	if err != nil {
		return exitSchemaError, err
	}
	fmt.Print(result.Report)
	for _, pe := range result.ParseErrors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", pe)
	}
	return exitOK, nil
}

func runGreedyCmd(args []string) (int, error) {
	opts := defaultGreedyOptions()
	var namespaces stringList
	fs := flag.NewFlagSet("greedy", flag.ContinueOnError)
	fs.Bool("json-logs", false, "emit JSON structured logs instead of text")
	fs.StringVar(&opts.SchemaPath, "schema", "", "path to the XSD schema")
	fs.StringVar(&opts.OutDir, "out", "", "output directory")
	fs.StringVar(&opts.RootName, "root", "", "top-level element to generate (auto-detected if the schema declares exactly one)")
	fs.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum path depth to enumerate")
	fs.IntVar(&opts.MaxGenDepth, "max-gen-depth", opts.MaxGenDepth, "maximum depth to materialize into generated snippets")
	fs.Float64Var(&opts.TargetCoverage, "target-coverage", opts.TargetCoverage, "fraction of the ground set to cover before stopping")
	fs.IntVar(&opts.MaxFiles, "max-files", opts.MaxFiles, "maximum number of snippets to emit")
	fs.Var(&namespaces, "namespace", "namespace prefix override, prefix=uri (repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitUsageError, err
	}
	if opts.SchemaPath == "" || opts.OutDir == "" {
		return exitUsageError, fmt.Errorf("-schema and -out are required")
	}
	ns, err := parseNamespaceFlag(namespaces)
	if err != nil {
		return exitUsageError, err
	}
	opts.Namespaces = ns

	result, err := RunGreedy(opts)
	if err != nil {
		return exitGenerationErr, err
	}
	for _, f := range result.Files {
		fmt.Println(f)
	}
	fmt.Printf("coverage: %.2f%%\n", result.CoveragePercent)
	return exitOK, nil
}

func runSMTCmd(args []string) (int, error) {
	opts := defaultSMTOptions()
	var namespaces stringList
	fs := flag.NewFlagSet("smt", flag.ContinueOnError)
	fs.Bool("json-logs", false, "emit JSON structured logs instead of text")
	fs.StringVar(&opts.SchemaPath, "schema", "", "path to the XSD schema")
	fs.StringVar(&opts.OutDir, "out", "", "output directory")
	fs.StringVar(&opts.RootName, "root", "", "top-level element to generate (auto-detected if the schema declares exactly one)")
	fs.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum path depth to enumerate")
	fs.Float64Var(&opts.TargetCoverage, "target-coverage", opts.TargetCoverage, "fraction of the ground set the solution is expected to reach")
	fs.IntVar(&opts.TimeoutMs, "timeout-ms", opts.TimeoutMs, "solver time budget in milliseconds")
	fs.Var(&namespaces, "namespace", "namespace prefix override, prefix=uri (repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitUsageError, err
	}
	if opts.SchemaPath == "" || opts.OutDir == "" {
		return exitUsageError, fmt.Errorf("-schema and -out are required")
	}
	ns, err := parseNamespaceFlag(namespaces)
	if err != nil {
		return exitUsageError, err
	}
	opts.Namespaces = ns

	result, err := RunSMT(opts)
	if err != nil {
		return exitGenerationErr, err
	}
	fmt.Println(result.File)
	fmt.Printf("coverage: %.2f%% (target %.2f%%, met: %v)\n", result.CoveragePercent, result.TargetCoverage, result.TargetMet)
	return exitOK, nil
}

func runPairwiseCmd(args []string) (int, error) {
	opts := defaultPairwiseOptions()
	var namespaces stringList
	fs := flag.NewFlagSet("pairwise", flag.ContinueOnError)
	fs.Bool("json-logs", false, "emit JSON structured logs instead of text")
	fs.StringVar(&opts.SchemaPath, "schema", "", "path to the XSD schema")
	fs.StringVar(&opts.OutDir, "out", "", "output directory")
	fs.StringVar(&opts.RootName, "root", "", "top-level element to generate (auto-detected if the schema declares exactly one)")
	fs.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum path depth to enumerate")
	fs.IntVar(&opts.MaxPatterns, "max-patterns", opts.MaxPatterns, "maximum number of covering-array rows to emit")
	fs.IntVar(&opts.RandomSeed, "random-seed", opts.RandomSeed, "accepted for interface parity; unused (the covering array is deterministic)")
	fs.Var(&namespaces, "namespace", "namespace prefix override, prefix=uri (repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitUsageError, err
	}
	if opts.SchemaPath == "" || opts.OutDir == "" {
		return exitUsageError, fmt.Errorf("-schema and -out are required")
	}
	ns, err := parseNamespaceFlag(namespaces)
	if err != nil {
		return exitUsageError, err
	}
	opts.Namespaces = ns

	result, err := RunPairwise(opts)
	if err != nil {
		return exitGenerationErr, err
	}
	for _, f := range result.Files {
		fmt.Println(f)
	}
	fmt.Printf("patterns: %d, pair coverage: %d/%d\n", result.Patterns, result.PairsCovered, result.PairsTotal)
	return exitOK, nil
}

func runValidateCmd(args []string) (int, error) {
	opts := ValidateOptions{}
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.Bool("json-logs", false, "emit JSON structured logs instead of text")
	fs.StringVar(&opts.SchemaPath, "schema", "", "path to the XSD schema")
	fs.StringVar(&opts.ReportPath, "report", "", "optional path to write the text report to")
	if err := fs.Parse(args); err != nil {
		return exitUsageError, err
	}
	opts.XMLPaths = fs.Args()
	if opts.SchemaPath == "" || len(opts.XMLPaths) == 0 {
		return exitUsageError, fmt.Errorf("-schema and at least one XML file are required")
	}

	result, err := RunValidate(opts)
	if err != nil {
		return exitSchemaError, err
	}
	fmt.Print(renderValidateReport(result))
	if result.Invalid > 0 {
		return exitValidationFail, nil
	}
	return exitOK, nil
}
