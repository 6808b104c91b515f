// Package cli is the autotype command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/funvibe/autotype/internal/analyzer"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/lexer"
	"github.com/funvibe/autotype/internal/parser"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/prettyprinter"
)

// errDiagnostics is returned by a command that reported diagnostics. The
// report itself has already been printed.
var errDiagnostics = errors.New("diagnostics reported")

// Globals are the flags shared by every command.
type Globals struct {
	Config string `help:"Settings file. By default autotype.yaml is searched from the source directory upwards." type:"path"`
	Color  string `enum:"auto,always,never" default:"auto" help:"Colorize the report (auto | always | never)."`
	Trace  bool   `help:"Log every analysis pass to stderr."`

	stdout io.Writer `kong:"-"`
	stderr io.Writer `kong:"-"`
}

type cliArgs struct {
	Globals

	Check   checkCmd   `cmd:"" help:"Analyze COOL sources and report every diagnostic."`
	Dump    dumpCmd    `cmd:"" help:"Print a source with every AUTO_TYPE replaced by its inferred type."`
	Version versionCmd `cmd:"" help:"Print the version."`
}

// Run parses args, runs the selected command and returns the process exit
// status.
func Run(args []string, stdout, stderr io.Writer) int {
	var cli cliArgs
	k, err := kong.New(&cli,
		kong.Name("autotype"),
		kong.Description("Type checker for COOL with AUTO_TYPE inference."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	kctx, err := k.Parse(args)
	if err != nil {
		k.Errorf("%s", err)
		return 2
	}

	cli.stdout, cli.stderr = stdout, stderr
	if err := kctx.Run(&cli.Globals); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(stderr, "autotype: %v\n", err)
		}
		return 1
	}
	return 0
}

// settings loads the settings file that applies to source and lets the
// flags override it.
func (g *Globals) settings(source string) (config.Settings, error) {
	path := g.Config
	if path == "" {
		found, err := config.FindSettings(filepath.Dir(source))
		if err != nil {
			return config.Settings{}, err
		}
		path = found
	}

	s := config.DefaultSettings()
	if path != "" {
		loaded, err := config.LoadSettings(path)
		if err != nil {
			return config.Settings{}, err
		}
		s = loaded
	}
	if g.Trace {
		s.Trace = true
	}
	if g.Color != "auto" || s.Color == "" {
		s.Color = g.Color
	}
	return s, nil
}

func (g *Globals) logger(s config.Settings) log.Logger {
	if !s.Trace {
		return log.NewNopLogger()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(g.stderr))
	logger = log.With(logger, "caller", log.DefaultCaller)
	return level.NewFilter(logger, level.AllowDebug())
}

// analyze runs every stage over one file.
func (g *Globals) analyze(path string, override func(*config.Settings)) (*pipeline.PipelineContext, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	s, err := g.settings(path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(&s)
	}

	ctx := pipeline.NewContext(string(source), path)
	ctx.Settings = s
	ctx.Logger = log.With(g.logger(s), "file", path)

	stages := append([]pipeline.Processor{&lexer.LexerProcessor{}, &parser.ParserProcessor{}}, analyzer.Processors()...)
	return pipeline.New(stages...).Run(ctx), nil
}

type checkCmd struct {
	Format string   `enum:",text,yaml" help:"Report format (text | yaml). Defaults to the settings file, then text."`
	Files  []string `arg:"" type:"existingfile" help:"COOL sources to check."`
}

func (cmd *checkCmd) Run(g *Globals) error {
	failed := false
	for _, path := range cmd.Files {
		ctx, err := g.analyze(path, func(s *config.Settings) {
			if cmd.Format != "" {
				s.Format = cmd.Format
			}
		})
		if err != nil {
			return err
		}
		report := diagnostics.NewReport(path, ctx.Errors)
		if !report.Empty() {
			failed = true
		}

		if ctx.Settings.Format == "yaml" {
			out, err := report.YAML()
			if err != nil {
				return errors.Wrap(err, "encoding report")
			}
			if _, err := g.stdout.Write(out); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(g.stdout, "%s\n", path)
		diagnostics.NewPrinter(g.stdout, ctx.Settings.Color).Print(report)
		if len(ctx.Inferred) > 0 {
			writeInferred(g.stdout, ctx.Inferred)
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

// writeInferred prints the inference summary as a table.
func writeInferred(w io.Writer, inferred []pipeline.Inference) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"line", "class", "feature", "kind", "name", "type"})
	for _, inf := range inferred {
		t.AppendRow(table.Row{inf.Token.Line, inf.Class, inf.Feature, inf.Kind, inf.Name, inf.Type})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

type dumpCmd struct {
	KeepAuto bool   `help:"Print AUTO_TYPE as written instead of the inferred types."`
	File     string `arg:"" type:"existingfile" help:"COOL source to print."`
}

func (cmd *dumpCmd) Run(g *Globals) error {
	ctx, err := g.analyze(cmd.File, nil)
	if err != nil {
		return err
	}
	if len(ctx.Errors) > 0 {
		diagnostics.NewPrinter(g.stderr, ctx.Settings.Color).Print(diagnostics.NewReport(cmd.File, ctx.Errors))
		return errDiagnostics
	}

	p := prettyprinter.NewCodePrinter()
	if !cmd.KeepAuto {
		p.WithInferredTypes()
	}
	_, err = io.WriteString(g.stdout, p.Print(ctx.AstRoot))
	return err
}

type versionCmd struct{}

func (cmd *versionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout, "autotype %s\n", config.Version)
	return nil
}
