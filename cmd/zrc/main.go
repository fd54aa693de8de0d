// zrc builds, inspects and converts ZRCN bytecode modules.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/zircon/bytecode"
	"github.com/chazu/zircon/inspect"
	"github.com/chazu/zircon/manifest"
	"github.com/chazu/zircon/samples"
)

var errUsage = errors.New("usage")

func logger() commonlog.Logger {
	return commonlog.GetLogger("zircon.zrc")
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: zrc [-v] [-C dir] <command> [options] [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  example [-o path] [-s name]   Build a sample module (samples: %s)\n", strings.Join(samples.Names(), ", "))
	fmt.Fprintf(w, "  dis <file>                    Print a module listing and its blake3 digest\n")
	fmt.Fprintf(w, "  dump [-o out.cbor] <file>     Export a module as a CBOR document\n")
	fmt.Fprintf(w, "  pack [-o out.bcv] <file.cbor> Rebuild a module from a CBOR document\n")
}

// env is the state shared by all commands after global flag parsing.
type env struct {
	manifest *manifest.Manifest
	out      io.Writer
}

func run(args []string, out io.Writer) error {
	var verbosity int
	var dir string

	flags := pflag.NewFlagSet("zrc", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVarP(&dir, "directory", "C", ".", "start the zircon.toml search in dir")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(out)
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
		return errUsage
	}

	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return err
	}
	if m == nil {
		m = manifest.Default()
	}
	if m.Log.Verbosity > verbosity {
		verbosity = m.Log.Verbosity
	}
	commonlog.Configure(verbosity, m.LogFile())
	if m.Dir != "" {
		logger().Infof("using manifest %s", filepath.Join(m.Dir, manifest.FileName))
	}

	e := &env{manifest: m, out: out}
	cmd, rest := flags.Arg(0), flags.Args()[1:]
	switch cmd {
	case "example":
		return e.example(rest)
	case "dis":
		return e.dis(rest)
	case "dump":
		return e.dump(rest)
	case "pack":
		return e.pack(rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (e *env) example(args []string) error {
	fs := newFlagSet("example")
	output := fs.StringP("output", "o", e.manifest.OutputPath(), "output module path")
	name := fs.StringP("sample", "s", e.sampleName(), "sample to build")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("example takes no arguments")
	}

	b, err := samples.Build(*name)
	if err != nil {
		return err
	}
	return e.writeModule(b, *output)
}

func (e *env) dis(args []string) error {
	fs := newFlagSet("dis")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dis requires exactly one module file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	listing, err := bytecode.Disassemble(data)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	fmt.Fprint(e.out, listing)
	fmt.Fprintf(e.out, "blake3 %s\n", inspect.Digest(data))
	return nil
}

func (e *env) dump(args []string) error {
	fs := newFlagSet("dump")
	output := fs.StringP("output", "o", "", "write the CBOR document here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dump requires exactly one module file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := inspect.FromBytes(data)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	encoded, err := inspect.Marshal(doc)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = e.out.Write(encoded)
		return err
	}
	if err := os.WriteFile(*output, encoded, 0644); err != nil {
		return err
	}
	logger().Infof("wrote %d byte document to %s", len(encoded), *output)
	return nil
}

func (e *env) pack(args []string) error {
	fs := newFlagSet("pack")
	output := fs.StringP("output", "o", e.manifest.OutputPath(), "output module path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("pack requires exactly one CBOR document")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := inspect.Unmarshal(data)
	if err != nil {
		return err
	}
	if doc.Version != bytecode.Version {
		return fmt.Errorf("%s: %w: got %d, want %d", fs.Arg(0), bytecode.ErrVersionMismatch, doc.Version, bytecode.Version)
	}
	b, err := doc.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	rebuilt, err := b.Serialize()
	if err != nil {
		return err
	}
	// Edited documents must drop the digest field.
	if err := doc.Verify(rebuilt); err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	return e.writeModule(b, *output)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (e *env) sampleName() string {
	if e.manifest.Project.Sample != "" {
		return e.manifest.Project.Sample
	}
	return samples.Default
}

func (e *env) writeModule(b *bytecode.Builder, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := b.WriteFile(path); err != nil {
		return err
	}
	data, err := b.Serialize()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "wrote %s (%d bytes, blake3 %s)\n", path, len(data), inspect.Digest(data))
	return nil
}
