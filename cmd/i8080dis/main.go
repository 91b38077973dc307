package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/oisee/i8080-disasm/pkg/disasm"
	"github.com/oisee/i8080-disasm/pkg/inst"
	"github.com/oisee/i8080-disasm/pkg/listing"
)

const defaultLogPath = "logs/i8080dis.log"

// usageError is returned for a wrong number of arguments; main prints it
// as a single usage line.
type usageError struct {
	useLine string
}

func (e usageError) Error() string {
	return "usage: " + e.useLine
}

func oneFile(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError{cmd.UseLine()}
	}
	return nil
}

type options struct {
	tablePath string
	logPath   string
	format    string
	rawTable  bool
	cfg       disasm.Config
}

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(append([]string{}, args...))
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(stderr, uerr.Error())
			return 2
		}
		fmt.Fprintf(stderr, "i8080dis: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "i8080dis [flags] FILE",
		Short:         "Intel 8080 linear disassembler",
		Args:          oneFile,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassemble(cmd, opts, args[0])
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.tablePath, "table", "", "Opcode table (.json or .yaml); built-in 8080 table if empty")
	rootCmd.PersistentFlags().StringVar(&opts.logPath, "log", defaultLogPath, "Diagnostic log file (- for stderr, empty to disable)")
	rootCmd.PersistentFlags().Var(&opts.cfg.OnTruncate, "on-truncate", "Truncated final instruction: warn or fail")
	rootCmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text, json)")

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Print the opcode table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(opts.tablePath)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), tbl, opts.rawTable)
			return nil
		},
	}
	tableCmd.Flags().BoolVar(&opts.rawTable, "raw", false, "Dump the table structure")

	verifyCmd := &cobra.Command{
		Use:   "verify LISTING.json FILE",
		Short: "Check that FILE still disassembles to a saved JSON listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return verify(cmd, opts, args[0], args[1])
		},
	}

	rootCmd.AddCommand(tableCmd, verifyCmd)
	return rootCmd
}

// setup loads everything a decode run needs. Nothing is written to the
// display before it succeeds.
func setup(opts *options, imagePath string) (*disasm.Decoder, []byte, error) {
	tbl, err := loadTable(opts.tablePath)
	if err != nil {
		return nil, nil, err
	}
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading image: %w", err)
	}
	logger, err := openLog(opts.logPath)
	if err != nil {
		return nil, nil, err
	}
	return disasm.New(tbl, opts.cfg, logger), image, nil
}

func disassemble(cmd *cobra.Command, opts *options, imagePath string) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format: %s", opts.format)
	}
	dec, image, err := setup(opts, imagePath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var stats disasm.Stats
	switch opts.format {
	case "json":
		ls := listing.New()
		stats, err = dec.Decode(image, ls)
		if werr := ls.WriteJSON(out, isTerminal(out)); err == nil {
			err = werr
		}
		if err != nil {
			return err
		}
	default:
		sink := disasm.NewTextSink(out)
		stats, err = dec.Decode(image, sink)
		if ferr := sink.Flush(); err == nil {
			err = ferr
		}
		if err != nil {
			return err
		}
	}

	for _, t := range stats.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "i8080dis: warning: %v\n", t)
	}
	return nil
}

func verify(cmd *cobra.Command, opts *options, listingPath, imagePath string) error {
	f, err := os.Open(listingPath)
	if err != nil {
		return err
	}
	defer f.Close()

	want, err := listing.ReadJSON(f)
	if err != nil {
		return err
	}

	dec, image, err := setup(opts, imagePath)
	if err != nil {
		return err
	}
	got := listing.New()
	if _, err := dec.Decode(image, got); err != nil {
		return err
	}
	if err := listing.Diff(want, got.Records()); err != nil {
		return fmt.Errorf("%s does not match %s: %w", imagePath, listingPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lines match\n", imagePath, got.Len())
	return nil
}

func loadTable(path string) (*inst.Table, error) {
	if path == "" {
		return inst.Default()
	}
	return inst.LoadFile(path)
}

// openLog creates the diagnostic logger. The log file stays open until the
// process exits.
func openLog(path string) (*slog.Logger, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return slog.New(slog.NewJSONHandler(os.Stderr, nil)), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	atexit.Register(func() { f.Close() })
	return slog.New(slog.NewJSONHandler(f, nil)), nil
}

func printTable(w io.Writer, tbl *inst.Table, raw bool) {
	if raw {
		spew.Fdump(w, tbl)
		return
	}

	tw := prettytable.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(prettytable.Row{"Op", "Mnemonic", "Length", "Operand"})
	for op, d := range tbl.Entries() {
		tw.AppendRow(prettytable.Row{fmt.Sprintf("%02x", op), strings.TrimSpace(d.Mnemonic), d.Length, d.Style})
	}
	tw.Render()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
