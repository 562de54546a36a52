package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"blocknotes/internal/app"
	"blocknotes/internal/blocks"
	"blocknotes/internal/config"
	"blocknotes/internal/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: blocknotes [-config file] <command> [args]

Commands:
  serve                 run the HTTP API (default)
  mcp                   serve MCP on stdin/stdout
  import <file>...      import markdown files for import.owner_email
  convert [-reverse] [file]
                        convert markdown to blocks JSON, or blocks JSON back to markdown

Options:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", os.Getenv("BLOCKNOTES_CONFIG"), "Path to a YAML config file")
	flag.Usage = usage
	flag.Parse()

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	if cmd == "convert" {
		if err := runConvert(args, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol, so logs always go to stderr.
	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(cfg, log)
	if err := a.Startup(ctx); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	switch cmd {
	case "serve":
		err = a.Serve(ctx)
	case "mcp":
		err = a.ServeMCP(ctx)
	case "import":
		if len(args) == 0 {
			usage()
			err = fmt.Errorf("import needs at least one file")
			break
		}
		var n int
		n, err = a.ImportFiles(ctx, args)
		fmt.Fprintf(os.Stderr, "imported %d of %d files\n", n, len(args))
	default:
		usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if shutdownErr := a.Shutdown(context.Background()); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("shutdown failed")
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		os.Exit(1)
	}
}

// runConvert reads a file (or stdin) and converts between markdown and the
// block JSON representation.
func runConvert(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	reverse := fs.Bool("reverse", false, "Convert blocks JSON to markdown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if *reverse {
		var bs []blocks.Block
		if err := json.Unmarshal(data, &bs); err != nil {
			return fmt.Errorf("parse blocks JSON: %w", err)
		}
		_, err := io.WriteString(stdout, blocks.Serialize(bs)+"\n")
		return err
	}

	out, err := json.MarshalIndent(blocks.Parse(string(data)), "", "  ")
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(out, '\n'))
	return err
}
