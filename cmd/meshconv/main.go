// meshconv converts glTF meshes into renderer-ready spans.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/meshspan/internal/config"
	"github.com/Faultbox/meshspan/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "convert", "c":
		err = cmdConvert(ctx, args)
	case "info":
		err = cmdInfo(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshconv - mesh to span converter

Usage:
  meshconv <command> [options]

Commands:
  convert [options] <file.gltf|glb>...   Convert meshes and write span glTF
  info [options] <file.gltf|glb>         Show meshes, materials and span estimates
  config show|save|path                  Inspect or persist the effective config

Examples:
  meshconv convert -out build rock.glb
  meshconv convert -max-faces 5000 -materials materials.yaml level.gltf
  meshconv info -convert rock.glb
  meshconv config save`)
}

// setup parses the shared flags and initializes logging.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*config.Config, *flag.FlagSet, error) {
	var flags config.Flags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.Register(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		return nil, nil, err
	}
	logger.Debug("config loaded", zap.String("command", name), zap.Int("workers", cfg.Batch.Workers))
	return cfg, fs, nil
}

func cmdConfig(args []string) error {
	cfg, fs, err := setup("config", args, nil)
	if err != nil {
		return err
	}
	action := "show"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}
	return runConfig(os.Stdout, cfg, action)
}

// runConfig performs one config action, writing its output to w.
func runConfig(w io.Writer, cfg *config.Config, action string) error {
	switch action {
	case "show":
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	case "save":
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(w, "Saved %s\n", filepath.Join(config.ConfigDir(), "meshspan.yaml"))
	case "path":
		fmt.Fprintln(w, config.ConfigDir())
	default:
		return fmt.Errorf("unknown config action %q (want show, save or path)", action)
	}
	return nil
}
