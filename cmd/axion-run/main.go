// axion-run is a thin demo binary: it resolves the current project's
// secrets and execs a command with them injected into its environment. It
// exists to exercise internal/sdk and internal/injector end to end; the
// full CLI surface is a separate concern this binary does not attempt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/axion-sh/axion/internal/injector"
	"github.com/axion-sh/axion/internal/sdk"
)

const cliVersion = "0.0.0-dev"

func main() {
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	service := runCmd.String("service", "_global", "service to resolve secrets for")
	scope := runCmd.String("scope", "", "scope to resolve secrets for (development, staging, production)")
	workDir := runCmd.String("dir", ".", "project directory")
	overwrite := runCmd.Bool("overwrite", false, "let resolved secrets override existing environment variables")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = runCmd.Parse(os.Args[1:])
	args := runCmd.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	dieIf(runCommand(*workDir, *service, *scope, *overwrite, args[0], args[1:]))
}

func runCommand(workDir, service, scope string, overwrite bool, command string, args []string) error {
	ctx := context.Background()

	// LoadSecrets writes straight into this process's environment, unmasked:
	// the child spawned below inherits it via os.Environ(), which is exactly
	// what a command that needs real secret values requires.
	err := sdk.LoadSecrets(ctx, sdk.Options{
		WorkDir:    workDir,
		Service:    service,
		Scope:      scope,
		CLIVersion: cliVersion,
		Overwrite:  overwrite,
	})
	if err != nil {
		return err
	}

	code, err := injector.Run(ctx, command, args, injector.Options{Cwd: workDir})
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}

func usage() {
	fmt.Fprint(os.Stderr, `axion-run: run a command with project secrets injected

  axion-run [--dir .] [--service _global] [--scope ""] [--overwrite] -- <command> [args...]

Examples:
  axion-run -- npm start
  axion-run --service api --scope production -- ./server
`)
}

func dieIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
