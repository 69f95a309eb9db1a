package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/dbms"
	"github.com/ajitpratap0/strata/pkg/render"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		a.logger().Error("command failed", zap.Error(err))
	}
	a.close(ctx)

	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Resolve hierarchical migration definitions",
		Long: `strata reads a tree of migration definitions, merges every child with
its ancestors and prints one fully resolved definition per leaf.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Settings file (YAML)")
	flags.StringP("file", "f", config.DefaultDefinitionsFile, "Migration definitions file")
	flags.StringP("output", "o", config.OutputJSON, "Output format (json or yaml)")
	flags.Int("workers", 0, "Roots flattened concurrently (0 = number of CPUs)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-encoding", "json", "Log encoding (json or console)")
	flags.Bool("tracing", false, "Export trace spans to stderr")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of runs traced")
	flags.Bool("metrics", false, "Print prometheus metrics to stderr on exit")
	a.bindFlags(flags)

	root.AddCommand(
		newFlattenCmd(a),
		newValidateCmd(a),
		newInspectCmd(a),
		newVersionCmd(),
	)
	return root
}

func newFlattenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten",
		Short: "Print one resolved definition per leaf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			leaves, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			return render.Leaves(cmd.OutOrStdout(), a.settings.OutputFormat, leaves)
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that a definitions file parses and resolves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			leaves, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d resolved definitions\n", a.settings.DefinitionsFile, len(leaves))
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report the connection target of every resolved definition",
		Long: `inspect parses each resolved connection string with its driver's DSN
parser and reports host, port, database and user. Passwords are masked and
no connection is attempted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			leaves, err := a.resolve(cmd.Context())
			if err != nil {
				return err
			}
			reports := dbms.Inspect(leaves)
			for _, r := range reports {
				if r.Status == dbms.StatusInvalid {
					a.logger().Warn("connection string rejected",
						zap.Int("index", r.Index),
						zap.String("dbms", r.Dbms),
						zap.String("reason", r.Reason))
				}
			}
			return render.Reports(cmd.OutOrStdout(), a.settings.OutputFormat, reports)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strata version %s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
