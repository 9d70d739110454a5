// cmd/algebra/main.go: command line front end for the rewriting engine.
//
// Usage:
//
//	algebra simplify "(1+x)*(1+x)"
//	algebra json "x^2+2x+1"
//	algebra check "2*x+1"
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	algebra "github.com/njchilds90/goalgebra"
	"github.com/njchilds90/goalgebra/internal/config"
)

const (
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:      "algebra",
		Usage:     "simplify elementary algebra expressions",
		Version:   versioninfo.Short(),
		Writer:    out,
		ErrWriter: os.Stderr,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to an algebra.yaml file",
			EnvVars: []string{"ALGEBRA_CONFIG"},
		},
		&cli.IntFlag{
			Name:    "step-limit",
			Usage:   "frames processed per simplifier step",
			EnvVars: []string{"ALGEBRA_STEP_LIMIT"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every rewrite to stderr",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "simplify",
			Usage:     "print every intermediate form and the fixpoint",
			ArgsUsage: "EXPR",
			Action:    runSimplify,
		},
		{
			Name:      "json",
			Usage:     "print the expression document",
			ArgsUsage: "EXPR",
			Action:    runJSON,
		},
		{
			Name:      "check",
			Usage:     "report whether the expression is already stable",
			ArgsUsage: "EXPR",
			Action:    runCheck,
		},
	}
	return app
}

func parseArg(cctx *cli.Context) (*algebra.Tree, error) {
	if cctx.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one expression argument")
	}
	return algebra.Parse(cctx.Args().First())
}

func simplifier(cctx *cli.Context, obs algebra.Observer) (*algebra.Simplifier, error) {
	cfg := config.Default()
	if path := cctx.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if cctx.IsSet("step-limit") {
		cfg.StepLimit = cctx.Int("step-limit")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	level, _ := cfg.Level()
	if cctx.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := append(cfg.SimplifierOptions(logger), algebra.WithObserver(obs))
	return algebra.NewSimplifier(opts...), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runSimplify(cctx *cli.Context) error {
	tree, err := parseArg(cctx)
	if err != nil {
		return err
	}
	defer tree.Dispose()

	out := cctx.App.Writer
	dim := isTerminal(out)
	fmt.Fprintln(out, tree.String())

	s, err := simplifier(cctx, func(pass int, t *algebra.Tree, st algebra.Status) {
		if st != algebra.Rewritten {
			return
		}
		if dim {
			fmt.Fprintf(out, "%s%3d  %s%s\n", ansiDim, pass, t.String(), ansiReset)
		} else {
			fmt.Fprintf(out, "%3d  %s\n", pass, t.String())
		}
	})
	if err != nil {
		return err
	}
	res, err := s.Run(tree)
	fmt.Fprintf(out, "= %s\n", tree.String())
	if err != nil {
		return fmt.Errorf("%s after %d passes: %w", res.Status, res.Passes, err)
	}
	return nil
}

func runJSON(cctx *cli.Context) error {
	tree, err := parseArg(cctx)
	if err != nil {
		return err
	}
	defer tree.Dispose()

	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, string(b))
	return nil
}

var errNotStable = errors.New("expression is not stable")

func runCheck(cctx *cli.Context) error {
	tree, err := parseArg(cctx)
	if err != nil {
		return err
	}
	defer tree.Dispose()

	s, err := simplifier(cctx, nil)
	if err != nil {
		return err
	}
	before := tree.String()
	st := s.Step(tree)
	switch st {
	case algebra.Stable:
		fmt.Fprintf(cctx.App.Writer, "%s is stable\n", before)
		return nil
	case algebra.Exhausted:
		return fmt.Errorf("%s: %w", before, algebra.ErrStepLimit)
	}
	fmt.Fprintf(cctx.App.Writer, "%s rewrites to %s\n", before, tree.String())
	return errNotStable
}
