package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	verbose    bool
}

func rootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:          "hexstack",
		Short:        "Place and stack hex pieces on a round base plate",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(runCmd(&g))
	root.AddCommand(configCmd(&g))
	return root
}

func runCmd(g *globalFlags) *cobra.Command {
	var (
		frame         bool
		width, height float64
	)

	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Evaluate a build script and print the resulting placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			app, err := NewApp(cfg, defaultCollaborators(cfg, width, height),
				WithLogger(newLogger(cmd.ErrOrStderr(), g.verbose)))
			if err != nil {
				return err
			}
			return runScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), app, string(source), frame)
		},
	}

	cmd.Flags().BoolVar(&frame, "frame", false, "print the tessellated frame as JSON")
	cmd.Flags().Float64Var(&width, "width", 800, "viewport width in pixels")
	cmd.Flags().Float64Var(&height, "height", 600, "viewport height in pixels")
	return cmd
}

func configCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func runScript(w, errw io.Writer, app *App, source string, frame bool) error {
	result := app.Evaluate(source)

	if frame {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			EvalResult
			Meshes []MeshData `json:"meshes"`
		}{result, app.Frame()}); err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
	} else {
		for _, p := range result.Placements {
			fmt.Fprintf(w, "%-12s (%d,%d) y=%.3f %s\n", p.Kind, p.Q, p.R, p.Y, p.ID)
		}
	}

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(errw, "line %d: %s\n", e.Line, e.Message)
			} else {
				fmt.Fprintln(errw, e.Message)
			}
		}
		return fmt.Errorf("script failed with %d error(s)", len(result.Errors))
	}
	return nil
}

// defaultCollaborators frames the whole plate from above at an angle.
func defaultCollaborators(cfg *config.Config, width, height float64) Collaborators {
	d := float64(cfg.Grid.Radius+2) * cfg.Grid.CellRadius * 2.5
	aspect := 1.0
	if height > 0 {
		aspect = width / height
	}
	return Collaborators{
		Camera: &scene.PerspectiveCamera{
			Eye:    v3.Vec{X: 0, Y: d, Z: d},
			Target: v3.Vec{},
			Up:     v3.Vec{Y: 1},
			FovY:   45,
			Aspect: aspect,
		},
		Scene:    scene.New(),
		Viewport: scene.Viewport{Width: width, Height: height},
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
