package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path; empty derives it from the input
	format    string  // svg, pdf, png or dot
	engine    string  // graphviz layout engine
	outlines  bool    // draw selection outlines
	waypoints bool    // mark every bend
	scale     float64 // PNG scale factor
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "pdf": true, "png": true, "dot": true}

// renderCommand creates the render command for drawing a diagram snapshot.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg", engine: render.DefaultEngine, scale: 2}

	cmd := &cobra.Command{
		Use:   "render <diagram.json>",
		Short: "Render a diagram snapshot to SVG, PDF, PNG or DOT",
		Long: `Render a diagram snapshot with Graphviz. Shapes and bends keep their exact
positions; the layout engine only draws them.

PDF and PNG output need rsvg-convert (librsvg) on the PATH.`,
		Example: `  orthoroute render diagram.json -o diagram.svg
  orthoroute render diagram.json -f png --scale 3 --outlines`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return errs.New(errs.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'pdf', 'png' or 'dot')", opts.format)
			}
			return runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, pdf, png, dot")
	cmd.Flags().StringVar(&opts.engine, "engine", opts.engine, "graphviz layout engine (neato, fdp, nop)")
	cmd.Flags().BoolVar(&opts.outlines, "outlines", false, "draw selection outlines")
	cmd.Flags().BoolVar(&opts.waypoints, "waypoints", false, "mark every bend with a dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale factor for PNG output")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"svg", "pdf", "png", "dot"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	snap, err := readSnapshot(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded diagram", "id", snap.ID, "shapes", len(snap.Shapes), "connections", len(snap.Connections))

	ropts := render.Options{Engine: opts.engine, Outlines: opts.outlines, Waypoints: opts.waypoints}
	dot := render.ToDOT(snap, ropts)

	var data []byte
	if opts.format == "dot" {
		data = []byte(dot)
	} else {
		spinner := newSpinnerWithContext(ctx, os.Stderr, "Rendering with "+opts.engine+"...")
		spinner.Start()
		data, err = renderFormat(ctx, dot, ropts, opts)
		spinner.Stop()
		if err != nil {
			return err
		}
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess("Rendered %d shapes, %d connections", len(snap.Shapes), len(snap.Connections))
	printFile(out)
	return nil
}

func renderFormat(ctx context.Context, dot string, ropts render.Options, opts renderOpts) ([]byte, error) {
	svg, err := render.RenderSVG(ctx, dot, ropts)
	if err != nil {
		return nil, err
	}
	return render.Convert(svg, opts.format, opts.scale)
}

// readSnapshot loads a diagram snapshot from a JSON file.
func readSnapshot(path string) (diagram.Snapshot, error) {
	var snap diagram.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return snap, nil
}
