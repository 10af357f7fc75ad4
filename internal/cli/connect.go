package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

// routeOutput is the --json form of a computed route.
type routeOutput struct {
	Waypoints []geom.Bend        `json:"waypoints"`
	Pair      geom.DirectionPair `json:"pair,omitempty"`
	Kind      string             `json:"kind,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Cached    bool               `json:"cached"`
}

type connectOpts struct {
	from, to   string
	start, end string
	json       bool
	noCache    bool
}

// connectCommand creates the connect command for routing between two rectangles.
func (c *CLI) connectCommand() *cobra.Command {
	var opts connectOpts

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Route a connection between two rectangles",
		Long: `Route an orthogonal connection from one rectangle to another.

Rectangles are given as x,y,width,height. Without --start/--end the sides are
chosen from the relative position of the rectangles.`,
		Example: `  orthoroute connect --from 0,0,100,100 --to 300,200,100,100
  orthoroute connect --from 0,0,100,100 --to 300,200,100,100 --start bottom --end top --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConnect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "source rectangle x,y,w,h (required)")
	cmd.Flags().StringVar(&opts.to, "to", "", "target rectangle x,y,w,h (required)")
	cmd.Flags().StringVar(&opts.start, "start", "", "side to leave the source: top|right|bottom|left")
	cmd.Flags().StringVar(&opts.end, "end", "", "side to enter the target: top|right|bottom|left")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the route as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable route caching")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.RegisterFlagCompletionFunc("start", completeDirections)
	_ = cmd.RegisterFlagCompletionFunc("end", completeDirections)

	return cmd
}

func (c *CLI) runConnect(cmd *cobra.Command, opts connectOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	req, err := connectRequest(opts)
	if err != nil {
		return err
	}

	l, err := c.newLayouter(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer l.Cache.Close()

	prog := newProgress(logger)
	wp, cached, err := l.ConnectWithCacheInfo(ctx, req)
	if err != nil {
		return err
	}
	prog.done("Routed connection")

	return writeRoute(cmd.OutOrStdout(), routeOutput{
		Waypoints: wp,
		Pair:      manhattan.PairOf(wp),
		Cached:    cached,
	}, opts.json)
}

func connectRequest(opts connectOpts) (manhattan.ConnectRequest, error) {
	var req manhattan.ConnectRequest
	var err error
	if req.Source, err = parseRect(opts.from); err != nil {
		return req, fmt.Errorf("--from: %w", err)
	}
	if req.Target, err = parseRect(opts.to); err != nil {
		return req, fmt.Errorf("--to: %w", err)
	}
	if req.Start, err = geom.ParseDirection(opts.start); err != nil {
		return req, fmt.Errorf("--start: %w", err)
	}
	if req.End, err = geom.ParseDirection(opts.end); err != nil {
		return req, fmt.Errorf("--end: %w", err)
	}
	return req, nil
}

// connectPointsCommand creates the connect-points command for routing between
// two raw points.
func (c *CLI) connectPointsCommand() *cobra.Command {
	var a, b, directions string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "connect-points",
		Short: "Route a connection between two points",
		Long: `Route an orthogonal connection between two points.

--directions names the axis the route leaves a and enters b on: h:h, h:v,
v:h or v:v. Points that share an x or y coordinate are joined directly.`,
		Example: `  orthoroute connect-points --a 0,0 --b 100,50 --directions h:v`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pa, err := parsePoint(a)
			if err != nil {
				return fmt.Errorf("--a: %w", err)
			}
			pb, err := parsePoint(b)
			if err != nil {
				return fmt.Errorf("--b: %w", err)
			}
			wp, err := manhattan.ConnectPointsString(pa, pb, directions)
			if err != nil {
				return err
			}
			return writeRoute(cmd.OutOrStdout(), routeOutput{Waypoints: wp, Pair: manhattan.PairOf(wp)}, asJSON)
		},
	}

	cmd.Flags().StringVar(&a, "a", "", "start point x,y (required)")
	cmd.Flags().StringVar(&b, "b", "", "end point x,y (required)")
	cmd.Flags().StringVar(&directions, "directions", manhattan.DefaultPair.String(), "direction pair h:h|h:v|v:h|v:v")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route as JSON")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	_ = cmd.RegisterFlagCompletionFunc("directions", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"h:h", "h:v", "v:h", "v:v"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func completeDirections(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"top", "right", "bottom", "left"}, cobra.ShellCompDirectiveNoFileComp
}

// writeRoute prints a route as indented JSON or as a waypoint table.
func writeRoute(w io.Writer, out routeOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, waypointTable(out.Waypoints))
	parts := []string{out.Kind}
	if out.Pair != geom.PairNone {
		parts = append(parts, out.Pair.String())
	}
	fmt.Fprintln(w, routeSummary(len(out.Waypoints), parts, out.Cached))
	if out.Reason != "" {
		fmt.Fprintln(w, "  "+StyleDim.Render(out.Reason))
	}
	return nil
}
