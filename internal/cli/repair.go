package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

// repairCommand creates the repair command, which updates an existing route
// after its shapes moved.
func (c *CLI) repairCommand() *cobra.Command {
	var asJSON, noCache bool

	cmd := &cobra.Command{
		Use:   "repair <request.json | ->",
		Short: "Repair a route after its shapes moved",
		Long: `Repair an existing route after one or both shapes moved.

The request is a JSON object with the shapes' new bounds, optional pinned
sides and the previous waypoints (anchored endpoints carry their "original"
point so the move can be detected). Use - to read it from stdin.`,
		Example: `  orthoroute repair request.json
  cat request.json | orthoroute repair - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRepairRequest(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			l, err := c.newLayouter(ctx, noCache)
			if err != nil {
				return err
			}
			defer l.Cache.Close()

			prog := newProgress(loggerFromContext(ctx))
			rep, cached, err := l.RepairWithCacheInfo(ctx, req)
			if err != nil {
				return err
			}
			prog.done("Repaired connection")

			return writeRoute(cmd.OutOrStdout(), routeOutput{
				Waypoints: rep.Waypoints,
				Pair:      manhattan.PairOf(rep.Waypoints),
				Kind:      rep.Kind.String(),
				Reason:    rep.Reason,
				Cached:    cached,
			}, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the repaired route as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable route caching")

	return cmd
}

// readRepairRequest decodes a repair request from path, or from stdin when
// path is "-".
func readRepairRequest(stdin io.Reader, path string) (manhattan.RepairRequest, error) {
	var req manhattan.RepairRequest

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, errs.Wrap(errs.ErrCodeInvalidInput, err, "open request")
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode repair request")
	}
	return req, nil
}
