package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phanxgames/hitplot"
	"github.com/phanxgames/hitplot/internal/tui"
)

func newScalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "Print the x and y scales derived from the configured shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := mustApp(cmd)
			r := hitplot.ComputeScales(app.Shapes, app.Config.Size(), app.Config.ToOptions().ScaleOptions())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "x: domain=%v range=%v\n", r.X.Domain(), r.X.Range())
			fmt.Fprintf(out, "y: domain=%v range=%v\n", r.Y.Domain(), r.Y.Range())
			if r.SinglePoint {
				fmt.Fprintln(out, "single point: true")
			}
			return nil
		},
	}
}

func newCellsCmd() *cobra.Command {
	var asGeoJSON bool
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "Build the interaction layer and print its cells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := mustApp(cmd)
			if len(app.Shapes) == 0 {
				return ErrNoShapes
			}
			t, err := app.buildLayer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asGeoJSON {
				data, err := t.GeoJSON()
				if err != nil {
					return fmt.Errorf("encode cells: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTITY\tSITE\tVERTICES\tAREA\tCLIP")
			for _, c := range t.Cells() {
				fmt.Fprintf(tw, "%d\t(%.1f, %.1f)\t%d\t%.1f\t%.1f\n",
					c.EntityIndex, c.Site.X, c.Site.Y, len(c.Polygon.Points), c.Polygon.Area(), c.ClipRadius)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "print the cells as a GeoJSON feature collection")
	return cmd
}

// buildLayer runs one synchronous rebuild and returns the tessellation.
func (a *appContext) buildLayer() (*hitplot.Tessellation, error) {
	opts := a.Config.ToOptions()
	opts.Interactive = true
	opts.UseTessellation = true
	opts.DebounceDelay = 0
	c := hitplot.NewChart(opts)
	c.SetLogger(a.Logger.Named("chart"))
	c.SetMetrics(a.Metrics)
	c.Update(a.Shapes, a.Config.Size())
	t := c.Tessellation()
	if t == nil {
		return nil, errors.New("interaction layer could not be built; see log for details")
	}
	return t, nil
}

func newReplayCmd() *cobra.Command {
	var (
		frame     time.Duration
		maxFrames int
	)
	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Replay a pointer script against the configured shapes and print dispatched events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := mustApp(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			runner, err := hitplot.LoadScript(data)
			if err != nil {
				return err
			}

			clock := hitplot.NewManualClock(time.Unix(0, 0).UTC())
			c := app.newChart(clock)
			defer c.Close()

			out := cmd.OutOrStdout()
			start := clock.Now()
			report := func(ev hitplot.Event) {
				fmt.Fprintf(out, "%8s  %-12s entity=%d pointer=(%.1f, %.1f) data=(%.3f, %.3f)\n",
					clock.Now().Sub(start), ev.Type, ev.EntityIndex,
					ev.PointerPosition.X, ev.PointerPosition.Y, ev.DataPosition.X, ev.DataPosition.Y)
			}
			c.OnHoverEnter(report)
			c.OnHoverExit(report)
			c.OnClick(report)
			c.OnDoubleClick(report)

			c.Update(app.Shapes, app.Config.Size())
			frames := runner.Run(c, clock, frame, maxFrames)
			fmt.Fprintf(out, "frames=%d suppressed=%d done=%v\n", frames, c.Suppressed(), runner.Done())
			if !runner.Done() {
				return fmt.Errorf("script did not finish within %d frames", maxFrames)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&frame, "frame", 16*time.Millisecond, "simulated time per frame")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 10000, "stop after this many frames")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Open the terminal inspector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := mustApp(cmd)
			if len(app.Shapes) == 0 {
				return ErrNoShapes
			}
			if app.Config.Metrics.Enabled {
				stop := app.serveMetrics()
				defer stop()
			}
			c := app.newChart(nil)
			// The inspector owns the terminal, so the chart only logs warnings.
			c.SetDebugMode(false)
			return tui.Run(tui.New(c, app.Shapes, nil))
		},
	}
}

// serveMetrics starts the Prometheus endpoint and returns a function that
// shuts it down.
func (a *appContext) serveMetrics() func() {
	srv := &http.Server{
		Addr:              a.Config.Metrics.Addr,
		Handler:           a.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.Logger.Info("serving metrics", zap.String("addr", srv.Addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
