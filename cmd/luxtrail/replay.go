package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/source"
)

var (
	replayInput      string
	replaySpeed      float64
	replayOutput     string
	replayPrintOnly  bool
	replayConfigPath string
	replaySchemaPath string
	replayLogFile    string
	replayNoGeocode  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded row log",
	Long:  "replay feeds location and light rows from a log written by run --log-file back through the tracker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, err := loadConfig(replayConfigPath, replaySchemaPath)
		if err != nil {
			return err
		}
		if replayNoGeocode {
			cfg.Geocoder.Provider = "none"
		}

		log, closeLog, err := newLogger(cfg, replayOutput == outputTUI)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		st, closeStore := newStore(log)
		defer closeStore()
		geocoder, err := newGeocoder(cfg.Geocoder, st)
		if err != nil {
			return err
		}
		writer, err := newWriter(cfg, writerOptions{
			Output:    replayOutput,
			PrintOnly: replayPrintOnly,
			RowFile:   replayLogFile,
			State:     st,
		})
		if err != nil {
			return err
		}
		defer writer.Close()

		sess := newSession(cfg, geocoder, writer)
		writer.SetSnapshot(sess.Snapshot)

		locations := make(chan geo.Position)
		lights := make(chan float32)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return ignoreCanceled(source.ReplayFile(ctx, replayInput, replaySpeed, locations, lights))
		})
		g.Go(func() error {
			sess.Run(ctx, locations, lights)
			return nil
		})
		return g.Wait()
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to row log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 replays without delay)")
	replayCmd.Flags().StringVar(&replayOutput, "output", outputAuto, "Display output: auto, json, color, tui or none")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Only print rows, skip GreptimeDB and Redis sinks")
	replayCmd.Flags().StringVar(&replayConfigPath, "config", "", "Path to tracker configuration YAML (defaults when empty)")
	replayCmd.Flags().StringVar(&replaySchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	replayCmd.Flags().StringVar(&replayLogFile, "log-file", "", "Path to export the replayed rows (JSONL)")
	replayCmd.Flags().BoolVar(&replayNoGeocode, "no-geocode", false, "Skip address lookups")
	replayCmd.MarkFlagRequired("input")
}
