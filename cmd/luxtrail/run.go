package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"luxtrail/internal/admin"
	"luxtrail/internal/config"
	"luxtrail/internal/geo"
	"luxtrail/internal/geocode"
	"luxtrail/internal/logging"
	"luxtrail/internal/route"
	"luxtrail/internal/session"
	"luxtrail/internal/source"
	"luxtrail/internal/telemetry"
	"luxtrail/internal/tracker"
)

const (
	sourceWalk  = "walk"
	sourceHTTP  = "http"
	sourceRoute = "route"

	feedBuffer = 64
)

var (
	runConfigPath string
	runSchemaPath string
	runSource     string
	runOutput     string
	runPrintOnly  bool
	runLogFile    string
	runAdminAddr  string
	runRoute      string
	runRouteEvery time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the checkpoint tracker",
	Long:  "run feeds location and light events from a simulated walk, a scripted route or the HTTP ingest endpoints into the tracker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		var steps []route.Step
		switch runSource {
		case sourceWalk, sourceHTTP:
		case sourceRoute:
			r, err := route.Lookup(runRoute)
			if err != nil {
				return err
			}
			steps = r.Plan(walkStart(cfg.Walk), runRouteEvery.Seconds())
		default:
			return fmt.Errorf("unknown source %q (want walk, http or route)", runSource)
		}
		if runSource == sourceHTTP && runAdminAddr == "" {
			return fmt.Errorf("--source http needs --admin-addr")
		}

		log, closeLog, err := newLogger(cfg, runOutput == outputTUI)
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
			Output:    runOutput,
			PrintOnly: runPrintOnly,
			RowFile:   runLogFile,
			State:     st,
		})
		if err != nil {
			return err
		}
		defer writer.Close()

		sess := newSession(cfg, geocoder, writer)
		writer.SetSnapshot(sess.Snapshot)

		g, ctx := errgroup.WithContext(ctx)
		var locations <-chan geo.Position
		var lights <-chan float32
		var feed *admin.Feed
		switch runSource {
		case sourceWalk:
			locs := make(chan geo.Position)
			lts := make(chan float32)
			locations, lights = locs, lts
			gen := telemetry.NewGenerator(walkStart(cfg.Walk), walkParams(cfg.Walk), rand.New(rand.NewSource(cfg.Walk.Seed)))
			g.Go(func() error {
				source.Walk(ctx, gen, cfg.Walk.LocationInterval(), cfg.Walk.LightInterval(), locs, lts)
				return nil
			})
		case sourceRoute:
			locs := make(chan geo.Position)
			lts := make(chan float32)
			locations, lights = locs, lts
			lightsPerStep := int(runRouteEvery / cfg.Walk.LightInterval())
			if lightsPerStep < 1 {
				lightsPerStep = 1
			}
			g.Go(func() error {
				return ignoreCanceled(source.Route(ctx, steps, runRouteEvery, lightsPerStep, locs, lts))
			})
		case sourceHTTP:
			feed = admin.NewFeed(feedBuffer)
			locations, lights = feed.Locations(), feed.Lights()
			g.Go(func() error {
				<-ctx.Done()
				feed.Close()
				return nil
			})
		}

		if runAdminAddr != "" {
			srv := admin.NewServer(sess, feed)
			g.Go(func() error {
				if err := srv.Start(ctx, runAdminAddr); err != nil {
					return fmt.Errorf("admin server: %w", err)
				}
				return nil
			})
			writer.SetAdminStatus(true)
		}

		g.Go(func() error {
			sess.Run(ctx, locations, lights)
			return nil
		})

		err = g.Wait()
		log.Info("tracker stopped", "checkpoints", sess.Snapshot().Checkpoints)
		return err
	},
}

func newSession(cfg *config.Config, geocoder geocode.Geocoder, writer session.Writer) *session.Session {
	deviceID := cfg.DeviceID
	if env := os.Getenv("DEVICE_ID"); env != "" {
		deviceID = env
	}
	tr := tracker.New(cfg.Tracker.RadiusM, cfg.Tracker.MaxLightStorage)
	return session.NewSession(deviceID, tr, geocoder, writer, session.Options{
		LookupTimeout: cfg.Geocoder.Timeout(),
		MaxLookups:    cfg.Geocoder.MaxLookups,
	})
}

// ignoreCanceled drops the error of a source stopped by a signal.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func walkStart(w config.WalkConfig) geo.Position {
	return geo.Position{Lat: w.StartLat, Lon: w.StartLon, Alt: w.StartAlt}
}

func walkParams(w config.WalkConfig) telemetry.WalkParams {
	p := telemetry.DefaultWalkParams
	p.SpeedMinMPS = w.SpeedMinMPS
	p.SpeedMaxMPS = w.SpeedMaxMPS
	p.TurnMaxDeg = w.TurnMaxDeg
	p.LightMeanLux = w.LightMeanLux
	p.LightNoise = w.LightNoise
	return p
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to tracker configuration YAML (defaults when empty)")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	runCmd.Flags().StringVar(&runSource, "source", sourceWalk, "Event source: walk, http or route")
	runCmd.Flags().StringVar(&runRoute, "route", "city-block", "Built-in route name or route YAML path for --source route")
	runCmd.Flags().DurationVar(&runRouteEvery, "route-interval", time.Second, "Time between route steps (0 runs without delay)")
	runCmd.Flags().StringVar(&runOutput, "output", outputAuto, "Display output: auto, json, color, tui or none")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Only print rows, skip GreptimeDB and Redis sinks")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export rows (JSONL, replayable)")
	runCmd.Flags().StringVar(&runAdminAddr, "admin-addr", ":8080", "Admin UI listen address (empty disables)")
}
