package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"luxtrail/internal/config"
	"luxtrail/internal/session"
	"luxtrail/internal/store"
)

// Output modes for the display writer.
const (
	outputAuto  = "auto"
	outputJSON  = "json"
	outputColor = "color"
	outputTUI   = "tui"
	outputNone  = "none"
)

type writerOptions struct {
	Output    string
	PrintOnly bool
	RowFile   string
	// State enables the Redis writer when REDIS_ADDR is set.
	State store.Store
}

// newWriter sets up the display writer and the optional sinks selected by
// flags and env vars. Closing the returned writer releases every sink.
func newWriter(cfg *config.Config, opts writerOptions) (*session.MultiWriter, error) {
	var writers []session.Writer

	dw, err := displayWriter(cfg, opts.Output)
	if err != nil {
		return nil, err
	}
	writers = append(writers, dw)

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !opts.PrintOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		gw, err := session.NewGreptimeDBWriter(endpoint, database)
		if err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("init GreptimeDB writer: %w", err)
		}
		writers = append(writers, gw)
	}

	if opts.RowFile != "" {
		fw, err := session.NewFileWriter(opts.RowFile)
		if err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("create row log: %w", err)
		}
		writers = append(writers, fw)
	}

	if opts.State != nil && os.Getenv("REDIS_ADDR") != "" && !opts.PrintOnly {
		writers = append(writers, session.NewRedisWriter(opts.State, session.DefaultStateTTL))
	}

	return session.NewMultiWriter(writers...), nil
}

// displayWriter picks the writer for STDOUT. The auto mode prints colors on
// a terminal and JSON lines otherwise.
func displayWriter(cfg *config.Config, output string) (session.Writer, error) {
	if output == "" || output == outputAuto {
		output = outputJSON
		if term.IsTerminal(int(os.Stdout.Fd())) {
			output = outputColor
		}
	}
	switch output {
	case outputJSON:
		return session.NewJSONStdoutWriter(), nil
	case outputColor:
		return session.NewColorStdoutWriter(cfg), nil
	case outputTUI:
		return session.NewTUIWriter(cfg), nil
	case outputNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown output %q (want auto, json, color, tui or none)", output)
	}
}

func closeAll(ws []session.Writer) {
	session.NewMultiWriter(ws...).Close()
}
