package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/echowave/core"
	"pkt.systems/echowave/internal/appconfig"
	"pkt.systems/echowave/internal/echoproc"
	"pkt.systems/echowave/internal/eventbus"
	"pkt.systems/echowave/schema"
	"pkt.systems/echowave/termview"
	"pkt.systems/pslog"
)

func newWatchCmd() *cobra.Command {
	var cfgPath string
	var fieldPath string
	var encoding string
	var maxPoints int
	var throttleMs int
	var width, height, logRows int
	cmd := &cobra.Command{
		Use:   "watch <channel> [channel ...]",
		Short: "Subscribe to channels and render their waveforms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if fieldPath != "" {
				cfg.Waveform.FieldPath = fieldPath
			}
			if maxPoints > 0 {
				cfg.Waveform.MaxPoints = maxPoints
			}
			if cmd.Flags().Changed("throttle-ms") {
				cfg.Waveform.ThrottleMs = throttleMs
			}
			if encoding != "" {
				cfg.Echo.Encoding = encoding
			}

			runner, err := echoproc.NewRunner(echoproc.Config{
				BinaryPath: cfg.Echo.Binary,
				EchoArgs:   cfg.Echo.EchoArgs,
				ListArgs:   cfg.Echo.ListArgs,
				Env:        envList(cfg.Echo.Env),
			})
			if err != nil {
				return err
			}

			bus := eventbus.New(logger)
			svc, err := core.NewService(schema.ServiceConfig{
				Waveform: schema.WaveformConfig{
					FieldPath:  cfg.Waveform.FieldPath,
					MaxPoints:  cfg.Waveform.MaxPoints,
					ThrottleMs: cfg.Waveform.ThrottleMs,
				},
				LogMaxLines: cfg.Log.MaxLines,
			}, core.ServiceDeps{
				Runner:    runner,
				EventSink: core.Fanout(bus, core.NewLoggingSink(logger)),
				Logger:    logger,
				Encoding:  cfg.Echo.Encoding,
			})
			if err != nil {
				return err
			}

			events, unsubscribe := bus.Subscribe()
			defer unsubscribe()

			view, err := termview.New(termview.Options{
				Service:  svc,
				Events:   events,
				Out:      cmd.OutOrStdout(),
				Logger:   logger,
				Width:    width,
				Height:   height,
				LogRows:  logRows,
				Throttle: time.Duration(cfg.Waveform.ThrottleMs) * time.Millisecond,
			})
			if err != nil {
				return err
			}

			for _, channel := range args {
				if _, err := svc.Activate(cmd.Context(), schema.ActivateRequest{Channel: schema.ChannelID(channel)}); err != nil {
					return fmt.Errorf("activate %s: %w", channel, err)
				}
			}
			view.Focus(schema.ChannelID(args[0]))
			logger.Info("watch started", "channels", len(args), "field_path", cfg.Waveform.FieldPath)

			runErr := view.Run(cmd.Context())

			// Shutdown runs against a fresh context; the command
			// context is already done.
			stopCtx := context.Background()
			for _, channel := range args {
				if _, err := svc.Deactivate(stopCtx, schema.DeactivateRequest{Channel: schema.ChannelID(channel)}); err != nil && !errors.Is(err, schema.ErrNotActive) {
					logger.Warn("deactivate on shutdown failed", "channel", channel, "err", err)
				}
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&fieldPath, "field", "", "dotted field path to chart (default: auto)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "stream encoding: auto, utf8 or shiftjis")
	cmd.Flags().IntVar(&maxPoints, "max-points", 0, "per-channel sample capacity")
	cmd.Flags().IntVar(&throttleMs, "throttle-ms", 0, "minimum milliseconds between redraws")
	cmd.Flags().IntVar(&width, "width", 0, "terminal width")
	cmd.Flags().IntVar(&height, "height", 0, "terminal height")
	cmd.Flags().IntVar(&logRows, "log-rows", 0, "scrollback rows below the chart")
	return cmd
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for key, value := range env {
		out = append(out, key+"="+value)
	}
	return out
}
