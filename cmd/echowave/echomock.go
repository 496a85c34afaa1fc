package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// newEchoMockCmd emits records shaped like `ros2 topic echo` output,
// for exercising the pipeline without a live middleware. It doubles
// as the stop-protocol test subject via --ignore-sigint.
func newEchoMockCmd() *cobra.Command {
	var intervalMs int
	var count int
	var encoding string
	var field string
	var frameID string
	var ignoreSigint bool
	cmd := &cobra.Command{
		Use:           "echo-mock [channel]",
		Short:         "Emit mock echo records for testing",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mockConfig{
				interval:     time.Duration(intervalMs) * time.Millisecond,
				count:        count,
				encoding:     encoding,
				field:        field,
				frameID:      frameID,
				ignoreSigint: ignoreSigint,
			}
			return runEchoMock(cmd, cfg)
		},
	}
	cmd.Flags().IntVar(&intervalMs, "interval-ms", 100, "milliseconds between records")
	cmd.Flags().IntVar(&count, "count", 0, "number of records to emit (0 = until interrupted)")
	cmd.Flags().StringVar(&encoding, "encoding", "utf8", "output encoding: utf8 or shiftjis")
	cmd.Flags().StringVar(&field, "field", "data", "name of the numeric field")
	cmd.Flags().StringVar(&frameID, "frame-id", "mock", "frame_id to stamp records with")
	cmd.Flags().BoolVar(&ignoreSigint, "ignore-sigint", false, "swallow SIGINT to exercise stop escalation")
	return cmd
}

type mockConfig struct {
	interval     time.Duration
	count        int
	encoding     string
	field        string
	frameID      string
	ignoreSigint bool
}

func runEchoMock(cmd *cobra.Command, cfg mockConfig) error {
	var out io.Writer = cmd.OutOrStdout()
	if cfg.encoding == "shiftjis" {
		out = transform.NewWriter(out, japanese.ShiftJIS.NewEncoder())
	} else if cfg.encoding != "utf8" && cfg.encoding != "" {
		return fmt.Errorf("unsupported encoding: %s", cfg.encoding)
	}
	writer := bufio.NewWriter(out)
	defer func() { _ = writer.Flush() }()

	if cfg.ignoreSigint {
		sigCh := make(chan os.Signal, 4)
		signal.Notify(sigCh, unix.SIGINT)
		defer signal.Stop(sigCh)
		go func() {
			for range sigCh {
			}
		}()
	}

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	// With --ignore-sigint the context is also ignored: the process
	// must stay alive until killed outright.
	var done <-chan struct{}
	if !cfg.ignoreSigint {
		done = cmd.Context().Done()
	}

	status := "ok"
	if cfg.encoding == "shiftjis" {
		status = "稼働中"
	}

	emitted := 0
	for {
		now := time.Now()
		value := math.Sin(2 * math.Pi * float64(emitted) / 50)
		if err := writeMockRecord(writer, cfg, now, value, status); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
		emitted++
		if cfg.count > 0 && emitted >= cfg.count {
			return nil
		}
		select {
		case <-done:
			return nil
		case <-ticker.C:
		}
	}
}

func writeMockRecord(w io.Writer, cfg mockConfig, now time.Time, value float64, status string) error {
	_, err := fmt.Fprintf(w,
		"header:\n  stamp:\n    sec: %d\n    nanosec: %d\n  frame_id: %s\nstatus: %s\n%s: %.4f\n---\n",
		now.Unix(), now.Nanosecond(), cfg.frameID, status, cfg.field, value)
	return err
}
