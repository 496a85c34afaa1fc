// Package echoproc hosts the echo subprocesses: one per active
// channel subscription, plus the channel discovery command. The core
// only sees handles and event streams; how commands are assembled
// stays here.
package echoproc

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"pkt.systems/echowave/core"
	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

// Config controls how the echo and list commands are invoked.
type Config struct {
	BinaryPath string
	EchoArgs   []string
	ListArgs   []string
	Env        []string
}

// Runner implements core.Runner over os/exec.
type Runner struct {
	cfg Config
}

// NewRunner constructs an echo subprocess runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "ros2"
	}
	if len(cfg.EchoArgs) == 0 {
		cfg.EchoArgs = []string{"topic", "echo"}
	}
	if len(cfg.ListArgs) == 0 {
		cfg.ListArgs = []string{"topic", "list", "-t"}
	}
	return &Runner{cfg: cfg}, nil
}

// Subscribe starts an echo process for the channel.
func (r *Runner) Subscribe(ctx context.Context, req core.SubscribeRequest) (core.RunHandle, error) {
	if strings.TrimSpace(string(req.Channel)) == "" {
		return nil, schema.ErrInvalidChannel
	}
	args := append(append([]string(nil), r.cfg.EchoArgs...), string(req.Channel))
	log := pslog.Ctx(ctx)
	log.Info("echo exec start", "binary", r.cfg.BinaryPath, "args", args, "env_extra", len(r.cfg.Env))

	cmd := exec.CommandContext(ctx, r.cfg.BinaryPath, args...)
	cmd.Env = append(os.Environ(), r.cfg.Env...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("echo exec stdout failed", "err", err)
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		log.Error("echo exec stderr failed", "err", err)
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		log.Error("echo exec start failed", "err", err)
		return nil, fmt.Errorf("start %s: %w", r.cfg.BinaryPath, err)
	}
	if cmd.Process != nil {
		log.Info("echo exec started", "pid", cmd.Process.Pid)
	}

	handle := &runHandle{
		cmd:     cmd,
		stream:  newChunkStream(ctx, stdout, stderr),
		done:    make(chan struct{}),
		log:     log,
		started: time.Now(),
	}
	go handle.wait()
	return handle, nil
}

// List runs the channel discovery command and parses its output into
// `name [type]` pairs; lines without a type label yield a bare name.
func (r *Runner) List(ctx context.Context) ([]schema.ChannelInfo, error) {
	cmd := exec.CommandContext(ctx, r.cfg.BinaryPath, r.cfg.ListArgs...)
	cmd.Env = append(os.Environ(), r.cfg.Env...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list channels via %s: %w", r.cfg.BinaryPath, err)
	}
	return parseChannelList(out), nil
}

func parseChannelList(out []byte) []schema.ChannelInfo {
	var infos []schema.ChannelInfo
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		info := schema.ChannelInfo{Name: schema.ChannelID(line)}
		if open := strings.Index(line, " ["); open > 0 && strings.HasSuffix(line, "]") {
			info.Name = schema.ChannelID(strings.TrimSpace(line[:open]))
			info.Type = line[open+2 : len(line)-1]
		}
		infos = append(infos, info)
	}
	return infos
}

type runHandle struct {
	cmd     *exec.Cmd
	stream  *chunkStream
	done    chan struct{}
	log     pslog.Logger
	started time.Time
}

func (h *runHandle) Events() core.EventStream {
	return h.stream
}

func (h *runHandle) Signal(ctx context.Context, sig core.ProcessSignal) error {
	_ = ctx
	if h.cmd == nil || h.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	switch sig {
	case core.ProcessSignalINT:
		return h.cmd.Process.Signal(unix.SIGINT)
	case core.ProcessSignalKILL:
		return h.cmd.Process.Signal(unix.SIGKILL)
	default:
		return fmt.Errorf("unsupported signal: %s", sig)
	}
}

func (h *runHandle) Done() <-chan struct{} {
	return h.done
}

func (h *runHandle) Close() error {
	if h.stream != nil {
		_ = h.stream.Close()
	}
	return nil
}

// wait drains the pipe readers, reaps the process, and publishes the
// exit event before closing the stream.
func (h *runHandle) wait() {
	h.stream.wg.Wait()
	err := h.cmd.Wait()
	exitCode := 0
	signal := ""
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				signal = status.Signal().String()
			}
		} else {
			h.log.Warn("echo exec wait failed", "err", err)
			h.stream.setErr(err)
		}
	}
	h.stream.finish(exitCode, signal)
	close(h.done)

	fields := []any{
		"exit_code", exitCode,
		"duration_ms", time.Since(h.started).Milliseconds(),
	}
	if signal != "" {
		fields = append(fields, "signal", signal)
	}
	h.log.Info("echo exec finished", fields...)
}
