package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		if !isEchoMockInvocation(os.Args) {
			pslog.Ctx(ctx).With("err", err).Error("echowave command failed")
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "echowave",
		Short:         "Waveform viewer for channel echo streams",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newWatchCmd())
	root.AddCommand(newChannelsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newEchoMockCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func isEchoMockInvocation(args []string) bool {
	return len(args) > 1 && args[1] == "echo-mock"
}
