package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/echowave/internal/appconfig"
	"pkt.systems/echowave/internal/echoproc"
)

func newChannelsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List available channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
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
			infos, err := runner.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, info := range infos {
				if info.Type != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", info.Name, info.Type)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), info.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}
