package main

import (
	"github.com/spf13/cobra"

	"vidscript/internal/serve"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var directory string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory of pages and media over HTTP for local preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bind") {
				bind = ctx.config.Serve.Bind
			}
			if !cmd.Flags().Changed("directory") {
				directory = ctx.config.Serve.Directory
			}
			server := serve.Server{Dir: directory, Addr: bind, Logger: logger}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", serve.DefaultAddr, "Listen address (default from config)")
	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Directory to serve (default from config)")
	return cmd
}
