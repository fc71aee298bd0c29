package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ling0322/pcfgparser/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parse requests over HTTP",
		Long: `Serve parse requests over HTTP.

Endpoints:
  GET  /health
  POST /parse   {"sentence": "the man saw a dog", "algorithm": "earley"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			parser, err := cfg.NewParser()
			if err != nil {
				return err
			}

			if !cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			router := server.New(parser, logger)

			logger.Info("serving",
				zap.String("addr", cfg.Addr),
				zap.String("grammar", cfg.Grammar),
				zap.String("algorithm", string(parser.Algorithm())))
			return router.Run(cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
