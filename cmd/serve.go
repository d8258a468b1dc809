package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"cast_check/registry"
	"cast_check/server"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Open(cfg.Registry)
		if err != nil {
			return err
		}
		logrus.Infof("registry %s: %d abilities", cfg.Registry, len(reg.Entries))

		if !logrus.IsLevelEnabled(logrus.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, reg).Run(ctx, cfg.Addr)
	},
}
