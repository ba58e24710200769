package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmehra2102/ordersystem/pkg/config"
)

const serviceName = "order-service"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Members, products, orders and payments over REST",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")

	load := func() (config.Config, error) { return config.Load(cfgPath) }
	rootCmd.AddCommand(serveCmd(load), migrateCmd(load))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
