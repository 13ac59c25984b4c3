package main

import (
	"fmt"
	"os"
	"time"

	"iaction/internal/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//金額はJSONで数値として出す
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd := &cobra.Command{
		Use:          "iaction",
		Short:        "iaction payment and content API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv(".env", "../.env")
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
