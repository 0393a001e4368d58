package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "photos-proxy",
	Short: "Backend for browsing a Google Photos library",
	Long: `photos-proxy signs users in with Google, keeps their delegated tokens fresh and
proxies listing, search and item requests to the Photos Library API.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(newServeCmd(), newTranslateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
