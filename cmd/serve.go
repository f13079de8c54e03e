package cmd

import (
	"log"
	"os"

	"github.com/aqlanhadi/dsx/api"
	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/aqlanhadi/dsx/extractor/tables"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that scans PDFs, returns their tables as xlsx and scrapes uploaded workbooks.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure logging for server mode
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		// Create API server with configuration
		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		}
		cfg.LogPrefix = "SERVER: "
		// Extraction and scraping follow the loaded config
		cfg.DefaultPages = viper.GetString("serve.pages")
		cfg.Tables = tables.OptionsFromConfig()
		cfg.Scrape = fields.OptionsFromConfig()

		server := api.New(cfg)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on")
}
