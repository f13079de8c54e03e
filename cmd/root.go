package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aqlanhadi/dsx/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration, used when no .dsx.yaml is found
const defaultConfigYAML = `
folder: .
phrases:
  - Effective Area
extract:
  flavor: lattice
  line_scale: 40
  strip_text: "\n"
  split_text: true
  tolerance: 2
  output: per_document
  validate: false
scrape:
  all_sheets: true
  markers:
    service: Service
    effective_area: Effective Area
    heat_duty: Heat Duty
serve:
  pages: all
database:
  max_conns: 4
unidoc:
  license_key: ""`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "dsx [folder]",
		Short: "Extract datasheet tables from PDFs and scrape fields out of them",
		Long: `dsx scans the PDFs in a folder for a phrase, extracts the tables on the
matching pages into <name>_tables.xlsx workbooks and then scrapes the
Service, Effective Area and Heat Duty fields out of every workbook.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A positional folder overrides the configured one
			if len(args) == 1 {
				viper.Set("folder", args[0])
			}
			folder := viper.GetString("folder")
			log.Println("📂 Running against", folder)
			return extractor.Run(folder)
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Add config flag to root command
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.dsx.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	// Defaults first so a partial config file still gets every key
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
		fmt.Printf("Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Add config paths in order of priority
		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".dsx")
	}

	viper.SetEnvPrefix("dsx")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		// No config file found keeps the embedded defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
