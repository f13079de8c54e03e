package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aqlanhadi/dsx/extractor"
	"github.com/aqlanhadi/dsx/extractor/fields"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scrapeJSON bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes Service, Effective Area and Heat Duty from workbooks",
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("folder", cmd.Flags().Lookup("folder"))
		viper.BindPFlag("scrape.all_sheets", cmd.Flags().Lookup("all-sheets"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := viper.GetString("folder")
		if !scrapeJSON {
			_, err := extractor.ScrapeAgainstDirectory(folder)
			return err
		}

		result, err := extractor.ScrapeDirectory(folder, fields.OptionsFromConfig(), io.Discard)
		if err != nil {
			return err
		}
		asJSON, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Println(string(asJSON))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("folder", "f", ".", "Folder in which dsx will scan for workbooks")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "Print the scraped fields as JSON")
	scrapeCmd.Flags().Bool("all-sheets", true, "Scan every sheet instead of the first one only")
}
