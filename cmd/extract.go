package cmd

import (
	"fmt"

	"github.com/aqlanhadi/dsx/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts tables from the PDFs in a folder",
	Long: `Scans every PDF in the folder for the configured phrases and writes
the tables found on the matching pages to <name>_tables.xlsx, or to
<name>_Page_<n>_tables.xlsx with --output per_page.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		// folder is shared with scrape, bind it for the command that runs
		viper.BindPFlag("folder", cmd.Flags().Lookup("folder"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := extractor.ExecuteAgainstDirectory(viper.GetString("folder"))
		if err != nil {
			return err
		}
		if verbose {
			fmt.Printf("\nComplete: %d processed, %d skipped, %d failed\n",
				report.Processed, report.Skipped, report.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("folder", "f", ".", "Folder in which dsx will scan for PDF files")
	extractCmd.Flags().StringSliceP("phrase", "p", nil, "Phrase to search for (repeatable)")
	extractCmd.Flags().String("flavor", "", "Table detection flavor: lattice or stream")
	extractCmd.Flags().String("pages", "", "Pages to extract instead of the matched ones (e.g. all, 1,3, 2-end)")
	extractCmd.Flags().String("output", "", "Workbook layout: per_document or per_page")
	extractCmd.Flags().Bool("validate", false, "Validate each PDF with pdfcpu before extracting")

	viper.BindPFlag("phrases", extractCmd.Flags().Lookup("phrase"))
	viper.BindPFlag("extract.flavor", extractCmd.Flags().Lookup("flavor"))
	viper.BindPFlag("extract.pages", extractCmd.Flags().Lookup("pages"))
	viper.BindPFlag("extract.output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("extract.validate", extractCmd.Flags().Lookup("validate"))
}
