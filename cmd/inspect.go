package cmd

import (
	"fmt"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/xlsxparser"
	"github.com/spf13/cobra"
)

// inspectCmd prints the first worksheet of a workbook as TSV, the reverse of
// 'convert'.
var inspectCmd = &cobra.Command{
	Use:   "inspect WORKBOOK",
	Short: "Print the first worksheet of a workbook as tab-separated lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)

		sheet, err := xlsxparser.Parse(args[0])
		if err != nil {
			return err
		}
		logger.Debug("Read workbook", "sheet", sheet.Name, "rows", len(sheet.Rows))

		out := cmd.OutOrStdout()
		for _, line := range sheet.Lines() {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
