// =============================================================================
// TSV to XLSX Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   converter convert INPUT [OUTPUT]  - Convert one TSV file to a workbook
//   converter process                 - Convert every TSV file in input_dir
//   converter inspect WORKBOOK        - Print a workbook as TSV
//   converter version                 - Display the application version
//
// ARCHITECTURE:
//   - cmd/      : CLI command definitions (Cobra)
//   - internal/ : Conversion logic (TSV reader, workbook writer, converter)
//   - pkg/      : Shared file utilities for batch runs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/TSV-to-XLSX-conversion/cmd"
)

func main() {
	cmd.Execute()
}
