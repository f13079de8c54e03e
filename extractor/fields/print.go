package fields

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aqlanhadi/dsx/extractor/common"
)

const missingCell = "NaN"

// Print writes the human-readable report for one workbook.
func Print(w io.Writer, f common.Fields) {
	if f.Service.Present() {
		fmt.Fprintf(w, "Heat Exchanger Name: %s\n", *f.Service.Value)
	} else {
		fmt.Fprintln(w, "Service not found.")
	}

	if f.EffectiveArea.Present() {
		fmt.Fprintf(w, "Effective Area Value: %s\n", *f.EffectiveArea.Value)
	} else {
		fmt.Fprintln(w, "Effective Area not found.")
	}

	if f.HeatDuty == nil {
		fmt.Fprintln(w, "Heat Duty not found.")
		return
	}
	PrintWindow(w, *f.HeatDuty)
}

// PrintWindow dumps the window as an aligned grid labelled by row index and
// column header. Blank cells show as NaN.
func PrintWindow(w io.Writer, window common.Window) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(window.ColLabels, "\t"))
	for i, row := range window.Cells {
		values := make([]string, len(row))
		for j, v := range row {
			if v == "" {
				v = missingCell
			}
			values[j] = common.StripChars(v, "\t\n")
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", strconv.Itoa(window.RowLabels[i]), strings.Join(values, "\t"))
	}
	tw.Flush()
}
