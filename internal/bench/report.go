package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteTable writes results as an aligned text table.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scenario\tsize\titers\twrites\trecomputes\teffects\tflushes\telapsed\tns/write\talloc KiB\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%.1f\t%.1f\t\n",
			r.Scenario,
			r.Size,
			r.Iterations,
			r.Writes,
			r.Recomputes,
			r.EffectRuns,
			r.Flushes,
			r.Elapsed.Round(time.Microsecond),
			r.NsPerWrite(),
			float64(r.AllocBytes)/1024,
		)
	}
	return tw.Flush()
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
