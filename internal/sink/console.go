package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// TableWriter prints records as an aligned table, one row per record.
// The mode is ignored.
type TableWriter struct {
	out      io.Writer
	decimals int
}

// NewTableWriter creates a console writer; nil out means stdout.
func NewTableWriter(out io.Writer) *TableWriter {
	if out == nil {
		out = os.Stdout
	}
	return &TableWriter{out: out, decimals: 4}
}

func (w *TableWriter) Write(_ context.Context, records []models.RatioRecord, _ Mode) error {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(models.RatioColumns(), "\t")+"\t")
	for _, r := range records {
		cells := []string{r.Company}
		for _, f := range r.Fields() {
			cells = append(cells, utils.FormatNullable(*f, w.decimals))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return &WriteError{Sink: KindConsole, Err: err}
	}
	if len(records) == 0 {
		fmt.Fprintln(w.out, "(no rows)")
	}
	return nil
}
