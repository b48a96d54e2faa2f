package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// WriteCatalog prints the catalog as a Markdown table, one row per condition.
func WriteCatalog(w io.Writer, c *catalog.Catalog) error {
	rows := make([][]string, 0, c.Len())
	for i, r := range c.Records() {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Name,
			string(r.Status),
			strconv.Itoa(r.Confidence) + "%",
			strings.Join(r.Treatments, "; "),
		})
	}

	md := markdown.NewMarkdown(w)
	md.H2("Disease Catalog")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"#", "Condition", "Status", "Confidence", "Treatments"},
		Rows:   rows,
	})
	return md.Build()
}
