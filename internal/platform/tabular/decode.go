package tabular

import (
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
)

// DecodeTSV decodes a headed, tab-separated stream into a slice of structs
// tagged with `csv:"..."`. Columns without a matching tag are ignored.
func DecodeTSV(r io.Reader, out interface{}) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return gocsv.UnmarshalCSV(cr, out)
}
