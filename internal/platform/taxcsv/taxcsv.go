// Package taxcsv converts medical records to and from the spreadsheet
// CSV layout. The format is fixed by compatibility with files users
// already exported: a UTF-8 BOM so Numbers/Excel detect the encoding,
// six Japanese column names, and bare comma-joined rows without RFC
// 4180 quoting. A free-text field containing a comma corrupts its row;
// that limitation is part of the format.
package taxcsv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kojo/kojo/internal/domain/records"
)

// BOM is the UTF-8 byte-order mark prepended to every export.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the fixed column row: date, patient, provider, category,
// amount paid, amount reimbursed.
const Header = "日付,受診者,病院・薬局,区分,支払金額,補填金額"

// Export renders the records in collection order.
func Export(recs []records.MedicalRecord) []byte {
	var b strings.Builder
	b.WriteString(Header)
	for _, r := range recs {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			r.Date,
			r.PatientName,
			r.ProviderName,
			string(r.Category),
			strconv.Itoa(r.Amount),
			strconv.Itoa(r.Reimbursement),
		}, ","))
	}
	return append(append([]byte{}, BOM...), b.String()...)
}

// Filename returns the suggested export name for a calendar year.
func Filename(year int) string {
	return fmt.Sprintf("医療費控除明細_%d.csv", year)
}

// Degradation notes one field that could not be parsed and was
// defaulted or caused its row to be skipped.
type Degradation struct {
	Line  int    `json:"line"` // 1-based line number in the input
	Field string `json:"field"`
}

// ImportResult is the outcome of parsing CSV text. Records carry
// freshly generated ids in the input's row order; Degraded lists every
// defaulted field so callers can surface them before committing.
type ImportResult struct {
	Records  []records.MedicalRecord `json:"records"`
	Degraded []Degradation           `json:"degraded,omitempty"`
}

// Import parses CSV text exported by this tool (or hand-edited to the
// same layout). The first line is discarded as the header, blank lines
// are skipped, fields are split positionally and trimmed, and numeric
// fields default to 0 when unparsable rather than rejecting the import.
func Import(text string) ImportResult {
	result := ImportResult{Records: []records.MedicalRecord{}}

	lines := strings.Split(strings.TrimPrefix(text, string(BOM)), "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			result.Degraded = append(result.Degraded, Degradation{Line: i + 1, Field: "row"})
			continue
		}

		category := strings.TrimSpace(fields[3])
		rec := records.MedicalRecord{
			ID:           uuid.NewString(),
			Date:         strings.TrimSpace(fields[0]),
			PatientName:  strings.TrimSpace(fields[1]),
			ProviderName: strings.TrimSpace(fields[2]),
			Category:     records.CoerceCategory(category),
		}
		if string(rec.Category) != category {
			result.Degraded = append(result.Degraded, Degradation{Line: i + 1, Field: "category"})
		}
		var ok bool
		if rec.Amount, ok = parseYen(fields[4]); !ok {
			result.Degraded = append(result.Degraded, Degradation{Line: i + 1, Field: "amount"})
		}
		if rec.Reimbursement, ok = parseYen(fields[5]); !ok {
			result.Degraded = append(result.Degraded, Degradation{Line: i + 1, Field: "reimbursement"})
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

func parseYen(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
