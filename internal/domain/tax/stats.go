// Package tax computes the dashboard totals and the e-Tax grouping from
// the current record collections. Everything here is a pure function of
// its inputs; callers may recompute at any time.
package tax

import "github.com/kojo/kojo/internal/domain/records"

// Policy constants of the estimate. The ¥100,000 floor is the medical
// expense deduction threshold, ¥2,000 the non-deductible furusato self
// contribution, and 20% a rough combined income+resident tax rate. The
// resulting refund is an approximation, not tax advice.
const (
	MedicalDeductionFloor = 100000
	FurusatoSelfPayment   = 2000
	ApproxTaxRate         = 0.20
)

// Summary holds the derived totals shown on the dashboard. Amounts are
// whole yen. NetExpense is deliberately not clamped: a reimbursement
// exceeding the amount paid flows through as a negative value, and the
// deduction floor clamps at the next step.
type Summary struct {
	Total              int `json:"total"`
	TotalReimbursement int `json:"totalReimbursement"`
	NetExpense         int `json:"netExpense"`
	MedicalDeduction   int `json:"medicalDeduction"`
	FurusatoTotal      int `json:"furusatoTotal"`
	FurusatoDeduction  int `json:"furusatoDeduction"`
	EstimatedRefund    int `json:"estimatedRefund"`
}

// Summarize computes the combined tax summary over the active
// collections.
func Summarize(medical []records.MedicalRecord, furusato []records.FurusatoRecord) Summary {
	var s Summary
	for _, r := range medical {
		s.Total += r.Amount
		s.TotalReimbursement += r.Reimbursement
	}
	s.NetExpense = s.Total - s.TotalReimbursement
	s.MedicalDeduction = max(0, s.NetExpense-MedicalDeductionFloor)

	for _, r := range furusato {
		s.FurusatoTotal += r.Amount
	}
	s.FurusatoDeduction = max(0, s.FurusatoTotal-FurusatoSelfPayment)

	// Integer truncation matches the floor the original applies to the
	// medical contribution.
	s.EstimatedRefund = int(float64(s.MedicalDeduction)*ApproxTaxRate) + s.FurusatoDeduction
	return s
}

// EtaxEntry is the annual total for one (patient, provider) pair, the
// unit of entry on the e-Tax medical expense aggregation screen.
// UsedCategories is rendered against the fixed four-category checklist.
type EtaxEntry struct {
	PatientName        string                    `json:"patientName"`
	ProviderName       string                    `json:"providerName"`
	TotalAmount        int                       `json:"totalAmount"`
	TotalReimbursement int                       `json:"totalReimbursement"`
	UsedCategories     []records.MedicalCategory `json:"usedCategories"`
}

// EtaxSummary partitions the active medical records by the
// (patient, provider) pair, in first-seen order.
func EtaxSummary(medical []records.MedicalRecord) []EtaxEntry {
	type key struct {
		patient, provider string
	}
	index := map[key]int{}
	entries := []EtaxEntry{}
	seen := map[key]map[records.MedicalCategory]bool{}

	for _, r := range medical {
		k := key{r.PatientName, r.ProviderName}
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, EtaxEntry{
				PatientName:  r.PatientName,
				ProviderName: r.ProviderName,
			})
			seen[k] = map[records.MedicalCategory]bool{}
		}
		entries[i].TotalAmount += r.Amount
		entries[i].TotalReimbursement += r.Reimbursement
		seen[k][r.Category] = true
	}

	// Categories are reported in the checklist's fixed order so equal
	// inputs always produce equal output.
	for i := range entries {
		k := key{entries[i].PatientName, entries[i].ProviderName}
		for _, c := range records.AllCategories {
			if seen[k][c] {
				entries[i].UsedCategories = append(entries[i].UsedCategories, c)
			}
		}
	}
	return entries
}
