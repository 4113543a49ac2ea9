package tax

import (
	"reflect"
	"testing"

	"github.com/kojo/kojo/internal/domain/records"
)

func med(patient, provider string, category records.MedicalCategory, amount, reimbursement int) records.MedicalRecord {
	return records.MedicalRecord{
		ID:            patient + provider,
		Date:          "2026-01-01",
		PatientName:   patient,
		ProviderName:  provider,
		Category:      category,
		Amount:        amount,
		Reimbursement: reimbursement,
	}
}

func TestSummarize_MedicalAndFurusato(t *testing.T) {
	medical := []records.MedicalRecord{
		med("太郎", "市立病院", records.CategoryTreatment, 30000, 0),
		med("太郎", "大学病院", records.CategoryTreatment, 150000, 50000),
	}
	furusato := []records.FurusatoRecord{
		{ID: "f1", Date: "2026-02-01", City: "北見市", Amount: 25000},
	}

	s := Summarize(medical, furusato)
	if s.Total != 180000 {
		t.Errorf("total: expected 180000, got %d", s.Total)
	}
	if s.TotalReimbursement != 50000 {
		t.Errorf("totalReimbursement: expected 50000, got %d", s.TotalReimbursement)
	}
	if s.NetExpense != 130000 {
		t.Errorf("netExpense: expected 130000, got %d", s.NetExpense)
	}
	if s.MedicalDeduction != 30000 {
		t.Errorf("medicalDeduction: expected 30000, got %d", s.MedicalDeduction)
	}
	if s.FurusatoTotal != 25000 {
		t.Errorf("furusatoTotal: expected 25000, got %d", s.FurusatoTotal)
	}
	if s.FurusatoDeduction != 23000 {
		t.Errorf("furusatoDeduction: expected 23000, got %d", s.FurusatoDeduction)
	}
	// floor(30000 * 0.2) + 23000
	if s.EstimatedRefund != 29000 {
		t.Errorf("estimatedRefund: expected 29000, got %d", s.EstimatedRefund)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	if s != (Summary{}) {
		t.Errorf("expected all-zero summary, got %+v", s)
	}
}

func TestSummarize_BelowDeductionFloor(t *testing.T) {
	medical := []records.MedicalRecord{med("太郎", "薬局", records.CategoryMedicine, 80000, 0)}
	s := Summarize(medical, nil)
	if s.MedicalDeduction != 0 {
		t.Errorf("expected no deduction below the floor, got %d", s.MedicalDeduction)
	}
	if s.EstimatedRefund != 0 {
		t.Errorf("expected no refund, got %d", s.EstimatedRefund)
	}
}

func TestSummarize_NegativeNetExpenseNotClamped(t *testing.T) {
	// Reimbursement may exceed the amount paid (e.g. the high-cost
	// medical care system pays out after year end). The negative net is
	// preserved; only the deduction is floored at zero.
	medical := []records.MedicalRecord{med("太郎", "大学病院", records.CategoryTreatment, 100000, 160000)}
	s := Summarize(medical, nil)
	if s.NetExpense != -60000 {
		t.Errorf("expected netExpense -60000, got %d", s.NetExpense)
	}
	if s.MedicalDeduction != 0 {
		t.Errorf("expected zero deduction, got %d", s.MedicalDeduction)
	}
}

func TestSummarize_FurusatoBelowSelfPayment(t *testing.T) {
	furusato := []records.FurusatoRecord{{ID: "f1", City: "北見市", Amount: 1500}}
	s := Summarize(nil, furusato)
	if s.FurusatoDeduction != 0 {
		t.Errorf("expected zero furusato deduction, got %d", s.FurusatoDeduction)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	medical := []records.MedicalRecord{
		med("太郎", "市立病院", records.CategoryTreatment, 30000, 0),
		med("花子", "薬局", records.CategoryMedicine, 12000, 3000),
	}
	furusato := []records.FurusatoRecord{{ID: "f1", City: "焼津市", Amount: 40000}}

	first := Summarize(medical, furusato)
	second := Summarize(medical, furusato)
	if first != second {
		t.Errorf("expected identical results, got %+v then %+v", first, second)
	}
}

func TestEtaxSummary_GroupsByPatientAndProvider(t *testing.T) {
	medical := []records.MedicalRecord{
		med("Taro", "City Hospital", records.CategoryTreatment, 30000, 0),
		med("Taro", "City Hospital", records.CategoryMedicine, 5000, 1000),
	}

	entries := EtaxSummary(medical)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.PatientName != "Taro" || e.ProviderName != "City Hospital" {
		t.Errorf("unexpected key: %s / %s", e.PatientName, e.ProviderName)
	}
	if e.TotalAmount != 35000 {
		t.Errorf("expected totalAmount 35000, got %d", e.TotalAmount)
	}
	if e.TotalReimbursement != 1000 {
		t.Errorf("expected totalReimbursement 1000, got %d", e.TotalReimbursement)
	}
	want := []records.MedicalCategory{records.CategoryTreatment, records.CategoryMedicine}
	if !reflect.DeepEqual(e.UsedCategories, want) {
		t.Errorf("expected usedCategories %v, got %v", want, e.UsedCategories)
	}
}

func TestEtaxSummary_FirstSeenOrder(t *testing.T) {
	medical := []records.MedicalRecord{
		med("花子", "薬局", records.CategoryMedicine, 1000, 0),
		med("太郎", "市立病院", records.CategoryTreatment, 2000, 0),
		med("花子", "薬局", records.CategoryOther, 500, 0),
	}

	entries := EtaxSummary(medical)
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].PatientName != "花子" || entries[1].PatientName != "太郎" {
		t.Errorf("expected first-seen order, got %s then %s", entries[0].PatientName, entries[1].PatientName)
	}
	if entries[0].TotalAmount != 1500 {
		t.Errorf("expected 1500 for the first group, got %d", entries[0].TotalAmount)
	}
}

func TestEtaxSummary_SamePatientDifferentProviders(t *testing.T) {
	medical := []records.MedicalRecord{
		med("太郎", "市立病院", records.CategoryTreatment, 1000, 0),
		med("太郎", "薬局", records.CategoryMedicine, 2000, 0),
	}
	if entries := EtaxSummary(medical); len(entries) != 2 {
		t.Fatalf("expected separate entries per provider, got %d", len(entries))
	}
}

func TestEtaxSummary_Empty(t *testing.T) {
	if entries := EtaxSummary(nil); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
