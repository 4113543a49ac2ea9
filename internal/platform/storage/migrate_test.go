package storage

import (
	"testing"

	"github.com/kojo/kojo/internal/domain/records"
)

func TestMigrate_Empty(t *testing.T) {
	data, err := Migrate(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Version != records.CurrentVersion {
		t.Errorf("expected version %d, got %d", records.CurrentVersion, data.Version)
	}
	if len(data.Medical) != 0 || len(data.Furusato) != 0 {
		t.Error("expected an empty aggregate")
	}
}

func TestMigrate_BareMedicalArray(t *testing.T) {
	raw := []byte(`[
		{"id":"m1","date":"2024-05-01","patientName":"太郎","providerName":"市立病院","category":"診療・治療","amount":3000,"reimbursement":0}
	]`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Medical) != 1 {
		t.Fatalf("expected 1 medical record, got %d", len(data.Medical))
	}
	if data.Medical[0].Category != records.CategoryTreatment {
		t.Errorf("unexpected category: %q", data.Medical[0].Category)
	}
	if data.Version != records.CurrentVersion {
		t.Errorf("expected version stamped to %d, got %d", records.CurrentVersion, data.Version)
	}
	if data.Deleted == nil || data.Furusato == nil {
		t.Error("expected trash and furusato lists initialized")
	}
}

func TestMigrate_HospitalsHistoryBecomesProviders(t *testing.T) {
	raw := []byte(`{
		"medical": [],
		"history": {"patientNames":["太郎"],"hospitals":["市立病院","駅前薬局"],"cities":["北見市"]}
	}`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := data.History
	if len(h.ProviderNames) != 2 || h.ProviderNames[0] != "市立病院" {
		t.Errorf("expected hospitals carried over as providers, got %v", h.ProviderNames)
	}
	if len(h.PatientNames) != 1 || len(h.Cities) != 1 {
		t.Errorf("expected other history lists preserved, got %+v", h)
	}
}

func TestMigrate_ProviderNamesWinOverHospitals(t *testing.T) {
	raw := []byte(`{
		"history": {"providerNames":["新しい病院"],"hospitals":["古い病院"]}
	}`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.History.ProviderNames) != 1 || data.History.ProviderNames[0] != "新しい病院" {
		t.Errorf("expected the newer list preferred, got %v", data.History.ProviderNames)
	}
}

func TestMigrate_UnknownCategoryCoerced(t *testing.T) {
	raw := []byte(`{
		"medical": [{"id":"m1","date":"2024-05-01","patientName":"太郎","providerName":"整体院","category":"マッサージ","amount":4000}]
	}`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Medical[0].Category != records.CategoryOther {
		t.Errorf("expected unknown category coerced, got %q", data.Medical[0].Category)
	}
}

func TestMigrate_MissingTrashListsInitialized(t *testing.T) {
	raw := []byte(`{"version":1,"medical":[],"furusato":[]}`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Deleted == nil || data.DeletedFurusato == nil {
		t.Error("expected trash lists non-nil")
	}
	if data.History.PatientNames == nil || data.History.ProviderNames == nil || data.History.Cities == nil {
		t.Error("expected history lists non-nil")
	}
}

func TestMigrate_CurrentShapePassesThrough(t *testing.T) {
	raw := []byte(`{
		"version": 2,
		"medical": [{"id":"m1","date":"2026-01-10","patientName":"太郎","providerName":"市立病院","category":"診療・治療","amount":3000,"reimbursement":0}],
		"furusato": [{"id":"f1","date":"2026-03-01","city":"北見市","amount":10000,"memo":"","isOneStop":true,"isReceived":false}],
		"deleted": [],
		"deletedFurusato": [],
		"history": {"patientNames":["太郎"],"providerNames":["市立病院"],"cities":["北見市"]}
	}`)
	data, err := Migrate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Medical) != 1 || len(data.Furusato) != 1 {
		t.Fatalf("expected records preserved, got %d medical / %d furusato", len(data.Medical), len(data.Furusato))
	}
	if !data.Furusato[0].IsOneStop {
		t.Error("expected furusato flags preserved")
	}
	if data.History.ProviderNames[0] != "市立病院" {
		t.Errorf("unexpected history: %+v", data.History)
	}
}

func TestMigrate_Malformed(t *testing.T) {
	if _, err := Migrate([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := Migrate([]byte(`[{"id":`)); err == nil {
		t.Fatal("expected error for malformed array payload")
	}
}
