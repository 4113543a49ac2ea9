package storage

import (
	"bytes"
	"encoding/json"

	"github.com/kojo/kojo/internal/domain/records"
)

// Earlier releases persisted drifting shapes: a bare medical array, a
// two-list history ({hospitals, cities}), free-string categories, and
// missing trash lists. Migrate accepts any of them and returns the
// canonical aggregate stamped with the current format version.

type legacyHistory struct {
	PatientNames  []string `json:"patientNames"`
	ProviderNames []string `json:"providerNames"`
	Hospitals     []string `json:"hospitals"`
	Cities        []string `json:"cities"`
}

type legacyMedical struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	PatientName      string `json:"patientName"`
	ProviderName     string `json:"providerName"`
	Category         string `json:"category"`
	Amount           int    `json:"amount"`
	Reimbursement    int    `json:"reimbursement"`
	IsSelfMedication bool   `json:"isSelfMedication"`
}

type legacyAppData struct {
	Version         int                      `json:"version"`
	Medical         []legacyMedical          `json:"medical"`
	Furusato        []records.FurusatoRecord `json:"furusato"`
	Deleted         []legacyMedical          `json:"deleted"`
	DeletedFurusato []records.FurusatoRecord `json:"deletedFurusato"`
	History         legacyHistory            `json:"history"`
}

// Migrate decodes a persisted aggregate of any known format version.
func Migrate(raw []byte) (*records.AppData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return records.NewAppData(), nil
	}

	// The very first release stored only the medical list.
	if trimmed[0] == '[' {
		var medical []legacyMedical
		if err := json.Unmarshal(trimmed, &medical); err != nil {
			return nil, err
		}
		data := records.NewAppData()
		data.Medical = upgradeMedical(medical)
		return data, nil
	}

	var legacy legacyAppData
	if err := json.Unmarshal(trimmed, &legacy); err != nil {
		return nil, err
	}

	data := records.NewAppData()
	data.Medical = upgradeMedical(legacy.Medical)
	data.Deleted = upgradeMedical(legacy.Deleted)
	if legacy.Furusato != nil {
		data.Furusato = legacy.Furusato
	}
	if legacy.DeletedFurusato != nil {
		data.DeletedFurusato = legacy.DeletedFurusato
	}
	data.History = upgradeHistory(legacy.History)
	return data, nil
}

func upgradeMedical(in []legacyMedical) []records.MedicalRecord {
	out := make([]records.MedicalRecord, 0, len(in))
	for _, m := range in {
		out = append(out, records.MedicalRecord{
			ID:               m.ID,
			Date:             m.Date,
			PatientName:      m.PatientName,
			ProviderName:     m.ProviderName,
			Category:         records.CoerceCategory(m.Category),
			Amount:           m.Amount,
			Reimbursement:    m.Reimbursement,
			IsSelfMedication: m.IsSelfMedication,
		})
	}
	return out
}

// upgradeHistory converts the two-list shape. Hospital names were what
// the provider field suggested from, so they become provider
// suggestions.
func upgradeHistory(h legacyHistory) records.History {
	out := records.History{
		PatientNames:  []string{},
		ProviderNames: []string{},
		Cities:        []string{},
	}
	if h.PatientNames != nil {
		out.PatientNames = h.PatientNames
	}
	switch {
	case h.ProviderNames != nil:
		out.ProviderNames = h.ProviderNames
	case h.Hospitals != nil:
		out.ProviderNames = h.Hospitals
	}
	if h.Cities != nil {
		out.Cities = h.Cities
	}
	return out
}
