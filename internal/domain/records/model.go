package records

// MedicalCategory is the closed set of expense categories used by the
// medical-expense deduction form.
type MedicalCategory string

const (
	CategoryTreatment MedicalCategory = "診療・治療"
	CategoryMedicine  MedicalCategory = "医薬品購入"
	CategoryCare      MedicalCategory = "介護サービス"
	CategoryOther     MedicalCategory = "その他の医療費（交通費など）"
)

// AllCategories lists every category in form order. The e-Tax checklist
// renders this fixed set regardless of which categories appear in the data.
var AllCategories = []MedicalCategory{
	CategoryTreatment,
	CategoryMedicine,
	CategoryCare,
	CategoryOther,
}

var validCategories = map[MedicalCategory]bool{
	CategoryTreatment: true,
	CategoryMedicine:  true,
	CategoryCare:      true,
	CategoryOther:     true,
}

// CoerceCategory maps a free-form category string onto the closed enum.
// Unknown values fall back to CategoryOther; this is how pre-versioned
// data (which stored categories as free text) is normalized on load.
func CoerceCategory(s string) MedicalCategory {
	c := MedicalCategory(s)
	if validCategories[c] {
		return c
	}
	return CategoryOther
}

// MedicalRecord is one medical expense entry.
type MedicalRecord struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"` // YYYY-MM-DD
	PatientName      string          `json:"patientName"`
	ProviderName     string          `json:"providerName"`
	Category         MedicalCategory `json:"category"`
	Amount           int             `json:"amount"`
	Reimbursement    int             `json:"reimbursement"`
	IsSelfMedication bool            `json:"isSelfMedication,omitempty"`
}

// FurusatoRecord is one furusato-nozei donation entry.
type FurusatoRecord struct {
	ID         string `json:"id"`
	Date       string `json:"date"` // YYYY-MM-DD
	City       string `json:"city"`
	Amount     int    `json:"amount"`
	Memo       string `json:"memo"`
	IsOneStop  bool   `json:"isOneStop"`
	IsReceived bool   `json:"isReceived"`
}

// History holds recently used free-text values for autocomplete. Each
// list is de-duplicated and ordered most-recent-first.
type History struct {
	PatientNames  []string `json:"patientNames"`
	ProviderNames []string `json:"providerNames"`
	Cities        []string `json:"cities"`
}

// CurrentVersion is the persisted format version AppData is migrated to
// on load.
const CurrentVersion = 2

// AppData is the full persisted aggregate. It round-trips atomically
// through the storage gateway after every mutation.
type AppData struct {
	Version         int              `json:"version"`
	Medical         []MedicalRecord  `json:"medical"`
	Furusato        []FurusatoRecord `json:"furusato"`
	Deleted         []MedicalRecord  `json:"deleted"`
	DeletedFurusato []FurusatoRecord `json:"deletedFurusato"`
	History         History          `json:"history"`
}

// Clone returns a deep copy of the history lists.
func (h History) Clone() History {
	return History{
		PatientNames:  append([]string{}, h.PatientNames...),
		ProviderNames: append([]string{}, h.ProviderNames...),
		Cities:        append([]string{}, h.Cities...),
	}
}

// Clone returns a deep copy of the aggregate, safe to hand to a gateway
// that serializes outside the store's lock.
func (d *AppData) Clone() *AppData {
	return &AppData{
		Version:         d.Version,
		Medical:         append([]MedicalRecord{}, d.Medical...),
		Furusato:        append([]FurusatoRecord{}, d.Furusato...),
		Deleted:         append([]MedicalRecord{}, d.Deleted...),
		DeletedFurusato: append([]FurusatoRecord{}, d.DeletedFurusato...),
		History:         d.History.Clone(),
	}
}

// NewAppData returns an empty aggregate at the current format version.
func NewAppData() *AppData {
	return &AppData{
		Version:         CurrentVersion,
		Medical:         []MedicalRecord{},
		Furusato:        []FurusatoRecord{},
		Deleted:         []MedicalRecord{},
		DeletedFurusato: []FurusatoRecord{},
		History: History{
			PatientNames:  []string{},
			ProviderNames: []string{},
			Cities:        []string{},
		},
	}
}
