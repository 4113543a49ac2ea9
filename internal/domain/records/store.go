package records

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sort targets accepted by ToggleSortOrder.
const (
	TargetMedical  = "medical"
	TargetFurusato = "furusato"
)

// Furusato boolean fields accepted by ToggleFurusatoFlag.
const (
	FlagReceived = "isReceived"
	FlagOneStop  = "isOneStop"
)

// Store is the single source of truth for all record collections. Every
// mutation goes through it so the persistence write and the history
// side effects are never skipped. Lookups of unknown ids are silent
// no-ops by contract; callers that pass already-processed ids (e.g. a
// double-clicked delete button) must not fail.
type Store struct {
	mu      sync.Mutex
	data    *AppData
	gateway Gateway
	logger  zerolog.Logger
	sortAsc bool
}

// NewStore creates a store over gw seeded with data, typically the
// result of storage.LoadWithRetry. A nil data starts empty.
func NewStore(data *AppData, gw Gateway, logger zerolog.Logger) *Store {
	if data == nil {
		data = NewAppData()
	}
	return &Store{
		data:    data,
		gateway: gw,
		logger:  logger,
		sortAsc: true,
	}
}

// persist writes the full aggregate through the gateway. Called with
// the mutex held so saves observe mutations in order. A failed save is
// logged and returned but the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) error {
	if err := s.gateway.Save(ctx, s.data.Clone()); err != nil {
		s.logger.Error().Err(err).Msg("failed to save records")
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// UpsertMedical inserts or replaces a medical record. A record with no
// id is assigned a fresh one and prepended; a known id is replaced in
// place. The patient and provider names are merged into the suggestion
// history.
func (s *Store) UpsertMedical(ctx context.Context, rec MedicalRecord) (MedicalRecord, error) {
	if rec.Category == "" {
		rec.Category = CategoryTreatment
	}
	if !validCategories[rec.Category] {
		return MedicalRecord{}, fmt.Errorf("invalid category: %s", rec.Category)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.data.Medical {
		if s.data.Medical[i].ID == rec.ID {
			s.data.Medical[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.data.Medical = append([]MedicalRecord{rec}, s.data.Medical...)
	}

	s.data.History.PatientNames = mergeHistory(s.data.History.PatientNames, rec.PatientName, HistoryNameCap)
	s.data.History.ProviderNames = mergeHistory(s.data.History.ProviderNames, rec.ProviderName, HistoryNameCap)

	return rec, s.persist(ctx)
}

// DeleteMedical moves a record from the active collection to the head
// of the trash. The removed record is returned so the caller can offer
// an undo action; an unknown id returns (nil, nil).
func (s *Store) DeleteMedical(ctx context.Context, id string) (*MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.Medical {
		if s.data.Medical[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	rec := s.data.Medical[idx]
	s.data.Medical = append(s.data.Medical[:idx], s.data.Medical[idx+1:]...)
	s.data.Deleted = append([]MedicalRecord{rec}, s.data.Deleted...)

	return &rec, s.persist(ctx)
}

// RestoreMedical moves a trashed record back to the active collection,
// which is then re-sorted newest first. An id not present in the trash
// (e.g. after the trash was emptied) is a silent no-op.
func (s *Store) RestoreMedical(ctx context.Context, id string) (*MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.Deleted {
		if s.data.Deleted[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	rec := s.data.Deleted[idx]
	s.data.Deleted = append(s.data.Deleted[:idx], s.data.Deleted[idx+1:]...)
	s.data.Medical = append([]MedicalRecord{rec}, s.data.Medical...)
	sort.SliceStable(s.data.Medical, func(i, j int) bool {
		return s.data.Medical[i].Date > s.data.Medical[j].Date
	})

	return &rec, s.persist(ctx)
}

// ClearMedicalTrash empties the medical trash. Irreversible.
func (s *Store) ClearMedicalTrash(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Deleted = []MedicalRecord{}
	return s.persist(ctx)
}

// ImportMedicalBatch prepends imported records ahead of the existing
// active collection, preserving the batch's own order. Names are merged
// into the suggestion history like individual creates. Returns the
// number of records added.
func (s *Store) ImportMedicalBatch(ctx context.Context, recs []MedicalRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Medical = append(append([]MedicalRecord{}, recs...), s.data.Medical...)
	for _, rec := range recs {
		s.data.History.PatientNames = mergeHistory(s.data.History.PatientNames, rec.PatientName, HistoryNameCap)
		s.data.History.ProviderNames = mergeHistory(s.data.History.ProviderNames, rec.ProviderName, HistoryNameCap)
	}
	return len(recs), s.persist(ctx)
}

// UpsertFurusato inserts or replaces a donation record and merges the
// municipality into the city suggestion history.
func (s *Store) UpsertFurusato(ctx context.Context, rec FurusatoRecord) (FurusatoRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.data.Furusato {
		if s.data.Furusato[i].ID == rec.ID {
			s.data.Furusato[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.data.Furusato = append([]FurusatoRecord{rec}, s.data.Furusato...)
	}

	s.data.History.Cities = mergeHistory(s.data.History.Cities, rec.City, HistoryCityCap)

	return rec, s.persist(ctx)
}

// DeleteFurusato moves a donation record to the head of the furusato
// trash; unknown ids return (nil, nil).
func (s *Store) DeleteFurusato(ctx context.Context, id string) (*FurusatoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.Furusato {
		if s.data.Furusato[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	rec := s.data.Furusato[idx]
	s.data.Furusato = append(s.data.Furusato[:idx], s.data.Furusato[idx+1:]...)
	s.data.DeletedFurusato = append([]FurusatoRecord{rec}, s.data.DeletedFurusato...)

	return &rec, s.persist(ctx)
}

// RestoreFurusato moves a trashed donation record back to the active
// collection, re-sorted newest first.
func (s *Store) RestoreFurusato(ctx context.Context, id string) (*FurusatoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.DeletedFurusato {
		if s.data.DeletedFurusato[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	rec := s.data.DeletedFurusato[idx]
	s.data.DeletedFurusato = append(s.data.DeletedFurusato[:idx], s.data.DeletedFurusato[idx+1:]...)
	s.data.Furusato = append([]FurusatoRecord{rec}, s.data.Furusato...)
	sort.SliceStable(s.data.Furusato, func(i, j int) bool {
		return s.data.Furusato[i].Date > s.data.Furusato[j].Date
	})

	return &rec, s.persist(ctx)
}

// ClearFurusatoTrash empties the furusato trash. Irreversible.
func (s *Store) ClearFurusatoTrash(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.DeletedFurusato = []FurusatoRecord{}
	return s.persist(ctx)
}

// ToggleFurusatoFlag flips one of the donation booleans (FlagReceived
// or FlagOneStop) on the matching record. Unknown ids and unknown
// fields are silent no-ops.
func (s *Store) ToggleFurusatoFlag(ctx context.Context, id, field string) (*FurusatoRecord, error) {
	if field != FlagReceived && field != FlagOneStop {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Furusato {
		if s.data.Furusato[i].ID != id {
			continue
		}
		switch field {
		case FlagReceived:
			s.data.Furusato[i].IsReceived = !s.data.Furusato[i].IsReceived
		case FlagOneStop:
			s.data.Furusato[i].IsOneStop = !s.data.Furusato[i].IsOneStop
		}
		rec := s.data.Furusato[i]
		return &rec, s.persist(ctx)
	}
	return nil, nil
}

// ToggleSortOrder flips the global ascending/descending flag and
// re-sorts the chosen active collection by date. Dates are zero-padded
// ISO strings, so lexicographic comparison orders them correctly; equal
// dates keep their relative order. The reordering is view state and
// does not trigger a persistence write on its own.
func (s *Store) ToggleSortOrder(target string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch target {
	case TargetMedical, TargetFurusato:
	default:
		return "", fmt.Errorf("invalid sort target: %s", target)
	}

	s.sortAsc = !s.sortAsc
	asc := s.sortAsc
	if target == TargetMedical {
		sort.SliceStable(s.data.Medical, func(i, j int) bool {
			if asc {
				return s.data.Medical[i].Date < s.data.Medical[j].Date
			}
			return s.data.Medical[i].Date > s.data.Medical[j].Date
		})
	} else {
		sort.SliceStable(s.data.Furusato, func(i, j int) bool {
			if asc {
				return s.data.Furusato[i].Date < s.data.Furusato[j].Date
			}
			return s.data.Furusato[i].Date > s.data.Furusato[j].Date
		})
	}
	return s.sortOrderLocked(), nil
}

func (s *Store) sortOrderLocked() string {
	if s.sortAsc {
		return "asc"
	}
	return "desc"
}

// SortOrder reports the current global sort direction ("asc" or "desc").
func (s *Store) SortOrder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortOrderLocked()
}

// Medical returns a copy of the active medical collection.
func (s *Store) Medical() []MedicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MedicalRecord{}, s.data.Medical...)
}

// Furusato returns a copy of the active furusato collection.
func (s *Store) Furusato() []FurusatoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FurusatoRecord{}, s.data.Furusato...)
}

// DeletedMedical returns a copy of the medical trash.
func (s *Store) DeletedMedical() []MedicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MedicalRecord{}, s.data.Deleted...)
}

// DeletedFurusato returns a copy of the furusato trash.
func (s *Store) DeletedFurusato() []FurusatoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FurusatoRecord{}, s.data.DeletedFurusato...)
}

// History returns a copy of the suggestion history.
func (s *Store) History() History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.History.Clone()
}
