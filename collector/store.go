// Package collector owns the in-memory record store that accumulates
// per-test attempt history during a run. The store is created at run start,
// mutated only through attempt ingestion, read once at run end, then discarded.
package collector

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/e2e-infra/run-reporter/types"
)

// Store maps test identity to its record. Records are created lazily on first
// sight and never recreated for the same identity within a run. Iteration
// order is the order tests were first seen.
type Store struct {
	log     log.Logger
	roster  *TeamRoster
	records map[string]*types.TestRecord
	order   []string
}

// NewStore creates an empty store. The roster drives owning-team resolution
// at record creation time.
func NewStore(logger log.Logger, roster *TeamRoster) *Store {
	if roster == nil {
		roster = NewTeamRoster(nil, "")
	}
	return &Store{
		log:     logger,
		roster:  roster,
		records: make(map[string]*types.TestRecord),
		order:   make([]string, 0),
	}
}

// EnsureRecord returns the record for the given test, creating it on first
// call. Creation snapshots the metadata, derives the coarse status from the
// executor outcome and resolves the owning team; subsequent calls for the
// same identity return the existing record with its metadata unchanged.
func (s *Store) EnsureRecord(meta types.TestMetadata) *types.TestRecord {
	id := meta.TestID()
	if record, exists := s.records[id]; exists {
		return record
	}

	meta.Status = meta.Outcome.CoarseStatus()
	meta.Team = s.roster.Resolve(meta.Title, meta.Annotations)

	record := &types.TestRecord{
		Metadata: meta,
		Attempts: make([]types.AttemptRecord, 0, 1),
	}
	s.records[id] = record
	s.order = append(s.order, id)

	s.log.Debug("Created test record", "testId", id, "outcome", meta.Outcome, "team", meta.Team)
	return record
}

// AppendAttempt appends one attempt to an existing record. A missing record
// is logged and ignored rather than raised; ingestion always ensures the
// record first, so this cannot happen by construction.
func (s *Store) AppendAttempt(testID string, attempt types.AttemptRecord) {
	record, exists := s.records[testID]
	if !exists {
		s.log.Warn("Dropping attempt for unknown test record", "testId", testID, "status", attempt.Status)
		return
	}
	record.Attempts = append(record.Attempts, attempt)
}

// Record returns the record for a test identity, if present.
func (s *Store) Record(testID string) (*types.TestRecord, bool) {
	record, exists := s.records[testID]
	return record, exists
}

// Records returns all records in first-seen order.
func (s *Store) Records() []*types.TestRecord {
	out := make([]*types.TestRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Len returns the number of distinct tests seen so far.
func (s *Store) Len() int {
	return len(s.order)
}
