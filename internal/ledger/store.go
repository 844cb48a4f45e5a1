package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymledger/internal/telemetry/metrics"
	"github.com/2beens/gymledger/internal/telemetry/tracing"
)

var (
	ErrEntryNotFound  = errors.New("entry not found")
	ErrInvalidEntry   = errors.New("invalid entry")
	ErrNoValidEntries = errors.New("no valid entries")
)

const persistedLedgerVersion = 1

type persistedLedger struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// ExportDocument is the wire format of a full ledger export.
type ExportDocument struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Entries    []Entry   `json:"entries"`
}

// Subscriber receives a full ledger snapshot after each mutation.
type Subscriber func(snapshot []Entry)

// ReconcileResult reports what a day reconcile actually changed.
type ReconcileResult struct {
	Applied  []Entry  `json:"applied"`
	Removed  []Entry  `json:"removed"`
	Messages []string `json:"messages"`
}

// Store owns the authoritative, deduplicated collection of entries.
// All reads return independent copies, no caller ever holds a mutable
// reference into the store. The mutex serializes concurrent callers,
// each operation itself runs strictly sequentially.
type Store struct {
	mu      sync.Mutex
	storage Storage
	instr   *metrics.Manager // optional

	entries  []Entry
	warnings []string

	subscribers      map[int]Subscriber
	nextSubscriberID int
}

func NewStore(storage Storage, instr *metrics.Manager) *Store {
	return &Store{
		storage:     storage,
		instr:       instr,
		subscribers: make(map[int]Subscriber),
	}
}

// Load restores the ledger from storage, dropping malformed items and
// duplicate IDs. An empty main document triggers a one-time migration
// from the legacy storage keys. Persistence problems are advisory, they
// end up in Warnings, never as a returned error.
func (s *Store) Load(ctx context.Context) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.load")
	defer span.End()

	s.mu.Lock()
	s.warnings = nil

	payload, err := s.storage.Get(ctx, LedgerStorageKey)
	if err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("read ledger: %s", err))
		log.Errorf("ledger load, read storage: %s", err)
	}

	switch {
	case len(payload) > 0:
		var doc persistedLedger
		if err := json.Unmarshal(payload, &doc); err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("corrupt ledger document ignored: %s", err))
			log.Errorf("ledger load, unmarshal: %s", err)
			s.entries = nil
			break
		}
		entries, dropped := filterValid(doc.Entries)
		s.entries = entries
		if dropped > 0 {
			s.warnings = append(s.warnings, fmt.Sprintf("dropped %d invalid ledger items on load", dropped))
		}
	default:
		s.entries = nil
		s.migrateLegacyLocked(ctx)
	}

	span.SetAttributes(attribute.Int("entries.count", len(s.entries)))
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
}

// migrateLegacyLocked runs the one-time legacy key migration. Legacy
// payloads are read, merged, persisted under the main key and then the
// legacy keys are cleared. Only advisory messages come out of it.
func (s *Store) migrateLegacyLocked(ctx context.Context) {
	var payloads [][]byte
	for _, key := range LegacyStorageKeys {
		payload, err := s.storage.Get(ctx, key)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("read legacy key %q: %s", key, err))
			continue
		}
		if len(payload) > 0 {
			payloads = append(payloads, payload)
		}
	}
	if len(payloads) == 0 {
		return
	}

	migrated, report, err := migrateLegacyPayloads(payloads)
	if err != nil {
		log.Warnf("legacy ledger migration: %s", err)
	}
	s.entries = migrated
	s.warnings = append(s.warnings,
		fmt.Sprintf("migrated %d legacy ledger items (%d failed)", report.Migrated, report.Failed))
	if s.instr != nil {
		s.instr.CounterLegacyMigrated.Add(float64(report.Migrated))
	}

	s.persistLocked(ctx)
	if err := s.storage.Del(ctx, LegacyStorageKeys...); err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("clear legacy keys: %s", err))
		log.Errorf("clear legacy ledger keys: %s", err)
	}
}

// ReconcileDay merges the freshly extracted entries of one day into the
// ledger: matching set slots are updated in place (IDs preserved, a load
// change within the comparison tolerance still matches), new slots are
// created, and entries of that date not claimed by this extraction pass
// are pruned.
func (s *Store) ReconcileDay(ctx context.Context, day RawDay) (_ *ReconcileResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.reconcileDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("day.date", day.Date))

	if day.Date == "" {
		return nil, fmt.Errorf("%w: day record without date", ErrInvalidEntry)
	}

	newEntries := ExtractDay(day)

	s.mu.Lock()

	sameDay := make(map[entrySlot][]int) // slot -> indices into s.entries
	for i, e := range s.entries {
		if e.Date == day.Date {
			slot := entrySlot{e.Exercise, e.Metric, e.SetIndex}
			sameDay[slot] = append(sameDay[slot], i)
		}
	}

	result := &ReconcileResult{}
	produced := make(map[string]bool)

	// progress messages are computed against the pre-apply state
	for _, newEntry := range newEntries {
		if produced[newEntry.IdentityKey()] {
			continue
		}
		produced[newEntry.IdentityKey()] = true
		result.Messages = append(result.Messages, s.progressMessageLocked(newEntry))
	}

	storedCount := len(s.entries)
	claimed := make(map[int]bool) // stored indices this pass kept
	applied := make(map[string]bool)
	for _, newEntry := range newEntries {
		key := newEntry.IdentityKey()
		if applied[key] {
			continue
		}
		applied[key] = true

		slot := entrySlot{newEntry.Exercise, newEntry.Metric, newEntry.SetIndex}
		if idx, ok := matchStoredSlot(s.entries, sameDay[slot], claimed, newEntry); ok {
			claimed[idx] = true
			existing := &s.entries[idx]
			if entryUnchanged(*existing, newEntry) {
				continue
			}
			existing.Value = newEntry.Value
			existing.Notes = newEntry.Notes
			existing.SourceDayID = newEntry.SourceDayID
			existing.SetCount = newEntry.SetCount
			existing.BodyweightKg = newEntry.BodyweightKg
			result.Applied = append(result.Applied, *existing)
			continue
		}

		newEntry.ID = uuid.NewString()
		s.entries = append(s.entries, newEntry)
		result.Applied = append(result.Applied, newEntry)
	}

	// prune pre-existing day entries not claimed by this extraction pass
	kept := make([]Entry, 0, len(s.entries))
	for i, e := range s.entries {
		if i < storedCount && e.Date == day.Date && !claimed[i] {
			result.Removed = append(result.Removed, e)
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept

	span.SetAttributes(attribute.Int("applied", len(result.Applied)))
	span.SetAttributes(attribute.Int("removed", len(result.Removed)))

	if len(result.Applied) == 0 && len(result.Removed) == 0 {
		s.mu.Unlock()
		return result, nil
	}

	if s.instr != nil {
		s.instr.CounterEntriesReconciled.Add(float64(len(result.Applied)))
		s.instr.CounterEntriesPruned.Add(float64(len(result.Removed)))
	}

	s.persistLocked(ctx)
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return result, nil
}

// progressMessageLocked builds the human-readable diff against the most
// recent prior-dated entry of the same exercise/metric/set whose load is
// within the comparison tolerance.
func (s *Store) progressMessageLocked(newEntry Entry) string {
	var best *Entry
	for i := range s.entries {
		e := &s.entries[i]
		if e.Exercise != newEntry.Exercise ||
			e.Metric != newEntry.Metric ||
			e.SetIndex != newEntry.SetIndex {
			continue
		}
		// ISO dates compare correctly as strings
		if e.Date >= newEntry.Date {
			continue
		}
		if !IsComparableLoad(e.LoadKg, newEntry.LoadKg, DefaultLoadToleranceKg) {
			continue
		}
		if best == nil || e.Date > best.Date {
			best = e
		}
	}

	if best == nil {
		return fmt.Sprintf("%s set %d: first recorded result", newEntry.Exercise, newEntry.SetIndex+1)
	}

	delta := newEntry.Value - best.Value
	return fmt.Sprintf(
		"%s set %d: %+g %s vs %s",
		newEntry.Exercise, newEntry.SetIndex+1, delta, newEntry.Metric.Unit(), best.Date,
	)
}

// RebuildFromDays discards the whole ledger and re-extracts it from a
// full calendar snapshot, assigning fresh IDs to every entry. Used for
// a full resync after external data repair.
func (s *Store) RebuildFromDays(ctx context.Context, days []RawDay) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.rebuild")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days.count", len(days)))

	rebuilt := make([]Entry, 0)
	seenIdentity := make(map[string]bool)
	for _, day := range days {
		for _, e := range ExtractDay(day) {
			if seenIdentity[e.IdentityKey()] {
				continue
			}
			seenIdentity[e.IdentityKey()] = true
			e.ID = uuid.NewString()
			rebuilt = append(rebuilt, e)
		}
	}

	s.mu.Lock()
	s.entries = rebuilt
	s.persistLocked(ctx)
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return len(rebuilt), nil
}

// CalendarSnapshot is the alternative rebuild input shape: a mapping
// from date to that day's raw exercises.
type CalendarSnapshot map[string][]RawExercise

// DaysFromCalendar normalizes a calendar snapshot into day records,
// ordered by date, using the date as the source day ID.
func DaysFromCalendar(cal CalendarSnapshot) []RawDay {
	days := make([]RawDay, 0, len(cal))
	for date, exercises := range cal {
		days = append(days, RawDay{
			Date:        date,
			SourceDayID: date,
			Exercises:   exercises,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// ParseCalendarPayload accepts both calendar snapshot shapes: a list of
// day records, and a mapping from date to exercise list.
func ParseCalendarPayload(payload []byte) ([]RawDay, error) {
	var days []RawDay
	if err := json.Unmarshal(payload, &days); err == nil {
		return days, nil
	}

	var cal CalendarSnapshot
	if err := json.Unmarshal(payload, &cal); err != nil {
		return nil, err
	}
	return DaysFromCalendar(cal), nil
}

// AddEntry stores one entry directly. Unlike the bulk paths this fails
// loudly on invalid input. An identity collision updates the existing
// slot in place, the invariant of one entry per identity key holds.
func (s *Store) AddEntry(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.addEntry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entry.Exercise = NormalizeExerciseName(entry.Exercise)
	if !entry.IsValid() {
		return nil, ErrInvalidEntry
	}

	s.mu.Lock()

	var stored Entry
	if idx, ok := s.indexOfIdentityLocked(entry.IdentityKey()); ok {
		existing := &s.entries[idx]
		existing.Value = entry.Value
		existing.Notes = entry.Notes
		existing.SourceDayID = entry.SourceDayID
		existing.SetCount = entry.SetCount
		existing.BodyweightKg = entry.BodyweightKg
		stored = *existing
	} else {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		s.entries = append(s.entries, entry)
		stored = entry
	}

	s.persistLocked(ctx)
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return &stored, nil
}

// EntryPatch is a partial update. Identity fields are never patchable.
type EntryPatch struct {
	Value        *float64 `json:"value,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	SetCount     *int     `json:"setCount,omitempty"`
	BodyweightKg *float64 `json:"bodyweightKg,omitempty"`
	SourceDayID  *string  `json:"sourceDayId,omitempty"`
}

func (s *Store) UpdateEntry(ctx context.Context, id string, patch EntryPatch) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.updateEntry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", id))

	if patch.Value != nil && *patch.Value <= 0 {
		return nil, ErrInvalidEntry
	}

	s.mu.Lock()

	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrEntryNotFound
	}

	entry := &s.entries[idx]
	if patch.Value != nil {
		entry.Value = *patch.Value
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}
	if patch.SetCount != nil {
		entry.SetCount = *patch.SetCount
	}
	if patch.BodyweightKg != nil {
		entry.BodyweightKg = *patch.BodyweightKg
	}
	if patch.SourceDayID != nil {
		entry.SourceDayID = *patch.SourceDayID
	}
	updated := *entry

	s.persistLocked(ctx)
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return &updated, nil
}

// DeleteEntry removes an entry by ID. Deleting an absent ID is a no-op
// reporting false, not an error.
func (s *Store) DeleteEntry(ctx context.Context, id string) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.deleteEntry")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", id))

	s.mu.Lock()

	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.persistLocked(ctx)
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return true
}

// ExportJSON serializes the full ledger with a version tag.
func (s *Store) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	doc := ExportDocument{
		Version:    persistedLedgerVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    append([]Entry(nil), s.entries...),
	}
	s.mu.Unlock()
	return json.Marshal(doc)
}

// ImportJSON replaces the ledger wholesale with the payload's entries.
// Items go through the same validity filter as Load, then a dedup pass:
// first by ID (first occurrence wins), then by identity key, where a
// later duplicate overwrites the earlier one's slot. A payload yielding
// zero valid entries fails without touching the ledger.
func (s *Store) ImportJSON(ctx context.Context, payload []byte) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.store.importJSON")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var doc ExportDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return 0, fmt.Errorf("unmarshal import payload: %w", err)
	}

	valid, _ := filterValid(doc.Entries)

	var imported []Entry
	identityIdx := make(map[string]int)
	for _, e := range valid {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if idx, ok := identityIdx[e.IdentityKey()]; ok {
			imported[idx] = e
			continue
		}
		identityIdx[e.IdentityKey()] = len(imported)
		imported = append(imported, e)
	}

	if len(imported) == 0 {
		return 0, ErrNoValidEntries
	}

	span.SetAttributes(attribute.Int("imported.count", len(imported)))

	s.mu.Lock()
	s.entries = imported
	s.persistLocked(ctx)
	s.setSizeGauge()
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, subscribers, s.instr)
	return len(imported), nil
}

// Entries returns an independent copy of all stored entries.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Warnings returns the advisory messages accumulated since the last Load.
func (s *Store) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// Subscribe registers a callback invoked with a full ledger snapshot
// after every mutation. The returned function unsubscribes it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubscriberID
	s.nextSubscriberID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// persistLocked writes the full document. A write failure is recorded
// as a warning, the in-memory ledger stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(persistedLedger{
		Version: persistedLedgerVersion,
		Entries: s.entries,
	})
	if err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("marshal ledger: %s", err))
		log.Errorf("persist ledger, marshal: %s", err)
		return
	}
	if err := s.storage.Set(ctx, LedgerStorageKey, payload); err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("persist ledger: %s", err))
		log.Errorf("persist ledger, write: %s", err)
	}
}

func (s *Store) snapshotLocked() ([]Entry, []Subscriber) {
	snapshot := append([]Entry(nil), s.entries...)
	subscribers := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	return snapshot, subscribers
}

func (s *Store) setSizeGauge() {
	if s.instr != nil {
		s.instr.GaugeLedgerEntries.Set(float64(len(s.entries)))
	}
}

func (s *Store) indexOfIdentityLocked(identityKey string) (int, bool) {
	for i := range s.entries {
		if s.entries[i].IdentityKey() == identityKey {
			return i, true
		}
	}
	return -1, false
}

// notify delivers a snapshot to every subscriber. A panicking subscriber
// is isolated and logged, it never aborts the mutation or the others.
func notify(snapshot []Entry, subscribers []Subscriber, instr *metrics.Manager) {
	for _, fn := range subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("ledger subscriber panic: %v", r)
					if instr != nil {
						instr.CounterSubscriberPanic.Inc()
					}
				}
			}()
			fn(append([]Entry(nil), snapshot...))
		}()
	}
}

// entrySlot addresses one set position of one exercise/metric within a
// day, regardless of the load it was performed at.
type entrySlot struct {
	exercise string
	metric   Metric
	setIndex int
}

// matchStoredSlot picks the stored same-day entry a freshly extracted
// one updates in place: an exact identity match wins, otherwise a single
// unclaimed candidate within the load comparison tolerance. A load
// adjustment within tolerance thus keeps the entry and its ID instead of
// recreating the slot. Several comparable candidates without an exact
// match are ambiguous and the caller inserts a fresh entry.
func matchStoredSlot(entries []Entry, candidates []int, claimed map[int]bool, newEntry Entry) (int, bool) {
	key := newEntry.IdentityKey()
	withinTolerance := -1
	withinToleranceCount := 0
	for _, idx := range candidates {
		if claimed[idx] {
			continue
		}
		if entries[idx].IdentityKey() == key {
			return idx, true
		}
		if IsComparableLoad(entries[idx].LoadKg, newEntry.LoadKg, DefaultLoadToleranceKg) {
			withinTolerance = idx
			withinToleranceCount++
		}
	}
	if withinToleranceCount == 1 {
		return withinTolerance, true
	}
	return -1, false
}

func entryUnchanged(existing, incoming Entry) bool {
	return existing.Value == incoming.Value &&
		existing.Notes == incoming.Notes &&
		existing.SourceDayID == incoming.SourceDayID &&
		existing.SetCount == incoming.SetCount &&
		existing.BodyweightKg == incoming.BodyweightKg
}

// filterValid drops invalid items and duplicate IDs (first one wins),
// returning the kept entries and the dropped count.
func filterValid(entries []Entry) ([]Entry, int) {
	kept := make([]Entry, 0, len(entries))
	seenID := make(map[string]bool)
	dropped := 0
	for _, e := range entries {
		e.Exercise = NormalizeExerciseName(e.Exercise)
		if !e.IsValid() {
			dropped++
			continue
		}
		if e.ID != "" && seenID[e.ID] {
			dropped++
			continue
		}
		if e.ID != "" {
			seenID[e.ID] = true
		}
		kept = append(kept, e)
	}
	return kept, dropped
}
