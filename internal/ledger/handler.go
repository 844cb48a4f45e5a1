package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymledger/internal/middleware"
	"github.com/2beens/gymledger/internal/telemetry/metrics"
	"github.com/2beens/gymledger/internal/telemetry/tracing"
	"github.com/2beens/gymledger/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=ledger_test

type ledgerStore interface {
	ReconcileDay(ctx context.Context, day RawDay) (*ReconcileResult, error)
	RebuildFromDays(ctx context.Context, days []RawDay) (int, error)
	Entries() []Entry
	Warnings() []string
	AddEntry(ctx context.Context, entry Entry) (*Entry, error)
	UpdateEntry(ctx context.Context, id string, patch EntryPatch) (*Entry, error)
	DeleteEntry(ctx context.Context, id string) bool
	ExportJSON() ([]byte, error)
	ImportJSON(ctx context.Context, payload []byte) (int, error)
	Subscribe(fn Subscriber) func()
}

type RebuildResponse struct {
	Rebuilt int `json:"rebuilt"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type DeleteEntryResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ListEntriesResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type WarningsResponse struct {
	Warnings []string `json:"warnings"`
}

// PRSlot is one (set position, rounded load) bucket with its best entry.
type PRSlot struct {
	SetIndex int     `json:"setIndex"`
	LoadKg   float64 `json:"loadKg"`
	Best     Entry   `json:"best"`
}

const responseCacheSize = 10 * 1024 * 1024 // 10 MB

type Handler struct {
	store ledgerStore

	// read-view cache, flushed on every ledger mutation through the
	// store subscription
	cache       *freecache.Cache
	unsubscribe func()
}

func NewHandler(store ledgerStore) *Handler {
	h := &Handler{
		store: store,
		cache: freecache.NewCache(responseCacheSize),
	}
	h.unsubscribe = store.Subscribe(func(_ []Entry) {
		h.cache.Clear()
	})
	return h
}

// Close detaches the handler from the store notifications.
func (handler *Handler) Close() {
	if handler.unsubscribe != nil {
		handler.unsubscribe()
	}
}

func (handler *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	importAllowedPerMin int,
) {
	r.HandleFunc("/ledger/reconcile", handler.HandleReconcile).Methods("POST", "OPTIONS").Name("reconcile-day")
	r.HandleFunc("/ledger/rebuild", handler.HandleRebuild).Methods("POST", "OPTIONS").Name("rebuild-ledger")
	r.HandleFunc("/ledger/entries", handler.HandleListEntries).Methods("GET", "OPTIONS").Name("list-entries")
	r.HandleFunc("/ledger/entry", handler.HandleAddEntry).Methods("POST", "OPTIONS").Name("new-entry")
	r.HandleFunc("/ledger/entry/{id}", handler.HandleUpdateEntry).Methods("PUT", "OPTIONS").Name("update-entry")
	r.HandleFunc("/ledger/entry/{id}", handler.HandleDeleteEntry).Methods("DELETE", "OPTIONS").Name("delete-entry")
	r.HandleFunc("/ledger/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("export-ledger")
	r.HandleFunc("/ledger/prs", handler.HandlePersonalRecords).Methods("GET", "OPTIONS").Name("personal-records")
	r.HandleFunc("/ledger/compare", handler.HandleCompare).Methods("GET", "OPTIONS").Name("compare-sessions")
	r.HandleFunc("/ledger/warnings", handler.HandleWarnings).Methods("GET", "OPTIONS").Name("ledger-warnings")

	// rate limit imports, a stray sync loop in a client must not
	// hammer the whole-ledger replace path
	importSubrouter := r.PathPrefix("/ledger/import").Subrouter()
	importSubrouter.
		HandleFunc("", handler.HandleImport).
		Methods("POST", "OPTIONS").Name("import-ledger")
	importSubrouter.Use(middleware.RateLimit(rateLimiter, "ledger-import", importAllowedPerMin, metricsManager))
}

func (handler *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.reconcile")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var day RawDay
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		log.Tracef("reconcile day, unmarshal json params: %s", err)
		http.Error(w, "reconcile day failed", http.StatusBadRequest)
		return
	}

	result, err := handler.store.ReconcileDay(ctx, day)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "error, invalid day record", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to reconcile day [%s]: %s", day.Date, err)
		http.Error(w, "error, failed to reconcile day", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal reconcile result: %s", err)
		http.Error(w, "error, failed to reconcile day", http.StatusInternalServerError)
		return
	}

	log.Debugf(
		"day %s reconciled: %d applied, %d removed",
		day.Date, len(result.Applied), len(result.Removed),
	)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resultJson)
}

func (handler *Handler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.rebuild")
	defer span.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "rebuild failed", http.StatusBadRequest)
		return
	}

	days, err := ParseCalendarPayload(payload)
	if err != nil {
		log.Tracef("rebuild, decode calendar payload: %s", err)
		http.Error(w, "error, invalid calendar snapshot", http.StatusBadRequest)
		return
	}

	rebuilt, err := handler.store.RebuildFromDays(ctx, days)
	if err != nil {
		log.Errorf("failed to rebuild ledger: %s", err)
		http.Error(w, "error, failed to rebuild ledger", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(RebuildResponse{Rebuilt: rebuilt})
	if err != nil {
		http.Error(w, "error, failed to rebuild ledger", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.listEntries")
	defer span.End()

	cacheKey := []byte("entries::" + r.URL.RawQuery)
	if cached, err := handler.cache.Get(cacheKey); err == nil {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	entries := filterEntries(
		handler.store.Entries(),
		r.URL.Query().Get("exercise"),
		Metric(r.URL.Query().Get("metric")),
		r.URL.Query().Get("date"),
	)

	respJson, err := json.Marshal(ListEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("failed to marshal entries list: %s", err)
		http.Error(w, "error, failed to list entries", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, respJson, 0); err != nil {
		log.Tracef("cache entries response: %s", err)
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.addEntry")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Tracef("new entry, unmarshal json params: %s", err)
		http.Error(w, "add entry failed", http.StatusBadRequest)
		return
	}

	added, err := handler.store.AddEntry(ctx, entry)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "error, invalid entry", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add entry [%s] [%s]: %s", entry.Exercise, entry.Date, err)
		http.Error(w, "error, failed to add entry", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal added entry: %s", err)
		http.Error(w, "error, failed to add entry", http.StatusInternalServerError)
		return
	}

	log.Debugf("new ledger entry added: %s", addedJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.updateEntry")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var patch EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update entry, unmarshal json params: %s", err)
		http.Error(w, "update entry failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.store.UpdateEntry(ctx, id, patch)
	switch {
	case errors.Is(err, ErrEntryNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidEntry):
		http.Error(w, "error, invalid entry patch", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("failed to update entry [%s]: %s", id, err)
		http.Error(w, "error, failed to update entry", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		http.Error(w, "error, failed to update entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.deleteEntry")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	// deleting an absent entry is a no-op reporting failure, not an error
	deleted := handler.store.DeleteEntry(ctx, id)

	respJson, err := json.Marshal(DeleteEntryResponse{ID: id, Deleted: deleted})
	if err != nil {
		http.Error(w, "error, failed to delete entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.export")
	defer span.End()

	exportJson, err := handler.store.ExportJSON()
	if err != nil {
		log.Errorf("failed to export ledger: %s", err)
		http.Error(w, "error, failed to export ledger", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exportJson)
}

func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.import")
	defer span.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "import failed", http.StatusBadRequest)
		return
	}

	imported, err := handler.store.ImportJSON(ctx, payload)
	if err != nil {
		if errors.Is(err, ErrNoValidEntries) {
			http.Error(w, "error, no valid entries in import payload", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to import ledger: %s", err)
		http.Error(w, "error, invalid import payload", http.StatusBadRequest)
		return
	}

	respJson, err := json.Marshal(ImportResponse{Imported: imported})
	if err != nil {
		http.Error(w, "error, failed to import ledger", http.StatusInternalServerError)
		return
	}

	log.Debugf("ledger import: %d entries", imported)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.personalRecords")
	defer span.End()

	exercise := NormalizeExerciseName(r.URL.Query().Get("exercise"))
	metric := Metric(r.URL.Query().Get("metric"))
	if exercise == "" || !metric.IsValid() {
		http.Error(w, "error, exercise or metric missing/invalid", http.StatusBadRequest)
		return
	}

	cacheKey := []byte("prs::" + exercise + "::" + metric.String())
	if cached, err := handler.cache.Get(cacheKey); err == nil {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	entries := filterEntries(handler.store.Entries(), exercise, metric, "")
	best := BestPerGroup(entries, metric, DefaultLoadStep)

	slots := make([]PRSlot, 0, len(best))
	for key, entry := range best {
		slots = append(slots, PRSlot{SetIndex: key.SetIndex, LoadKg: key.LoadKg, Best: entry})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].SetIndex != slots[j].SetIndex {
			return slots[i].SetIndex < slots[j].SetIndex
		}
		return slots[i].LoadKg < slots[j].LoadKg
	})

	respJson, err := json.Marshal(slots)
	if err != nil {
		log.Errorf("failed to marshal pr slots: %s", err)
		http.Error(w, "error, failed to get personal records", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, respJson, 0); err != nil {
		log.Tracef("cache prs response: %s", err)
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.compare")
	defer span.End()

	query := r.URL.Query()
	exercise := NormalizeExerciseName(query.Get("exercise"))
	metric := Metric(query.Get("metric"))
	date := query.Get("date")
	prevDate := query.Get("prev")
	if exercise == "" || !metric.IsValid() || date == "" || prevDate == "" {
		http.Error(w, "error, exercise/metric/date/prev missing or invalid", http.StatusBadRequest)
		return
	}

	all := handler.store.Entries()
	current := filterEntries(all, exercise, metric, date)
	previous := filterEntries(all, exercise, metric, prevDate)

	comparisons := CompareBySet(current, previous, DefaultLoadToleranceKg)

	respJson, err := json.Marshal(comparisons)
	if err != nil {
		log.Errorf("failed to marshal comparisons: %s", err)
		http.Error(w, "error, failed to compare sessions", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleWarnings(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.ledger.warnings")
	defer span.End()

	respJson, err := json.Marshal(WarningsResponse{Warnings: handler.store.Warnings()})
	if err != nil {
		http.Error(w, "error, failed to get warnings", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func filterEntries(entries []Entry, exercise string, metric Metric, date string) []Entry {
	exercise = NormalizeExerciseName(exercise)
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if exercise != "" && e.Exercise != exercise {
			continue
		}
		if metric != "" && e.Metric != metric {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
