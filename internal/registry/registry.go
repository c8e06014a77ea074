package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/protech-rv/protech/internal/procedure"
)

// Registry is the process-wide store of per-case diagnostic state, keyed by
// case id. It exclusively owns all entries; every mutation goes through its
// operations. Entries exist from first touch until Clear.
//
// Locking: the registry map is guarded by mu; each entry carries its own
// mutex so turns for distinct cases proceed in parallel while operations on
// one case serialize.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	findings []string
	logger   *slog.Logger
}

// Options configures a Registry. KeyFindings defaults to the catalog list;
// it is data, not logic, so deployments and tests can swap it.
type Options struct {
	KeyFindings []string
	Logger      *slog.Logger
}

// entry is the mutable per-case state. The completed and unable sets only
// ever gain members outside of Clear, so re-delivering a message is safe.
type entry struct {
	mu sync.Mutex

	caseID       string
	assigned     bool   // system decision made (sticky, even when legacy)
	system       string // "" in legacy mode
	completed    map[string]bool
	unable       map[string]bool
	legacyTopics map[string]bool
	pivoted      bool
	pivotFinding string
}

// Snapshot is a read-only copy of one case's state.
type Snapshot struct {
	CaseID            string          `json:"case_id"`
	Assigned          bool            `json:"assigned"`
	ProcedureSystem   string          `json:"procedure_system,omitempty"`
	CompletedStepIDs  map[string]bool `json:"completed_step_ids"`
	UnableToVerifyIDs map[string]bool `json:"unable_to_verify_ids"`
	LegacyTopics      []string        `json:"legacy_topics,omitempty"`
	Pivoted           bool            `json:"pivoted"`
	PivotFinding      string          `json:"pivot_finding,omitempty"`
}

// InitResult reports what initializing a case resolved.
type InitResult struct {
	System            string               `json:"system,omitempty"`
	Procedure         *procedure.Procedure `json:"-"`
	PreCompletedSteps []string             `json:"pre_completed_steps,omitempty"`
}

func New(opts Options) *Registry {
	findings := opts.KeyFindings
	if findings == nil {
		findings = procedure.KeyFindings
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:  make(map[string]*entry),
		findings: findings,
		logger:   logger,
	}
}

// InitializeCase resolves the case's system from its first message. A found
// system is assigned permanently and the initial message is mapped onto the
// procedure's steps; no match degrades the case to legacy topic tracking.
// Re-invocation on an assigned case is idempotent with respect to the
// system: later messages can never change it.
func (r *Registry) InitializeCase(caseID, message string) InitResult {
	e := r.touch(caseID)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Key findings count from the very first message.
	r.scanFindingLocked(e, message)

	if e.assigned {
		return InitResult{System: e.system, Procedure: procedure.Get(e.system)}
	}

	e.assigned = true
	system := procedure.DetectSystem(message)
	if system == "" {
		r.logger.Info("case degraded to legacy mode", "case_id", caseID)
		for _, topic := range ExtractTopics(message) {
			e.legacyTopics[topic] = true
		}
		return InitResult{}
	}

	e.system = system
	proc := procedure.Get(system)
	pre := procedure.MapInitialMessage(message, proc)
	for _, id := range pre {
		e.completed[id] = true
	}
	r.logger.Info("case initialized",
		"case_id", caseID,
		"system", system,
		"pre_completed", len(pre),
	)
	return InitResult{System: system, Procedure: proc, PreCompletedSteps: pre}
}

// Restore seeds a case from a persisted snapshot, for rehydration after a
// restart. It applies only when the case has no system decision yet; live
// in-memory state always wins over storage.
func (r *Registry) Restore(snap Snapshot) bool {
	e := r.touch(snap.CaseID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.assigned {
		return false
	}

	e.assigned = snap.Assigned
	e.system = snap.ProcedureSystem
	e.completed = copySet(snap.CompletedStepIDs)
	e.unable = copySet(snap.UnableToVerifyIDs)
	e.legacyTopics = make(map[string]bool, len(snap.LegacyTopics))
	for _, t := range snap.LegacyTopics {
		e.legacyTopics[t] = true
	}
	e.pivoted = snap.Pivoted
	e.pivotFinding = snap.PivotFinding
	return true
}

// Clear removes all state for a case. Used for explicit restarts and test
// isolation; it is the only operation that shrinks case state.
func (r *Registry) Clear(caseID string) {
	r.mu.Lock()
	delete(r.entries, caseID)
	r.mu.Unlock()
}

// Snapshot returns a read-only copy of the case's state. An unknown case id
// yields an empty default snapshot rather than an error; it does not create
// an entry.
func (r *Registry) Snapshot(caseID string) Snapshot {
	r.mu.RLock()
	e, ok := r.entries[caseID]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{
			CaseID:            caseID,
			CompletedStepIDs:  map[string]bool{},
			UnableToVerifyIDs: map[string]bool{},
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *entry) snapshotLocked() Snapshot {
	topics := make([]string, 0, len(e.legacyTopics))
	for t := range e.legacyTopics {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	return Snapshot{
		CaseID:            e.caseID,
		Assigned:          e.assigned,
		ProcedureSystem:   e.system,
		CompletedStepIDs:  copySet(e.completed),
		UnableToVerifyIDs: copySet(e.unable),
		LegacyTopics:      topics,
		Pivoted:           e.pivoted,
		PivotFinding:      e.pivotFinding,
	}
}

// touch returns the entry for a case, creating it lazily on first contact.
func (r *Registry) touch(caseID string) *entry {
	r.mu.RLock()
	e, ok := r.entries[caseID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.entries[caseID]; ok {
		return e
	}
	e = &entry{
		caseID:       caseID,
		completed:    make(map[string]bool),
		unable:       make(map[string]bool),
		legacyTopics: make(map[string]bool),
	}
	r.entries[caseID] = e
	return e
}

func copySet(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		if v {
			dst[k] = true
		}
	}
	return dst
}
