package turn

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/protech-rv/protech/internal/events"
	"github.com/protech-rv/protech/internal/procedure"
	"github.com/protech-rv/protech/internal/registry"
	"github.com/protech-rv/protech/internal/store"
)

// Processor orchestrates one conversational turn: it drives the registry,
// records the message, and publishes boundary events. Turns for the same
// case id are serialized through a per-key lock; distinct cases run in
// parallel.
type Processor struct {
	registry *registry.Registry
	store    *store.Store   // optional; nil means no persistence
	events   *events.Client // optional; nil means no event bus
	logger   *slog.Logger

	mu        sync.Mutex
	caseLocks map[string]*sync.Mutex
}

// Result is the outcome of one processed turn, consumed by the chat layer.
type Result struct {
	TurnID            uuid.UUID `json:"turn_id"`
	CaseID            string    `json:"case_id"`
	Initialized       bool      `json:"initialized"`
	System            string    `json:"system,omitempty"`
	PreCompletedSteps []string  `json:"pre_completed_steps,omitempty"`
	CompletedStepIDs  []string  `json:"completed_step_ids,omitempty"`
	UnableStepIDs     []string  `json:"unable_step_ids,omitempty"`
	Topics            []string  `json:"topics,omitempty"`
	Pivot             bool      `json:"pivot"`
	Finding           string    `json:"finding,omitempty"`
	NextStepID        string    `json:"next_step_id,omitempty"`
	Context           string    `json:"context"`
}

func New(reg *registry.Registry, st *store.Store, ev *events.Client, logger *slog.Logger) *Processor {
	return &Processor{
		registry:  reg,
		store:     st,
		events:    ev,
		logger:    logger,
		caseLocks: make(map[string]*sync.Mutex),
	}
}

// RunTurn processes one technician message for a case. The first turn for a
// case resolves its system; every later turn runs the answered/unable
// heuristics against the scheduled step. The rendered context block in the
// result is what the prompt layer embeds for the language backend.
func (p *Processor) RunTurn(ctx context.Context, caseID, message string) (*Result, error) {
	lock := p.caseLock(caseID)
	lock.Lock()
	defer lock.Unlock()

	res := &Result{TurnID: uuid.New(), CaseID: caseID}

	snap := p.registry.Snapshot(caseID)
	if !snap.Assigned && p.store != nil {
		// Case unknown in memory; try rehydrating from storage first.
		persisted, err := p.store.GetCaseSnapshot(ctx, caseID)
		if err != nil {
			p.logger.Error("failed to load case snapshot", "case_id", caseID, "error", err)
		} else if persisted != nil && p.registry.Restore(*persisted) {
			snap = p.registry.Snapshot(caseID)
		}
	}
	if !snap.Assigned {
		init := p.registry.InitializeCase(caseID, message)
		res.Initialized = true
		res.System = init.System
		res.PreCompletedSteps = init.PreCompletedSteps
		p.publish(events.SubjectCaseInitialized, events.CaseInitialized{
			CaseID:            caseID,
			System:            init.System,
			Legacy:            init.System == "",
			PreCompletedSteps: init.PreCompletedSteps,
		})
	} else {
		update := p.registry.ProcessUserMessage(caseID, message)
		res.System = snap.ProcedureSystem
		res.CompletedStepIDs = update.CompletedStepIDs
		res.UnableStepIDs = update.UnableStepIDs
		res.Topics = update.Topics
		if update.Finding != "" {
			p.publish(events.SubjectCasePivot, events.CasePivot{
				CaseID:  caseID,
				Finding: update.Finding,
			})
		}
	}

	pivot := p.registry.ShouldPivot(caseID)
	res.Pivot = pivot.Pivot
	res.Finding = pivot.Finding

	after := p.registry.Snapshot(caseID)
	if after.ProcedureSystem != "" {
		proc := procedure.Get(after.ProcedureSystem)
		if next := procedure.NextStep(proc, after.CompletedStepIDs, after.UnableToVerifyIDs); next != nil {
			res.NextStepID = next.ID
		}
	}
	res.Context = p.registry.BuildContext(caseID)

	p.persist(ctx, caseID, message, after)
	p.publish(events.SubjectCaseTurn, res)

	p.logger.Info("turn processed",
		"case_id", caseID,
		"turn_id", res.TurnID,
		"system", res.System,
		"initialized", res.Initialized,
		"pivot", res.Pivot,
		"next_step", res.NextStepID,
	)
	return res, nil
}

// HandleChatMessage is the NATS handler for protech.chat.message.
func (p *Processor) HandleChatMessage(subject string, data []byte) {
	var evt events.ChatMessage
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse chat message event", "error", err)
		return
	}
	if evt.CaseID == "" {
		p.logger.Warn("chat message without case id dropped")
		return
	}

	if _, err := p.RunTurn(context.Background(), evt.CaseID, evt.Message); err != nil {
		p.logger.Error("turn failed", "case_id", evt.CaseID, "error", err)
	}
}

// persist records the message and the post-turn snapshot. Persistence is an
// interface-level collaborator: failures are logged, never fatal to the
// turn, and the engine's in-memory state stays authoritative.
func (p *Processor) persist(ctx context.Context, caseID, message string, snap registry.Snapshot) {
	if p.store == nil {
		return
	}
	if _, err := p.store.InsertMessage(ctx, caseID, "technician", message); err != nil {
		p.logger.Error("failed to persist message", "case_id", caseID, "error", err)
	}
	if err := p.store.UpsertCaseSnapshot(ctx, snap); err != nil {
		p.logger.Error("failed to persist case snapshot", "case_id", caseID, "error", err)
	}
}

func (p *Processor) publish(subject string, payload any) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(subject, payload); err != nil {
		p.logger.Error("failed to publish event", "subject", subject, "error", err)
	}
}

func (p *Processor) caseLock(caseID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.caseLocks[caseID]
	if !ok {
		lock = &sync.Mutex{}
		p.caseLocks[caseID] = lock
	}
	return lock
}
