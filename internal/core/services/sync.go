package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// runRetention is how many run reports are kept.
const runRetention = 200

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator keeps the search index consistent with the origin wiki.
type SyncOrchestrator struct {
	inventory *OriginInventory
	index     driven.SearchIndex
	publisher driving.Publisher
	runs      driven.RunStore
	settings  domain.SyncSettings

	// Status tracking
	mu     sync.RWMutex
	active *runCollector
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The run store is optional; without it run reports are not kept.
func NewSyncOrchestrator(
	inventory *OriginInventory,
	index driven.SearchIndex,
	publisher driving.Publisher,
	runs driven.RunStore,
	settings domain.SyncSettings,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		inventory: inventory,
		index:     index,
		publisher: publisher,
		runs:      runs,
		settings:  settings,
	}
}

// Plan compares the origin and index inventories.
func (o *SyncOrchestrator) Plan(ctx context.Context) (*domain.SyncPlan, error) {
	origin, err := o.inventory.List(ctx)
	if err != nil {
		return nil, err
	}

	indexed, err := o.indexInventory(ctx)
	if err != nil {
		return nil, err
	}

	plan := Reconcile(origin, indexed)
	logger.Debug("Plan: %d origin, %d indexed, %d to upsert, %d to delete",
		len(origin), len(indexed), len(plan.Upsert), len(plan.Delete))
	return &plan, nil
}

// indexInventory lists authors and articles of the index.
func (o *SyncOrchestrator) indexInventory(ctx context.Context) ([]domain.InventoryEntry, error) {
	var entries []domain.InventoryEntry
	for _, kind := range []domain.DocKind{domain.KindAuthor, domain.KindArticle} {
		listed, err := o.index.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list indexed %ss: %w", kind, err)
		}
		for _, e := range listed {
			e.IsAuthor = kind == domain.KindAuthor
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Run plans and executes one sync.
//
// Titles are processed by a bounded pool of workers. A title that fails is
// recorded and the run continues. When too many titles in a row fail with
// timeouts or connection errors, no further titles are scheduled and the
// run is reported as aborted.
func (o *SyncOrchestrator) Run(ctx context.Context, trigger domain.RunTrigger) (*domain.SyncReport, error) {
	report := &domain.SyncReport{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	c := newRunCollector(report, o.settings.MaxConsecutiveFailures)
	if !o.begin(c) {
		return nil, domain.ErrSyncInProgress
	}
	defer o.end()

	logger.Section(fmt.Sprintf("Sync %s (%s)", report.RunID, trigger))

	plan, err := o.Plan(ctx)
	if err != nil {
		report.EndedAt = time.Now()
		report.Aborted = true
		report.AbortReason = err.Error()
		o.save(ctx, report)
		return report, fmt.Errorf("plan sync: %w", err)
	}
	c.planned(plan)

	o.execute(ctx, plan, c)

	c.finish()
	o.save(ctx, report)

	logger.Info("Sync complete: %d posted, %d deleted, %d skipped, %d failed",
		report.Posted, report.Deleted, len(report.Skipped), len(report.Failed))

	if report.Aborted {
		return report, fmt.Errorf("sync aborted: %s", report.AbortReason)
	}
	return report, ctx.Err()
}

// execute schedules every plan item on the worker pool.
func (o *SyncOrchestrator) execute(ctx context.Context, plan *domain.SyncPlan, c *runCollector) {
	workers := o.settings.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	schedule := func(items []domain.PlanItem, work func(context.Context, domain.PlanItem)) bool {
		for _, item := range items {
			if c.isAborted() || ctx.Err() != nil {
				return false
			}
			g.Go(func() error {
				// The run may have been aborted while this title waited for a worker.
				if c.isAborted() || ctx.Err() != nil {
					return nil
				}
				tctx, cancel := o.titleContext(ctx)
				defer cancel()
				work(tctx, item)
				return nil
			})
		}
		return true
	}

	if schedule(plan.Upsert, o.upsertTitle(c)) {
		schedule(plan.Delete, o.deleteTitle(c))
	}
	_ = g.Wait()
}

func (o *SyncOrchestrator) titleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.settings.TitleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.settings.TitleTimeout)
}

// upsertTitle fetches, rewrites and pushes one title.
func (o *SyncOrchestrator) upsertTitle(c *runCollector) func(context.Context, domain.PlanItem) {
	return func(ctx context.Context, item domain.PlanItem) {
		logger.Debug("Processing: %s", item.Title)

		doc, err := o.publisher.Render(ctx, item.Title, domain.RenderOptions{StrictSources: true})
		if errors.Is(err, domain.ErrUnpublished) {
			c.skip(item.Title)
			return
		}
		if err != nil {
			c.fail(item.Title, err)
			return
		}

		if err := o.index.Upsert(ctx, driven.NewIndexDocument(doc), doc.Sources); err != nil {
			c.fail(item.Title, fmt.Errorf("upsert: %w", err))
			return
		}
		c.post()
	}
}

// deleteTitle removes one title from the index.
func (o *SyncOrchestrator) deleteTitle(c *runCollector) func(context.Context, domain.PlanItem) {
	return func(ctx context.Context, item domain.PlanItem) {
		logger.Debug("Deleting: %s", item.Title)

		if err := o.index.Delete(ctx, item.Title); err != nil {
			c.fail(item.Title, fmt.Errorf("delete: %w", err))
			return
		}
		c.remove()
	}
}

// Status returns the counters of the current run.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return &driving.SyncStatus{Running: false}, nil
	}
	return o.active.status(), nil
}

// History returns recent run reports, newest first.
func (o *SyncOrchestrator) History(ctx context.Context, limit int) ([]domain.SyncReport, error) {
	if o.runs == nil {
		return []domain.SyncReport{}, nil
	}
	reports, err := o.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return reports, nil
}

func (o *SyncOrchestrator) save(ctx context.Context, report *domain.SyncReport) {
	if o.runs == nil {
		return
	}
	// The run context may be done; the report should still be kept.
	ctx = context.WithoutCancel(ctx)
	if err := o.runs.Save(ctx, report); err != nil {
		logger.Warn("Failed to save sync report %s: %v", report.RunID, err)
		return
	}
	if err := o.runs.Prune(ctx, runRetention); err != nil {
		logger.Warn("Failed to prune sync history: %v", err)
	}
}

// begin marks a run as active. Returns false if one already is.
func (o *SyncOrchestrator) begin(c *runCollector) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		return false
	}
	o.active = c
	return true
}

// end clears the active run.
func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

// runCollector aggregates per-title outcomes of a run.
type runCollector struct {
	mu             sync.Mutex
	report         *domain.SyncReport
	maxConsecutive int
	consecutive    int
	processed      int
}

func newRunCollector(report *domain.SyncReport, maxConsecutive int) *runCollector {
	return &runCollector{
		report:         report,
		maxConsecutive: maxConsecutive,
	}
}

func (c *runCollector) planned(plan *domain.SyncPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.PlannedUpserts = len(plan.Upsert)
	c.report.PlannedDeletes = len(plan.Delete)
}

func (c *runCollector) post() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Posted++
	c.succeeded()
}

func (c *runCollector) remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Deleted++
	c.succeeded()
}

func (c *runCollector) skip(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Debug("Skipping unpublished: %s", title)
	c.report.Skipped = append(c.report.Skipped, title)
	c.succeeded()
}

// succeeded records a handled title (caller must hold lock).
func (c *runCollector) succeeded() {
	c.processed++
	c.consecutive = 0
}

func (c *runCollector) fail(title string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Warn("Failed to process %s: %v", title, err)
	c.processed++
	c.report.Failed = append(c.report.Failed, domain.TitleError{Title: title, Err: err.Error()})

	if !domain.IsConnectivity(err) {
		c.consecutive = 0
		return
	}
	c.consecutive++
	if c.maxConsecutive > 0 && c.consecutive >= c.maxConsecutive && !c.report.Aborted {
		c.report.Aborted = true
		c.report.AbortReason = fmt.Sprintf("%d consecutive connectivity failures, last: %v", c.consecutive, err)
		logger.Error("Aborting sync: %s", c.report.AbortReason)
	}
}

func (c *runCollector) isAborted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report.Aborted
}

func (c *runCollector) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.EndedAt = time.Now()
}

func (c *runCollector) status() *driving.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &driving.SyncStatus{
		Running:    true,
		Planned:    c.report.PlannedUpserts + c.report.PlannedDeletes,
		Processed:  c.processed,
		ErrorCount: len(c.report.Failed),
	}
}
