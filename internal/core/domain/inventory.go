package domain

import (
	"sort"
	"time"
)

// InventoryEntry identifies one content object in the origin or the index.
type InventoryEntry struct {
	Title        string
	LastModified time.Time
	IsAuthor     bool
}

// Kind returns the document kind of the entry.
func (e InventoryEntry) Kind() DocKind {
	return KindOf(e.IsAuthor)
}

// PlanItem is one title scheduled for upsert or delete.
type PlanItem struct {
	Title    string
	IsAuthor bool
}

// SyncPlan holds the titles a sync run has to push to or purge from the index.
// No title appears in both Upsert and Delete.
type SyncPlan struct {
	Upsert []PlanItem
	Delete []PlanItem
}

// UpsertTitles returns the sorted titles to upsert.
func (p SyncPlan) UpsertTitles() []string {
	return planTitles(p.Upsert)
}

// DeleteTitles returns the sorted titles to delete.
func (p SyncPlan) DeleteTitles() []string {
	return planTitles(p.Delete)
}

// Empty reports whether the plan has nothing to do.
func (p SyncPlan) Empty() bool {
	return len(p.Upsert) == 0 && len(p.Delete) == 0
}

func planTitles(items []PlanItem) []string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	sort.Strings(titles)
	return titles
}
