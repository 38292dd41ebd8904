package services

import (
	"sort"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// Reconcile computes which titles the index must upsert or delete to match
// the origin.
//
// Authors and articles are reconciled separately. Within a kind a title is
// upserted when the index lacks it or holds an older revision, and deleted
// when the origin no longer has it. Equal timestamps are up to date.
// A title that moved between kinds is only upserted, since the upsert
// replaces the indexed document.
func Reconcile(origin, index []domain.InventoryEntry) domain.SyncPlan {
	var plan domain.SyncPlan

	for _, isAuthor := range []bool{true, false} {
		o := byTitle(origin, isAuthor)
		i := byTitle(index, isAuthor)

		for title, oe := range o {
			ie, ok := i[title]
			if !ok || oe.LastModified.After(ie.LastModified) {
				plan.Upsert = append(plan.Upsert, domain.PlanItem{Title: title, IsAuthor: isAuthor})
			}
		}
		for title := range i {
			if _, ok := o[title]; !ok {
				plan.Delete = append(plan.Delete, domain.PlanItem{Title: title, IsAuthor: isAuthor})
			}
		}
	}

	upserting := make(map[string]bool, len(plan.Upsert))
	for _, it := range plan.Upsert {
		upserting[it.Title] = true
	}
	deletes := plan.Delete[:0]
	for _, it := range plan.Delete {
		if !upserting[it.Title] {
			deletes = append(deletes, it)
		}
	}
	plan.Delete = deletes

	sortItems(plan.Upsert)
	sortItems(plan.Delete)
	return plan
}

// byTitle indexes the entries of one kind. Duplicates keep the newest timestamp.
func byTitle(entries []domain.InventoryEntry, isAuthor bool) map[string]domain.InventoryEntry {
	m := make(map[string]domain.InventoryEntry)
	for _, e := range entries {
		if e.IsAuthor != isAuthor {
			continue
		}
		if prev, ok := m[e.Title]; ok && !e.LastModified.After(prev.LastModified) {
			continue
		}
		m[e.Title] = e
	}
	return m
}

func sortItems(items []domain.PlanItem) {
	sort.Slice(items, func(a, b int) bool {
		return items[a].Title < items[b].Title
	})
}
