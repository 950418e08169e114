/*
grouper.go - Identity matching between Planned and Actual records

PURPOSE:
  Partitions the raw record list by kind and reassembles it into
  ActivityGroups: one group per logical assignment. An Actual record is
  matched to the Planned record whose id equals its backReference AND
  whose order item matches. Actuals that match nothing become orphan
  groups; there is no dropped/unmatched outcome.

KEYING:
  Planned-derived groups: "p:<plannedID>:<orderItemID>"
  Orphan groups:          "a:<actualID>:<orderItemID>"
  The prefixes keep the two key spaces from colliding. Keys are unique
  per (id, orderItemID), so first-match iteration is deterministic.

ORDERING:
  Groups preserve first-appearance order of their anchor record. Within a
  group, Actuals are sorted ascending by id; the last element becomes
  LatestActual. Ascending-id order is the precedence rule the rest of the
  engine relies on.
*/
package engine

import (
	"fmt"
	"sort"
)

// GroupRecords partitions records by kind and matches Actuals to their
// Planned records. Records failing identity validation are skipped and
// reported in the returned diagnostics; every valid record lands in
// exactly one group.
func GroupRecords(records []*RawAllocationRecord) ([]*ActivityGroup, []*MalformedRecordError) {
	var (
		groups      []*ActivityGroup
		byKey       = make(map[string]*ActivityGroup)
		valid       []*RawAllocationRecord
		diagnostics []*MalformedRecordError
	)

	// Validation pass. Kind filtering below must only see records whose
	// kind is known, otherwise an empty/unknown kind slips past both
	// kind-specific passes without a diagnostic.
	for i, r := range records {
		if diag := validateRecord(i, r); diag != nil {
			diagnostics = append(diagnostics, diag)
			continue
		}
		valid = append(valid, r)
	}

	addGroup := func(g *ActivityGroup) {
		groups = append(groups, g)
		byKey[g.Key] = g
	}

	// Pass 1: every Planned record opens a group.
	for _, r := range valid {
		if r.Kind != KindPlanned {
			continue
		}
		key := plannedKey(r.ID, r.OrderItemID)
		if _, exists := byKey[key]; exists {
			// Duplicate planned id+orderItem: first one wins.
			continue
		}
		addGroup(&ActivityGroup{Key: key, Planned: r})
	}

	// Pass 2: attach Actuals, creating orphan groups where nothing matches.
	for _, r := range valid {
		if r.Kind != KindActual {
			continue
		}

		if g := findPlannedGroup(groups, r); g != nil {
			g.Actuals = append(g.Actuals, r)
			continue
		}

		key := orphanKey(r.ID, r.OrderItemID)
		g, ok := byKey[key]
		if !ok {
			g = &ActivityGroup{Key: key}
			addGroup(g)
		}
		g.Actuals = append(g.Actuals, r)
	}

	// Pass 3: fix precedence order and latest pointers.
	for _, g := range groups {
		sort.Slice(g.Actuals, func(i, j int) bool {
			return g.Actuals[i].ID < g.Actuals[j].ID
		})
		if n := len(g.Actuals); n > 0 {
			g.LatestActual = g.Actuals[n-1]
		}
	}

	return groups, diagnostics
}

// findPlannedGroup returns the first group (iteration order) whose Planned
// record matches the Actual's back reference and order item.
func findPlannedGroup(groups []*ActivityGroup, actual *RawAllocationRecord) *ActivityGroup {
	for _, g := range groups {
		if g.Planned == nil {
			continue
		}
		if g.Planned.ID == actual.Actual.BackReference && g.Planned.OrderItemID == actual.OrderItemID {
			return g
		}
	}
	return nil
}

func plannedKey(plannedID, orderItemID int64) string {
	return fmt.Sprintf("p:%d:%d", plannedID, orderItemID)
}

func orphanKey(actualID, orderItemID int64) string {
	return fmt.Sprintf("a:%d:%d", actualID, orderItemID)
}
