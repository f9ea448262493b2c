package engine

import (
	"slices"

	"ledger-reconciliation/internal/domain"
)

// Aggregate computes the summary and the two re-partitions of rows. Action
// groups are ordered by priority, highest first; status combinations by size,
// largest first. Ties keep first-appearance order.
func Aggregate(rows []domain.ReportRow) domain.Aggregation {
	return domain.Aggregation{
		Summary:      summarize(rows),
		ActionGroups: groupByAction(rows),
		ComboGroups:  groupByCombo(rows),
	}
}

func summarize(rows []domain.ReportRow) domain.Summary {
	s := domain.Summary{TotalOrders: len(rows)}
	for _, r := range rows {
		if r.Classification.Action == domain.ActionNoAction {
			s.FullyReconciled++
		}
		if r.Linkage.Alarmed() {
			s.Alarmed++
		}
		if !r.Linkage.InGateway {
			s.MissingInGateway++
		}
		if !r.Linkage.InVault {
			s.MissingInVault++
		}
		if !r.Linkage.InGateway && !r.Linkage.InVault {
			s.MissingInBoth++
		}
	}
	s.NeedsReview = s.TotalOrders - s.FullyReconciled
	return s
}

func groupByAction(rows []domain.ReportRow) []domain.ActionGroup {
	var groups []domain.ActionGroup
	pos := make(map[domain.Action]int)
	for _, r := range rows {
		action := r.Classification.Action
		i, ok := pos[action]
		if !ok {
			// The group priority is that of its first row.
			i = len(groups)
			pos[action] = i
			groups = append(groups, domain.ActionGroup{Action: action, Priority: r.Classification.Priority})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	slices.SortStableFunc(groups, func(a, b domain.ActionGroup) int {
		return b.Priority - a.Priority
	})
	return groups
}

func groupByCombo(rows []domain.ReportRow) []domain.ComboGroup {
	var groups []domain.ComboGroup
	pos := make(map[domain.StatusTriple]int)
	for _, r := range rows {
		i, ok := pos[r.Statuses]
		if !ok {
			i = len(groups)
			pos[r.Statuses] = i
			groups = append(groups, domain.ComboGroup{Statuses: r.Statuses})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	slices.SortStableFunc(groups, func(a, b domain.ComboGroup) int {
		return len(b.Rows) - len(a.Rows)
	})
	return groups
}
