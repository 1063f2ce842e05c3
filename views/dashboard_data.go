package views

import (
	"sort"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type CountRow struct {
	Label   string
	Count   int
	Percent float64
}

type Section struct {
	Title string
	Rows  []CountRow
}

type DashboardData struct {
	Stats      *contest.Statistics
	Sections   []Section
	SignedInAs string
}

// PrepareDashboardData turns the statistics maps into rows sorted by count, then label.
func PrepareDashboardData(stats *contest.Statistics) DashboardData {
	total := stats.TotalRegistrations

	statusRows := []CountRow{
		{Label: string(contest.StatusPending), Count: stats.PendingRegistrations},
		{Label: string(contest.StatusApproved), Count: stats.ApprovedRegistrations},
		{Label: string(contest.StatusRejected), Count: stats.RejectedRegistrations},
	}
	for i := range statusRows {
		statusRows[i].Percent = percent(statusRows[i].Count, total)
	}

	categoryRows := make([]CountRow, 0, len(contest.Categories))
	for _, c := range contest.Categories {
		n := stats.ByCategory[string(c)]
		categoryRows = append(categoryRows, CountRow{Label: string(c), Count: n, Percent: percent(n, total)})
	}

	return DashboardData{
		Stats: stats,
		Sections: []Section{
			{Title: "Estado", Rows: statusRows},
			{Title: "Categoría", Rows: categoryRows},
			{Title: "Sede", Rows: sortedRows(stats.ByVenue, total)},
			{Title: "Municipio", Rows: sortedRows(stats.ByMunicipality, total)},
		},
	}
}

func sortedRows(counts map[string]int, total int) []CountRow {
	rows := make([]CountRow, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, CountRow{Label: label, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
