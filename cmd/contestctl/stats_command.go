package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/views"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show registration statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := service.NewStatisticsService(conn, store.NewStatisticsStore(conn)).Statistics(cmd.Context())
			if err != nil {
				return fmt.Errorf("compute statistics: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Resumen", []string{"Métrica", "Total"}, [][]string{
				{"Inscritos", strconv.Itoa(stats.TotalRegistrations)},
				{"Sedes activas", strconv.Itoa(stats.ActiveVenues)},
				{"Rondas activas", strconv.Itoa(stats.ActiveRounds)},
				{"Videos", strconv.Itoa(stats.TotalVideos)},
				{"Videos aprobados", strconv.Itoa(stats.ApprovedVideos)},
			}, []columnAlignment{alignLeft, alignRight}))

			for _, section := range views.PrepareDashboardData(stats).Sections {
				rows := make([][]string, 0, len(section.Rows))
				for _, row := range section.Rows {
					rows = append(rows, []string{row.Label, strconv.Itoa(row.Count), fmt.Sprintf("%.1f%%", row.Percent)})
				}
				fmt.Fprintln(out, renderTable(section.Title, []string{section.Title, "Total", "%"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
