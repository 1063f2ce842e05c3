package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

func newRegistrationsCommand(ctx *commandContext) *cobra.Command {
	var status, category, search string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "registrations",
		Aliases: []string{"regs"},
		Short:   "List registrations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}

			filter := contest.RegistrationFilter{Search: search, Limit: limit}
			if status != "" {
				s := contest.RegistrationStatus(status)
				filter.Status = &s
			}
			if category != "" {
				c := contest.Category(category)
				filter.Category = &c
			}

			registrations := service.NewRegistrationService(conn, store.NewRegistrationStore(conn), store.NewVenueStore(conn), store.NewAuditStore(conn), service.AuditCreateNever)
			page, err := registrations.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list registrations: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, page)
			}

			rows := make([][]string, 0, len(page.Items))
			for _, r := range page.Items {
				rows = append(rows, []string{
					r.ID.String(),
					r.StageName,
					utils.OrZero(r.Email),
					string(r.Category),
					r.Municipality,
					string(r.Status),
					r.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			title := fmt.Sprintf("Inscripciones %d-%d de %d", page.Skip+min(1, len(rows)), page.Skip+len(rows), page.Total)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(title,
				[]string{"ID", "Nombre artístico", "Email", "Categoría", "Municipio", "Estado", "Creado"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text search")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows, 1 to 1000")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
