package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/codyseavey/pokedex/backend/internal/models"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

var (
	pageQuery  string
	pageType   string
	pageGen    int
	pageRarity string
	pageNumber int
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Show one enriched page of the catalog",
	Long: `Builds one page of cards for the given filters. Without filters the page
comes straight from the remote listing; any filter switches to fetching the
full listing and filtering it locally.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := models.FilterState{
			Query:        pageQuery,
			SelectedType: strings.ToLower(pageType),
			SelectedGen:  pageGen,
			Page:         pageNumber,
		}
		if pageRarity != "" {
			r, ok := models.ParseRarity(pageRarity)
			if !ok {
				return fmt.Errorf("unknown rarity %q", pageRarity)
			}
			f.SelectedRarity = r
		}
		if f.Page < 1 || f.Page > models.MaxPage {
			return fmt.Errorf("page must be between 1 and %d", models.MaxPage)
		}

		page, err := browser.Load(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("load page: %w", err)
		}
		totalPages := page.TotalPages(browser.PageSize())

		if jsonOutput {
			return printJSON(cmd, models.Snapshot{
				Mode:       models.ModeOf(f),
				Filter:     f,
				Page:       page,
				TotalPages: totalPages,
			})
		}

		t := newTable("#", "Name", "Types", "Height", "Weight", "Base XP")
		for _, c := range page.Items {
			t.Row(strconv.Itoa(c.ID), c.Name, strings.Join(c.Types, "/"),
				optInt(c.Height), optInt(c.Weight), optInt(c.BaseExp))
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t)
		fmt.Fprintf(out, "%s mode, page %d of %d, %d results\n", models.ModeOf(f), f.Page, totalPages, page.Total)
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <name-or-id>",
	Short: "Show the detail record, evolution line and moves of one creature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view := models.DetailView{Open: true, Name: args[0]}
		var loadErr error
		details.Load(cmd.Context(), args[0], services.DetailCallbacks{
			OnRecord: func(rec *models.DetailRecord, err error) {
				view.Record = rec
				loadErr = err
			},
			OnEvolution: func(stages []models.EvoStage) { view.Evolution = stages },
			OnMoves:     func(mv []models.MoveBasic) { view.Moves = mv },
		})
		if loadErr != nil {
			if errors.Is(loadErr, services.ErrNotFound) {
				return fmt.Errorf("%s not found", args[0])
			}
			return loadErr
		}

		if jsonOutput {
			return printJSON(cmd, view)
		}

		rec := view.Record
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "#%d %s (%s)\n", rec.ID, rec.Name, strings.Join(rec.TypeNames(), "/"))
		fmt.Fprintf(out, "Height %d  Weight %d  Base XP %d\n", rec.Height, rec.Weight, rec.BaseExperience)
		if img := rec.ImageURL(); img != "" {
			fmt.Fprintf(out, "Image: %s\n", img)
		}
		if cry := rec.CryURL("latest"); cry != "" {
			fmt.Fprintf(out, "Cry:   %s\n", cry)
		}

		stats := newTable("Stat", "Value", "Bar")
		for _, s := range rec.BaseStats() {
			stats.Row(s.Label, strconv.Itoa(s.Value), s.Width)
		}
		fmt.Fprintln(out, stats)

		fmt.Fprintln(out, evolutionLine(view.Evolution))
		fmt.Fprintln(out, movesTable(view.Moves))
		return nil
	},
}

var evolutionCmd = &cobra.Command{
	Use:   "evolution <name-or-id>",
	Short: "Show the flattened evolution line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stages := details.Evolution(cmd.Context(), args[0])
		if jsonOutput {
			return printJSON(cmd, stages)
		}
		fmt.Fprintln(cmd.OutOrStdout(), evolutionLine(stages))
		return nil
	},
}

var movesCmd = &cobra.Command{
	Use:   "moves <name-or-id>",
	Short: "Show the featured moves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := details.Record(cmd.Context(), args[0])
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("%s not found", args[0])
		}
		if err != nil {
			return err
		}
		moves := details.Moves(cmd.Context(), rec)
		if jsonOutput {
			return printJSON(cmd, moves)
		}
		fmt.Fprintln(cmd.OutOrStdout(), movesTable(moves))
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the type filter options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types := browser.TypeOptions(cmd.Context())
		if jsonOutput {
			return printJSON(cmd, types)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(types, "\n"))
		return nil
	},
}

func init() {
	pageCmd.Flags().StringVarP(&pageQuery, "q", "q", "", "name prefix (at least 3 characters)")
	pageCmd.Flags().StringVarP(&pageType, "type", "t", "", "type filter")
	pageCmd.Flags().IntVarP(&pageGen, "gen", "g", 0, "generation filter (1-9)")
	pageCmd.Flags().StringVarP(&pageRarity, "rarity", "r", "", "rarity filter")
	pageCmd.Flags().IntVarP(&pageNumber, "page", "p", 1, "1-based page number")
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func evolutionLine(stages []models.EvoStage) string {
	if len(stages) == 0 {
		return "No evolution data"
	}
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		if s.Note != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.Note))
		} else {
			parts = append(parts, s.Name)
		}
	}
	return strings.Join(parts, " -> ")
}

func movesTable(moves []models.MoveBasic) string {
	if len(moves) == 0 {
		return "No moves"
	}
	t := newTable("Move", "Type", "Class", "Power", "Acc", "PP")
	for _, m := range moves {
		t.Row(m.Name, m.Type, m.DamageClass, optInt(m.Power), optInt(m.Accuracy), optInt(m.PP))
	}
	return t.String()
}
