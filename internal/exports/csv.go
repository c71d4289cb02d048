// Package exports renders the project reports as Excel-friendly CSV.
package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	"github.com/angelmondragon/roadtrack-backend/internal/stats"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// bom lets Excel detect UTF-8 so Arabic project names render.
const bom = "\uFEFF"

var titles = map[enums.ExportType]string{
	enums.ExportTypePerformance:  "Comprehensive Performance Report",
	enums.ExportTypeFinancial:    "Financial Report",
	enums.ExportTypeProductivity: "Productivity Report",
}

type projectLister interface {
	List(ctx context.Context, actor identity.User) ([]projects.Project, error)
}

type dashboarder interface {
	Dashboard(ctx context.Context, actor identity.User) (*stats.Dashboard, error)
}

type Service struct {
	projects projectLister
	stats    dashboarder
	now      func() time.Time
}

func NewService(p projectLister, s dashboarder) (*Service, error) {
	if p == nil || s == nil {
		return nil, fmt.Errorf("project lister and stats service are required")
	}
	return &Service{projects: p, stats: s, now: time.Now}, nil
}

// ParseType maps the query value to an export type; empty means performance.
func ParseType(raw string) (enums.ExportType, error) {
	if raw == "" {
		return enums.ExportTypePerformance, nil
	}
	typ, err := enums.ParseExportType(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return typ, nil
}

// FileName is the attachment name offered to the browser.
func (s *Service) FileName(typ enums.ExportType, period string) string {
	if period == "" {
		period = "all"
	}
	return fmt.Sprintf("report-%s-%s-%d.csv", typ, period, s.now().UnixMilli())
}

// Write renders the export of typ for the projects actor can see.
func (s *Service) Write(ctx context.Context, w io.Writer, actor identity.User, typ enums.ExportType, period string) error {
	visible, err := s.projects.List(ctx, actor)
	if err != nil {
		return err
	}
	dash, err := s.stats.Dashboard(ctx, actor)
	if err != nil {
		return err
	}
	return Render(w, typ, period, s.now(), visible, dash)
}

// Render is the pure CSV layout: title block, statistics, then the project table.
func Render(w io.Writer, typ enums.ExportType, period string, at time.Time, visible []projects.Project, dash *stats.Dashboard) error {
	if !typ.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid export type %q", typ))
	}
	if period == "" {
		period = "all"
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{titles[typ]},
		{"Date", at.UTC().Format("2006-01-02")},
		{"Type", typ.String()},
		{"Period", period},
		{},
		{"Statistics"},
	}
	rows = append(rows, statRows(typ, visible, dash)...)
	rows = append(rows, []string{})

	if len(visible) == 0 {
		rows = append(rows, []string{"No projects available"})
	} else {
		rows = append(rows, []string{"Projects List"})
		rows = append(rows, projectRows(typ, visible)...)
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func statRows(typ enums.ExportType, visible []projects.Project, dash *stats.Dashboard) [][]string {
	if dash == nil {
		dash = stats.BuildDashboard(visible, nil)
	}
	switch typ {
	case enums.ExportTypeFinancial:
		budget, total := decimal.Zero, decimal.Zero
		for _, p := range visible {
			budget = budget.Add(p.Budget)
			if p.TotalValue != nil {
				total = total.Add(*p.TotalValue)
			}
		}
		return [][]string{
			{"totalBudget", budget.String()},
			{"totalValue", total.String()},
			{"projectCount", strconv.Itoa(len(visible))},
		}
	case enums.ExportTypeProductivity:
		return [][]string{
			{"averageProgress", strconv.Itoa(dash.AverageProgress)},
			{"activeProjects", strconv.Itoa(dash.ActiveProjects)},
			{"completedProjects", strconv.Itoa(dash.CompletedProjects)},
		}
	default:
		return [][]string{
			{"totalProjects", strconv.Itoa(dash.TotalProjects)},
			{"activeProjects", strconv.Itoa(dash.ActiveProjects)},
			{"completedProjects", strconv.Itoa(dash.CompletedProjects)},
			{"averageProgress", strconv.Itoa(dash.AverageProgress)},
		}
	}
}

func projectRows(typ enums.ExportType, visible []projects.Project) [][]string {
	var rows [][]string
	switch typ {
	case enums.ExportTypeFinancial:
		rows = append(rows, []string{"Name", "Budget", "Total Value", "Location"})
		for _, p := range visible {
			total := decimal.Zero
			if p.TotalValue != nil {
				total = *p.TotalValue
			}
			rows = append(rows, []string{orNA(p.Name), p.Budget.String(), total.String(), orNA(p.Location)})
		}
	case enums.ExportTypeProductivity:
		rows = append(rows, []string{"Name", "Progress", "Status"})
		for _, p := range visible {
			rows = append(rows, []string{orNA(p.Name), percent(p.Progress), orNA(string(p.Status))})
		}
	default:
		rows = append(rows, []string{"Name", "Progress", "Status", "Location"})
		for _, p := range visible {
			rows = append(rows, []string{orNA(p.Name), percent(p.Progress), orNA(string(p.Status)), orNA(p.Location)})
		}
	}
	return rows
}

func percent(v int) string { return strconv.Itoa(v) + "%" }

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
