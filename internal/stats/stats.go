// Package stats derives dashboard figures from the stored projects and reports.
// Nothing here is persisted; every call recomputes from a fresh read.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	"github.com/angelmondragon/roadtrack-backend/internal/reports"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	"golang.org/x/sync/errgroup"
)

const recentActivityLimit = 10

type Dashboard struct {
	TotalProjects     int              `json:"totalProjects"`
	ActiveProjects    int              `json:"activeProjects"`
	CompletedProjects int              `json:"completedProjects"`
	DelayedProjects   int              `json:"delayedProjects"`
	TotalReports      int              `json:"totalReports"`
	PendingReports    int              `json:"pendingReports"`
	AverageProgress   int              `json:"averageProgress"`
	RecentActivities  []reports.Report `json:"recentActivities"`
}

type StatusCounts struct {
	Planning  int `json:"planning"`
	Active    int `json:"active"`
	Delayed   int `json:"delayed"`
	Completed int `json:"completed"`
	OnHold    int `json:"onHold"`
}

type projectLister interface {
	ListAll(ctx context.Context) ([]projects.Project, error)
}

type reportLister interface {
	ListAll(ctx context.Context) ([]reports.Report, error)
}

type Service struct {
	projects projectLister
	reports  reportLister
}

func NewService(p projectLister, r reportLister) (*Service, error) {
	if p == nil || r == nil {
		return nil, fmt.Errorf("project and report listers are required")
	}
	return &Service{projects: p, reports: r}, nil
}

// Dashboard loads projects and reports concurrently and aggregates them for actor.
// Project figures respect the ownership filter; report figures cover every project.
func (s *Service) Dashboard(ctx context.Context, actor identity.User) (*Dashboard, error) {
	var (
		allProjects []projects.Project
		allReports  []reports.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allProjects, err = s.projects.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allReports, err = s.reports.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildDashboard(projects.FilterVisible(actor, allProjects), allReports), nil
}

func (s *Service) ProjectsByStatus(ctx context.Context) (*StatusCounts, error) {
	all, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := CountByStatus(all)
	return &counts, nil
}

// BuildDashboard is the pure aggregation behind Dashboard.
func BuildDashboard(visible []projects.Project, allReports []reports.Report) *Dashboard {
	d := &Dashboard{
		TotalProjects:    len(visible),
		TotalReports:     len(allReports),
		RecentActivities: []reports.Report{},
	}
	progressSum := 0
	for _, p := range visible {
		switch p.Status {
		case enums.ProjectStatusActive:
			d.ActiveProjects++
		case enums.ProjectStatusCompleted:
			d.CompletedProjects++
		case enums.ProjectStatusDelayed:
			d.DelayedProjects++
		}
		progressSum += p.Progress
	}
	if len(visible) > 0 {
		d.AverageProgress = int(math.Floor(float64(progressSum)/float64(len(visible)) + 0.5))
	}

	for _, r := range allReports {
		if r.Status == enums.ReportStatusPending {
			d.PendingReports++
		}
	}
	recent := append([]reports.Report(nil), allReports...)
	reports.SortNewestFirst(recent)
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	d.RecentActivities = append(d.RecentActivities, recent...)
	return d
}

func CountByStatus(all []projects.Project) StatusCounts {
	var c StatusCounts
	for _, p := range all {
		switch p.Status {
		case enums.ProjectStatusPlanning:
			c.Planning++
		case enums.ProjectStatusActive:
			c.Active++
		case enums.ProjectStatusDelayed:
			c.Delayed++
		case enums.ProjectStatusCompleted:
			c.Completed++
		case enums.ProjectStatusOnHold:
			c.OnHold++
		}
	}
	return c
}
