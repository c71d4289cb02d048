package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/policy"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service exposes daily report operations.
type Service interface {
	ListByProject(ctx context.Context, projectID string) ([]Report, error)
	ListAll(ctx context.Context) ([]Report, error)
	Create(ctx context.Context, actor identity.User, projectID string, req CreateRequest) (*Report, error)
	SetStatus(ctx context.Context, actor identity.User, reportID string, req StatusRequest) (*Report, error)
}

type reportRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]Report, []string, error)
	ListAll(ctx context.Context) ([]Report, []string, error)
	Create(ctx context.Context, rep *Report) error
	SaveAt(ctx context.Context, key string, rep *Report) error
	Find(ctx context.Context, id string) (string, *Report, error)
}

type service struct {
	repo reportRepository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(store kv.Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: NewRepository(store), logg: logg, now: time.Now}, nil
}

// cleanProjectID rejects ids that would escape the report:<projectId>: prefix.
func cleanProjectID(projectID string) (string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	if strings.Contains(projectID, ":") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "project id must not contain ':'")
	}
	return projectID, nil
}

// SortNewestFirst orders reports by createdAt descending.
func SortNewestFirst(items []Report) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func (s *service) ListByProject(ctx context.Context, projectID string) ([]Report, error) {
	projectID, err := cleanProjectID(projectID)
	if err != nil {
		return nil, err
	}
	items, skipped, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reports")
	}
	s.warnSkipped(ctx, skipped)
	SortNewestFirst(items)
	return items, nil
}

func (s *service) ListAll(ctx context.Context) ([]Report, error) {
	items, skipped, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reports")
	}
	s.warnSkipped(ctx, skipped)
	SortNewestFirst(items)
	return items, nil
}

func (s *service) Create(ctx context.Context, actor identity.User, projectID string, req CreateRequest) (*Report, error) {
	if err := policy.Require(actor.Role, policy.ActionCreateReport, policy.Ownership{}); err != nil {
		return nil, err
	}
	projectID, err := cleanProjectID(projectID)
	if err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	rep := &Report{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		Date:            req.Date,
		WorkDescription: req.WorkDescription,
		Progress:        req.Progress,
		WorkersCount:    req.WorkersCount,
		EquipmentUsed:   req.EquipmentUsed,
		Notes:           req.Notes,
		Images:          append([]string{}, images...),
		ReportItems:     append([]Item(nil), req.ReportItems...),
		Status:          enums.ReportStatusPending,
		CreatedBy:       actor.ID,
		CreatedByName:   actor.Name,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create report")
	}
	return rep, nil
}

// SetStatus approves a report. Only "approved" is accepted; approving again
// refreshes approvedBy and approvedAt.
func (s *service) SetStatus(ctx context.Context, actor identity.User, reportID string, req StatusRequest) (*Report, error) {
	if err := policy.Require(actor.Role, policy.ActionSetReportStatus, policy.Ownership{}); err != nil {
		return nil, err
	}
	status, err := enums.ParseReportStatus(strings.TrimSpace(req.Status))
	if err != nil || status != enums.ReportStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved")
	}

	key, rep, err := s.repo.Find(ctx, reportID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find report")
	}

	approvedAt := s.now().UTC()
	rep.Status = status
	rep.ApprovedBy = actor.ID
	rep.ApprovedAt = &approvedAt
	if err := s.repo.SaveAt(ctx, key, rep); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update report status")
	}
	return rep, nil
}

func (s *service) warnSkipped(ctx context.Context, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "keys", skipped), "reports.list.skipped_corrupt")
}
