package projects

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
	"github.com/shopspring/decimal"
)

// Service exposes project operations for an authenticated caller.
type Service interface {
	List(ctx context.Context, actor identity.User) ([]Project, error)
	ListAll(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, actor identity.User, req CreateRequest) (*Project, error)
	Update(ctx context.Context, actor identity.User, id string, req UpdateRequest) (*Project, error)
	Delete(ctx context.Context, actor identity.User, id string) error
}

type projectRepository interface {
	List(ctx context.Context) ([]Project, []string, error)
	Get(ctx context.Context, id string) (*Project, error)
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo projectRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the project service over the KV store.
func NewService(store kv.Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: NewRepository(store), logg: logg, now: time.Now}, nil
}

// OwnershipOf describes userID's relation to p for the policy.
func OwnershipOf(p Project, userID string) policy.Ownership {
	return policy.Ownership{
		IsManager:    p.IsManagedBy(userID),
		IsTeamMember: p.HasMember(userID),
	}
}

// FilterVisible keeps the projects actor may see.
func FilterVisible(actor identity.User, all []Project) []Project {
	if policy.SeesAllProjects(actor.Role) {
		return all
	}
	out := make([]Project, 0, len(all))
	for _, p := range all {
		if policy.Decide(actor.Role, policy.ActionViewProject, OwnershipOf(p, actor.ID)).Allowed {
			out = append(out, p)
		}
	}
	return out
}

func (s *service) List(ctx context.Context, actor identity.User) ([]Project, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterVisible(actor, all), nil
}

// ListAll returns every stored project, newest first, ignoring the caller.
func (s *service) ListAll(ctx context.Context) ([]Project, error) {
	items, skipped, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list projects")
	}
	if len(skipped) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "keys", skipped), "projects.list.skipped_corrupt")
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *service) Get(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get project")
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, actor identity.User, req CreateRequest) (*Project, error) {
	if err := policy.Require(actor.Role, policy.ActionCreateProject, policy.Ownership{}); err != nil {
		return nil, err
	}
	status := enums.ProjectStatusPlanning
	if req.Status != "" {
		parsed, err := enums.ParseProjectStatus(req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		status = parsed
	}

	now := s.now().UTC()
	p := &Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    req.Location,
		Status:      status,
		Budget:      decimal.Zero,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ManagerID:   req.ManagerID,
		TeamMembers: append([]string(nil), req.TeamMembers...),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	req.RoadFields.applyTo(p)

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create project")
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, actor identity.User, id string, req UpdateRequest) (*Project, error) {
	if err := policy.Require(actor.Role, policy.ActionUpdateProject, policy.Ownership{}); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Status != nil {
		status, err := enums.ParseProjectStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		p.Status = status
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = *req.EndDate
	}
	if req.ManagerID != nil {
		p.ManagerID = *req.ManagerID
	}
	if req.TeamMembers != nil {
		p.TeamMembers = append([]string(nil), (*req.TeamMembers)...)
	}
	req.RoadFields.applyTo(p)

	p.ID = id
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update project")
	}
	return p, nil
}

// Delete removes the project; deleting a missing id succeeds.
func (s *service) Delete(ctx context.Context, actor identity.User, id string) error {
	if err := policy.Require(actor.Role, policy.ActionDeleteProject, policy.Ownership{}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete project")
	}
	return nil
}
