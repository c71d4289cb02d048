package projects

import (
	"github.com/shopspring/decimal"
)

// CreateRequest is the body accepted by POST /projects. Only the status enum is
// checked; dates, progress and amounts are stored as sent.
type CreateRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Status      string           `json:"status" validate:"omitempty,oneof=planning active delayed completed on_hold"`
	Progress    *int             `json:"progress"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	ManagerID   string           `json:"managerId"`
	TeamMembers []string         `json:"teamMembers"`

	RoadFields
}

// UpdateRequest is the explicit partial update for PUT /projects/{id}. A present
// field fully overrides the stored value; arrays are replaced, never appended.
type UpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	Status      *string          `json:"status" validate:"omitempty,oneof=planning active delayed completed on_hold"`
	Progress    *int             `json:"progress"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *string          `json:"startDate"`
	EndDate     *string          `json:"endDate"`
	ManagerID   *string          `json:"managerId"`
	TeamMembers *[]string        `json:"teamMembers"`

	RoadFields
}

// RoadFields are the optional contract and progress fields of a road project.
type RoadFields struct {
	ProjectType         *string          `json:"projectType"`
	Region              *string          `json:"region"`
	RoadName            *string          `json:"roadName"`
	ContractNumber      *string          `json:"contractNumber"`
	SequenceNumber      *string          `json:"sequenceNumber"`
	NotificationNumber  *string          `json:"notificationNumber"`
	TotalValue          *decimal.Decimal `json:"totalValue"`
	PaymentNumber       *string          `json:"paymentNumber"`
	ContractualProgress *int             `json:"contractualProgress"`
	ActualProgress      *int             `json:"actualProgress"`
	PlannedProgress     *int             `json:"plannedProgress"`
	RemainingProgress   *int             `json:"remainingProgress"`
	Duration            *int             `json:"duration"`
	Attachments         *[]string        `json:"attachments"`
}

func (r RoadFields) applyTo(p *Project) {
	if r.ProjectType != nil {
		p.ProjectType = *r.ProjectType
	}
	if r.Region != nil {
		p.Region = *r.Region
	}
	if r.RoadName != nil {
		p.RoadName = *r.RoadName
	}
	if r.ContractNumber != nil {
		p.ContractNumber = *r.ContractNumber
	}
	if r.SequenceNumber != nil {
		p.SequenceNumber = *r.SequenceNumber
	}
	if r.NotificationNumber != nil {
		p.NotificationNumber = *r.NotificationNumber
	}
	if r.TotalValue != nil {
		v := *r.TotalValue
		p.TotalValue = &v
	}
	if r.PaymentNumber != nil {
		p.PaymentNumber = *r.PaymentNumber
	}
	if r.ContractualProgress != nil {
		p.ContractualProgress = intPtr(*r.ContractualProgress)
	}
	if r.ActualProgress != nil {
		p.ActualProgress = intPtr(*r.ActualProgress)
	}
	if r.PlannedProgress != nil {
		p.PlannedProgress = intPtr(*r.PlannedProgress)
	}
	if r.RemainingProgress != nil {
		p.RemainingProgress = intPtr(*r.RemainingProgress)
	}
	if r.Duration != nil {
		p.Duration = intPtr(*r.Duration)
	}
	if r.Attachments != nil {
		p.Attachments = append([]string(nil), (*r.Attachments)...)
	}
}

func intPtr(v int) *int { return &v }
