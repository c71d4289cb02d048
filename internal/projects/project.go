package projects

import (
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Project is a road-infrastructure project as stored under project:<id>.
type Project struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Status      enums.ProjectStatus `json:"status"`
	Progress    int                 `json:"progress"`
	Budget      decimal.Decimal     `json:"budget"`
	StartDate   string              `json:"startDate"`
	EndDate     string              `json:"endDate"`
	ManagerID   string              `json:"managerId,omitempty"`
	TeamMembers []string            `json:"teamMembers,omitempty"`

	ProjectType         string           `json:"projectType,omitempty"`
	Region              string           `json:"region,omitempty"`
	RoadName            string           `json:"roadName,omitempty"`
	ContractNumber      string           `json:"contractNumber,omitempty"`
	SequenceNumber      string           `json:"sequenceNumber,omitempty"`
	NotificationNumber  string           `json:"notificationNumber,omitempty"`
	TotalValue          *decimal.Decimal `json:"totalValue,omitempty"`
	PaymentNumber       string           `json:"paymentNumber,omitempty"`
	ContractualProgress *int             `json:"contractualProgress,omitempty"`
	ActualProgress      *int             `json:"actualProgress,omitempty"`
	PlannedProgress     *int             `json:"plannedProgress,omitempty"`
	RemainingProgress   *int             `json:"remainingProgress,omitempty"`
	Duration            *int             `json:"duration,omitempty"`
	Attachments         []string         `json:"attachments,omitempty"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsManagedBy reports whether userID is the project's manager.
func (p Project) IsManagedBy(userID string) bool {
	return userID != "" && p.ManagerID == userID
}

// HasMember reports whether userID is listed in teamMembers.
func (p Project) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	for _, m := range p.TeamMembers {
		if m == userID {
			return true
		}
	}
	return false
}
