package reports

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
)

// Report is a daily site report stored under report:<projectId>:<id>.
type Report struct {
	ID              string             `json:"id"`
	ProjectID       string             `json:"projectId"`
	Date            string             `json:"date"`
	WorkDescription string             `json:"workDescription"`
	Progress        int                `json:"progress"`
	WorkersCount    int                `json:"workersCount"`
	EquipmentUsed   string             `json:"equipmentUsed"`
	Notes           string             `json:"notes"`
	Images          []string           `json:"images"`
	ReportItems     []Item             `json:"reportItems,omitempty"`
	Status          enums.ReportStatus `json:"status"`
	CreatedBy       string             `json:"createdBy"`
	CreatedByName   string             `json:"createdByName"`
	CreatedAt       time.Time          `json:"createdAt"`
	ApprovedBy      string             `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time         `json:"approvedAt,omitempty"`
}

// Item is one line of executed work attached to a report. Attachment is kept
// verbatim: an uploaded file URL, or whatever object the client serialized.
type Item struct {
	ItemNumber string          `json:"itemNumber"`
	ItemName   string          `json:"itemName"`
	ItemType   string          `json:"itemType"`
	Attachment json.RawMessage `json:"attachment,omitempty"`
}

// CreateRequest is the body accepted by POST /projects/{projectId}/reports.
// Fields are stored as sent.
type CreateRequest struct {
	Date            string   `json:"date"`
	WorkDescription string   `json:"workDescription"`
	Progress        int      `json:"progress"`
	WorkersCount    int      `json:"workersCount"`
	EquipmentUsed   string   `json:"equipmentUsed"`
	Notes           string   `json:"notes"`
	Images          []string `json:"images"`
	ReportItems     []Item   `json:"reportItems"`
}

// StatusRequest is the body of PUT /reports/{reportId}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}
