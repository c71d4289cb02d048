package enums

import "fmt"

// ReportStatus tracks the approval state of a daily report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
)

func (s ReportStatus) String() string {
	return string(s)
}

func (s ReportStatus) IsValid() bool {
	return s == ReportStatusPending || s == ReportStatusApproved
}

func ParseReportStatus(value string) (ReportStatus, error) {
	s := ReportStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid report status %q", value)
	}
	return s, nil
}
