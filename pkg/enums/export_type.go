package enums

import "fmt"

// ExportType selects which project report a CSV export renders.
type ExportType string

const (
	ExportTypePerformance  ExportType = "performance"
	ExportTypeFinancial    ExportType = "financial"
	ExportTypeProductivity ExportType = "productivity"
)

var validExportTypes = []ExportType{
	ExportTypePerformance,
	ExportTypeFinancial,
	ExportTypeProductivity,
}

func (e ExportType) String() string {
	return string(e)
}

func (e ExportType) IsValid() bool {
	for _, candidate := range validExportTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExportType converts raw input into an ExportType.
func ParseExportType(value string) (ExportType, error) {
	for _, candidate := range validExportTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export type %q", value)
}
