package store

// DiagnosticCode names a soft failure: a condition that is reported alongside
// a successful result instead of being returned as an error.
type DiagnosticCode string

const (
	DiagnosticFileParseSkipped DiagnosticCode = "FileParseSkipped"
	DiagnosticLimitExceeded    DiagnosticCode = "LimitExceeded"
)

type Diagnostic struct {
	Code    DiagnosticCode `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	// Subject is the file path or resource type the diagnostic refers to.
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

func LimitExceededDiagnostic(resourceType string) Diagnostic {
	return Diagnostic{
		Code:    DiagnosticLimitExceeded,
		Message: CompositeStoreLimitWarning,
		Subject: resourceType,
	}
}
