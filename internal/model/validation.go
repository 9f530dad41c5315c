package model

// ValidationResult is the structured outcome of a pure legality check.
// Errors block the operation; warnings are advisory and travel alongside a
// successful result.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

func (r *ValidationResult) AddError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
