package services

import "errors"

// Error kinds raised during a run. Callers test them with errors.Is.
var (
	ErrTemplateMissing    = errors.New("prompt template not found")
	ErrTemplateUnreadable = errors.New("failed to load prompt template")
	ErrGenerationFailed   = errors.New("failed to generate briefing")
	ErrDispatchFailed     = errors.New("failed to send briefing email")
)
