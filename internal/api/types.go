package api

import (
	"github.com/MJE43/pocketbandit/internal/stats"
)

// APIError is a structured error response with context.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e APIError) Error() string {
	return e.Message
}

// Error types.
const (
	ErrTypeInvalidParams      = "invalid_params"
	ErrTypeValidation         = "validation_error"
	ErrTypeVariationNotFound  = "variation_not_found"
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory groups error types for logging.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type.
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeVariationNotFound:
		return CategoryGame
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// HealthStatus is the overall health.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is one dependency check.
type HealthCheck struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration,omitempty"`
}

// SystemInfo contains runtime figures.
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// VariationSummary describes one rule file.
type VariationSummary struct {
	File        string `json:"file"`
	Name        string `json:"name"`
	Machine     string `json:"machine,omitempty"`
	Symbols     int    `json:"symbols"`
	Rules       int    `json:"rules"`
	SeedCapital int    `json:"seedCapital"`
	Selected    bool   `json:"selected"`
}

// VariationsResponse is returned by /api/v1/variations.
type VariationsResponse struct {
	Variations    []VariationSummary `json:"variations"`
	EngineVersion string             `json:"engine_version"`
}

// RTPResponse is returned by /api/v1/variations/{name}/rtp.
type RTPResponse struct {
	Exact      stats.Report      `json:"exact"`
	Simulation *stats.Simulation `json:"simulation,omitempty"`
}
