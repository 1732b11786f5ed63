package completion

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrModel is a single failed attempt: transport error, timeout, or an
	// empty/malformed response.
	ErrModel = goerr.New("model call failed")

	// ErrAllModelsExhausted is returned when every tier has failed
	ErrAllModelsExhausted = goerr.New("all models exhausted")
)

// Context keys for error values
const (
	TierKey  = "tier"
	ModelKey = "model"
)
