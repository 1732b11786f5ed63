package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// ErrClassificationFailed is returned when the classifier could not get
	// an answer from the model
	ErrClassificationFailed = goerr.New("classification failed")

	// ErrAgentFailed is returned when a category agent could not answer
	ErrAgentFailed = goerr.New("category agent failed")

	// ErrInvalidCategory is returned when a sentinel or unknown category is
	// routed to a category agent
	ErrInvalidCategory = goerr.New("invalid category for agent")
)

// Context keys for error values
const (
	CategoryKey = "category"
	QueryKey    = "query"
	SessionKey  = "session_id"
)
