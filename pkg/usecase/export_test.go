package usecase

import "github.com/secmon-lab/lifeguide/pkg/domain/model"

// BuildAgentPrompt is exported for testing
var BuildAgentPrompt = (*CategoryAgent).buildPrompt

// LastTurns is exported for testing
func LastTurns(turns []model.Turn, n int) []model.Turn {
	return lastTurns(turns, n)
}
