package interfaces

import (
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// KnowledgeStore provides read-only access to the knowledge loaded at start-up
type KnowledgeStore interface {
	// Facts returns the fact set of an insurance category. Unknown and
	// sentinel categories yield an empty set.
	Facts(category types.Category) *model.FactSet

	// Hints returns the exemplar descriptions used by the classifier
	Hints() []model.ClassificationHint
}
