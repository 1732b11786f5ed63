package knowledge

import (
	"path"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// ClassificationFile is the exemplar document consulted by the classifier
const ClassificationFile = "category_classification.json"

// ErrInvalidDocument is returned when a knowledge document cannot be decoded
var ErrInvalidDocument = goerr.New("invalid knowledge document")

// CategoryFile returns the path of a category's fact document relative to the
// knowledge root, e.g. "claims/claims_data.json".
func CategoryFile(category types.Category) string {
	return path.Join(category.String(), category.String()+"_data.json")
}
