package interfaces

import (
	"context"

	"github.com/secmon-lab/lifeguide/pkg/domain/model"
)

// Completer turns a prompt into model text. Model selection and retry policy
// belong to the implementation, never to the caller.
type Completer interface {
	Complete(ctx context.Context, prompt model.Prompt) (string, error)
}
