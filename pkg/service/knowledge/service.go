package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

// Store holds the fact sets and classification hints. It is populated once and
// never mutated, so concurrent readers need no locking.
type Store struct {
	facts map[types.Category]*model.FactSet
	hints []model.ClassificationHint
}

var _ interfaces.KnowledgeStore = &Store{}

// Option is a functional option for Load
type Option func(*loader)

type loader struct {
	strict bool
}

// WithStrict makes Load fail on a missing or broken document instead of
// degrading to an empty set.
func WithStrict(strict bool) Option {
	return func(l *loader) {
		l.strict = strict
	}
}

// LoadDir loads knowledge from a directory on disk
func LoadDir(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat knowledge directory", goerr.V("dir", dir))
	}
	if !info.IsDir() {
		return nil, goerr.New("knowledge path is not a directory", goerr.V("dir", dir))
	}
	return Load(ctx, os.DirFS(dir), opts...)
}

// Load reads the classification document and one fact document per insurance
// category from fsys. By default a missing or malformed document is logged and
// replaced by an empty set.
func Load(ctx context.Context, fsys fs.FS, opts ...Option) (*Store, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	logger := logging.From(ctx)

	s := &Store{
		facts: make(map[types.Category]*model.FactSet),
	}

	hints, err := readDocument[model.ClassificationHint](fsys, ClassificationFile)
	if err != nil {
		if l.strict {
			return nil, err
		}
		logger.Warn("classification knowledge unavailable", "file", ClassificationFile, "error", err.Error())
	}
	s.hints = validHints(ctx, hints)

	for _, category := range types.InsuranceCategories() {
		file := CategoryFile(category)
		facts, err := readDocument[model.Fact](fsys, file)
		if err != nil {
			if l.strict {
				return nil, err
			}
			logger.Warn("category knowledge unavailable", "category", category, "file", file, "error", err.Error())
		}
		s.facts[category] = &model.FactSet{Category: category, Facts: facts}
	}

	logger.Info("knowledge loaded", "hints", len(s.hints), "facts", s.counts())
	return s, nil
}

// New builds a Store from in-memory data
func New(facts map[types.Category][]model.Fact, hints []model.ClassificationHint) *Store {
	s := &Store{
		facts: make(map[types.Category]*model.FactSet),
		hints: append([]model.ClassificationHint(nil), hints...),
	}
	for _, category := range types.InsuranceCategories() {
		s.facts[category] = &model.FactSet{
			Category: category,
			Facts:    append([]model.Fact(nil), facts[category]...),
		}
	}
	return s
}

// Facts returns the fact set of category
func (s *Store) Facts(category types.Category) *model.FactSet {
	if set, ok := s.facts[category]; ok {
		return set
	}
	return &model.FactSet{Category: category}
}

// Hints returns the classification hints
func (s *Store) Hints() []model.ClassificationHint {
	return s.hints
}

func (s *Store) counts() map[string]int {
	counts := make(map[string]int, len(s.facts))
	for c, set := range s.facts {
		counts[c.String()] = len(set.Facts)
	}
	return counts
}

func readDocument[T any](fsys fs.FS, name string) ([]T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(err, "knowledge document not found", goerr.V("file", name))
		}
		return nil, goerr.Wrap(err, "failed to read knowledge document", goerr.V("file", name))
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, goerr.Wrap(ErrInvalidDocument, "failed to decode knowledge document",
			goerr.V("file", name),
			goerr.V("cause", err.Error()),
		)
	}
	return records, nil
}

// validHints drops hints naming a category outside the closed set
func validHints(ctx context.Context, hints []model.ClassificationHint) []model.ClassificationHint {
	out := make([]model.ClassificationHint, 0, len(hints))
	for _, h := range hints {
		c, err := types.ParseCategory(h.CategoryName)
		if err != nil {
			logging.From(ctx).Warn("ignoring classification hint", "category_name", h.CategoryName)
			continue
		}
		h.CategoryName = c.String()
		out = append(out, h)
	}
	return out
}
