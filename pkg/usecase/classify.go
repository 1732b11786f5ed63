package usecase

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/interfaces"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

//go:embed prompt/classify_system.md
var classifySystemPromptTmpl string

//go:embed prompt/classify_user.md
var classifyUserPromptTmpl string

var (
	classifySystemPrompt = template.Must(template.New("classify_system").Parse(classifySystemPromptTmpl))
	classifyUserPrompt   = template.Must(template.New("classify_user").Parse(classifyUserPromptTmpl))
)

type classifyCategory struct {
	Name        string
	Description string
	Examples    []string
}

type classifySystemData struct {
	Categories []classifyCategory
}

type classifyUserData struct {
	Query   string
	History []model.Turn
}

// Classifier maps a query to its Classification with one model call
type Classifier struct {
	llm    interfaces.Completer
	system string
}

// NewClassifier renders the system prompt once from the classification hints
func NewClassifier(llm interfaces.Completer, knowledge interfaces.KnowledgeStore) (*Classifier, error) {
	system, err := renderPrompt(classifySystemPrompt, buildClassifySystemData(knowledge.Hints()))
	if err != nil {
		return nil, err
	}
	return &Classifier{
		llm:    llm,
		system: system,
	}, nil
}

func buildClassifySystemData(hints []model.ClassificationHint) classifySystemData {
	byName := make(map[types.Category]model.ClassificationHint, len(hints))
	for _, h := range hints {
		if c, err := types.ParseCategory(h.CategoryName); err == nil {
			byName[c] = h
		}
	}

	var data classifySystemData
	for _, c := range types.InsuranceCategories() {
		entry := classifyCategory{
			Name:        c.String(),
			Description: c.Title(),
		}
		if h, ok := byName[c]; ok {
			if desc := strings.TrimSpace(h.Description); desc != "" {
				entry.Description = desc
			}
			entry.Examples = h.Examples
		}
		data.Categories = append(data.Categories, entry)
	}
	return data
}

// Classify returns the tags for query. Blank queries are unrelated without a
// model call. A model failure is returned as ErrClassificationFailed.
func (c *Classifier) Classify(ctx context.Context, query string, history []model.Turn) (*model.Classification, error) {
	if strings.TrimSpace(query) == "" {
		return model.Unrelated(), nil
	}

	user, err := renderPrompt(classifyUserPrompt, classifyUserData{
		Query:   query,
		History: history,
	})
	if err != nil {
		return nil, err
	}

	text, err := c.llm.Complete(ctx, model.Prompt{System: c.system, User: user})
	if err != nil {
		return nil, goerr.Wrap(ErrClassificationFailed, "classifier model call failed",
			goerr.V(QueryKey, query),
			goerr.V("cause", err.Error()),
		)
	}

	tags := ParseCategories(text)
	result := model.NewClassification(tags...)
	logging.From(ctx).Debug("query classified",
		"raw", text,
		"categories", result.String(),
	)
	return result, nil
}

// ParseCategories extracts category tags from a classifier answer. It accepts
// a JSON array, a list written with single quotes, or bare tag words. Unknown
// tags are dropped.
func ParseCategories(text string) []types.Category {
	text = strings.TrimSpace(stripCodeFence(text))
	if text == "" {
		return nil
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		list := text[start : end+1]
		if tags, ok := decodeTagList(list); ok {
			return tags
		}
		if tags, ok := decodeTagList(strings.ReplaceAll(list, "'", `"`)); ok {
			return tags
		}
	}

	if c, err := types.ParseCategory(text); err == nil {
		return []types.Category{c}
	}

	var tags []types.Category
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_' && r != '-'
	})
	for _, w := range words {
		if c, err := types.ParseCategory(w); err == nil {
			tags = append(tags, c)
		}
	}
	// "policy types" written as two words
	lower := strings.ToLower(text)
	if strings.Contains(lower, "policy types") || strings.Contains(lower, "policy-types") {
		tags = append(tags, types.CategoryPolicyTypes)
	}
	return tags
}

func decodeTagList(list string) ([]types.Category, bool) {
	var raw []string
	if err := json.Unmarshal([]byte(list), &raw); err != nil {
		return nil, false
	}
	var tags []types.Category
	for _, s := range raw {
		if c, err := types.ParseCategory(s); err == nil {
			tags = append(tags, c)
		}
	}
	return tags, true
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "```")
}
