package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// Fact is one record of a category's knowledge document. The record shape is
// owned by the data set; Title and Content are picked from common keys and the
// raw record is kept for anything else.
type Fact struct {
	Title   string
	Content string
	Raw     json.RawMessage
}

// FactSet is the immutable knowledge for one category
type FactSet struct {
	Category types.Category
	Facts    []Fact
}

// ClassificationHint describes a category for the classifier prompt
type ClassificationHint struct {
	CategoryName string   `json:"category_name"`
	Description  string   `json:"description"`
	Examples     []string `json:"examples,omitempty"`
}

var (
	titleKeys   = []string{"title", "question", "name", "topic", "heading"}
	contentKeys = []string{"content", "answer", "description", "text", "details"}
)

// UnmarshalJSON decodes any JSON object into a Fact
func (f *Fact) UnmarshalJSON(data []byte) error {
	f.Raw = append(json.RawMessage(nil), data...)

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		var s string
		if strErr := json.Unmarshal(data, &s); strErr == nil {
			f.Content = s
			return nil
		}
		return err
	}

	f.Title = pickString(fields, titleKeys)
	f.Content = pickString(fields, contentKeys)
	if f.Content == "" {
		f.Content = renderFields(fields, f.Title)
	}
	return nil
}

// String renders the fact as a single prompt line
func (f Fact) String() string {
	switch {
	case f.Title == "":
		return f.Content
	case f.Content == "":
		return f.Title
	default:
		return f.Title + ": " + f.Content
	}
}

func pickString(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func renderFields(fields map[string]any, title string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if v == title {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(parts, "; ")
}
