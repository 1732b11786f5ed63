package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

const legacyCategorySuffix = "_categories"

// MarshalCacheDocument encodes entries as the persisted cache document: a JSON
// array in insertion order.
func MarshalCacheDocument(entries []*CacheEntry) ([]byte, error) {
	if entries == nil {
		entries = []*CacheEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode cache document")
	}
	return data, nil
}

// UnmarshalCacheDocument decodes a persisted cache document. Besides the array
// form it accepts the older flat object form, where each query maps to its
// answer and "<query>_categories" maps to its tag list; object key order is
// taken as insertion order. Keys and sequence numbers are recomputed.
func UnmarshalCacheDocument(data []byte) ([]*CacheEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []*CacheEntry{}, nil
	}

	var entries []*CacheEntry
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to decode cache document")
		}
	case '{':
		legacy, err := decodeLegacyDocument(trimmed)
		if err != nil {
			return nil, err
		}
		entries = legacy
	default:
		return nil, goerr.New("unsupported cache document", goerr.V("prefix", string(trimmed[:1])))
	}

	out := make([]*CacheEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil || NormalizeQuery(e.Query) == "" {
			continue
		}
		e.Key = NormalizeQuery(e.Query)
		e.Categories = validCategories(e.Categories)
		e.Seq = int64(len(out) + 1)
		out = append(out, e)
	}
	return out, nil
}

func decodeLegacyDocument(data []byte) ([]*CacheEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, goerr.Wrap(err, "failed to decode legacy cache document")
	}

	var order []string
	answers := make(map[string]string)
	categories := make(map[string][]types.Category)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode legacy cache key")
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, goerr.Wrap(err, "failed to decode legacy cache value", goerr.V("key", key))
		}

		if query, ok := strings.CutSuffix(key, legacyCategorySuffix); ok {
			var tags []types.Category
			if err := json.Unmarshal(raw, &tags); err == nil {
				categories[query] = tags
				continue
			}
		}

		var answer string
		if err := json.Unmarshal(raw, &answer); err != nil {
			continue
		}
		if _, seen := answers[key]; !seen {
			order = append(order, key)
		}
		answers[key] = answer
	}

	entries := make([]*CacheEntry, 0, len(order))
	for _, query := range order {
		entries = append(entries, &CacheEntry{
			Query:      query,
			Answer:     answers[query],
			Categories: categories[query],
		})
	}
	return entries, nil
}

func validCategories(tags []types.Category) []types.Category {
	var out []types.Category
	for _, tag := range tags {
		if c, err := types.ParseCategory(tag.String()); err == nil {
			out = append(out, c)
		}
	}
	return out
}
