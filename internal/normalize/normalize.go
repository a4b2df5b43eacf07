package normalize

import "fmt"

// Collection is a category's records keyed by logical identity. Insertion
// order is irrelevant; key uniqueness within one invocation is mandatory.
type Collection map[string]any

// Normalizer converts list-shaped result categories into uniquely-keyed
// lookup maps and mints synthetic error entries for failed sub-resources.
type Normalizer struct {
	counters *Counters
}

// NewNormalizer creates a Normalizer drawing error keys from counters.
func NewNormalizer(counters *Counters) *Normalizer {
	return &Normalizer{counters: counters}
}

// Normalize converts value for the given category. Maps pass through with
// their values normalized recursively; lists become Collections keyed by the
// category's identity rule. Scalars are returned unchanged.
//
// Fallback keys ("{label}_{index}") are distinct by construction within one
// list, but a fallback key can collide with a later genuine key of the same
// literal string; that case is last-write-wins, by compatibility with the
// legacy collector, and is not auto-resolved.
func (n *Normalizer) Normalize(category string, value any) any {
	switch v := value.(type) {
	case []any:
		return n.normalizeList(category, v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = n.Normalize(k, child)
		}
		return out
	default:
		return value
	}
}

func (n *Normalizer) normalizeList(category string, items []any) Collection {
	coll := make(Collection, len(items))
	for i, item := range items {
		key := identityKey(category, item)
		if key == "" {
			// Positional fallback, 1-based. The label stays the generic
			// "item" regardless of category so fallback keys can never
			// shadow a category's synthetic error keys.
			key = fmt.Sprintf("item_%d", i+1)
		}
		coll[key] = n.Normalize(category, item)
	}
	return coll
}

// AddError inserts a synthetic placeholder for a sub-resource whose fetch
// failed, preserving the rest of the collection. The key is unique for the
// category across the whole process run.
func (n *Normalizer) AddError(coll Collection, category string, detail string) string {
	key := fmt.Sprintf("%s_error_%d", category, n.counters.Next(category))
	coll[key] = map[string]any{
		"name":   "ERROR",
		"detail": detail,
	}
	return key
}

// identityKey derives a record's key under the category's identity rule, or
// "" when the record carries no usable identity.
func identityKey(category string, item any) string {
	rec, ok := item.(map[string]any)
	if !ok {
		return ""
	}

	switch category {
	case "composites":
		return compositeKey(rec)
	case "threads":
		// Thread pools are reported per server and carry no name field.
		return stringField(rec, "server")
	default:
		return stringField(rec, "name")
	}
}

// compositeKey builds "{partition}::{name}" with the partition defaulting to
// the literal "default". The legacy collector emits either "partition" or
// "partitionName" depending on version.
func compositeKey(rec map[string]any) string {
	name := stringField(rec, "name")
	if name == "" {
		return ""
	}
	partition := stringField(rec, "partition")
	if partition == "" {
		partition = stringField(rec, "partitionName")
	}
	if partition == "" {
		partition = "default"
	}
	return partition + "::" + name
}

func stringField(rec map[string]any, field string) string {
	s, _ := rec[field].(string)
	return s
}
