package settings

import (
	"fmt"
	"strconv"
	"time"
)

// Bag is the sparse key-value blob stored per site per bag. Values are
// always strings on the wire; a nil value is an explicit null. A key absent
// from the map was never written or has been cleared.
type Bag map[string]*string

// Patch is a partial update. A key absent from the patch leaves the stored
// value untouched; a key present with a nil value nulls it. This absent vs
// null distinction must survive the whole write path.
type Patch map[string]any

// BagPatch is one merge operation against a single named bag.
type BagPatch struct {
	Bag    string
	Values Bag
}

// Decode parses a stored bag into typed values using the bag's field table.
// Booleans only decode from the literal "true"/"false" strings, anything
// else passes through unchanged. Undecodable dates pass through as well.
func Decode(bag string, raw Bag) map[string]any {
	table := FieldsFor(bag)
	out := map[string]any{}

	for key, val := range raw {
		kind, known := table[key]
		if !known {
			continue
		}

		if val == nil {
			out[key] = nil
			continue
		}

		out[key] = decodeValue(kind, *val)
	}

	return out
}

func decodeValue(kind FieldKind, s string) any {
	switch kind {
	case KindBool:
		if s == "true" {
			return true
		}

		if s == "false" {
			return false
		}

		return s
	case KindDate:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}

		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}

		return s
	case KindEpochDate:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC()
		}

		return s
	}

	return s
}

// BuildPatch partitions a flat patch across the three known bags, drops
// unknown fields, stringifies the remaining values and emits one merge per
// non-empty bag. An empty result means there is nothing to write.
func BuildPatch(patch Patch) []BagPatch {
	grouped := map[string]Bag{}

	for key, val := range patch {
		bag, kind, known := lookupField(key)
		if !known {
			continue
		}

		if grouped[bag] == nil {
			grouped[bag] = Bag{}
		}

		grouped[bag][key] = encodeValue(kind, val)
	}

	out := []BagPatch{}

	for _, bag := range []string{BagProfile, BagSettings, BagSocialMedia} {
		if len(grouped[bag]) > 0 {
			out = append(out, BagPatch{Bag: bag, Values: grouped[bag]})
		}
	}

	return out
}

// Merge applies a bag patch on top of the stored bag. Nil values stay in the
// map as explicit nulls.
func Merge(stored Bag, values Bag) Bag {
	merged := Bag{}

	for k, v := range stored {
		merged[k] = v
	}

	for k, v := range values {
		merged[k] = v
	}

	return merged
}

func lookupField(key string) (string, FieldKind, bool) {
	for _, bag := range []string{BagProfile, BagSettings, BagSocialMedia} {
		if kind, ok := bagFields[bag][key]; ok {
			return bag, kind, true
		}
	}

	return "", KindString, false
}

func encodeValue(kind FieldKind, val any) *string {
	if val == nil {
		return nil
	}

	s := ""

	switch v := val.(type) {
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if kind == KindEpochDate {
			s = strconv.FormatInt(v.Unix(), 10)
		} else {
			s = v.Format("2006-01-02")
		}
	case *string:
		if v == nil {
			return nil
		}

		s = *v
	default:
		s = fmt.Sprintf("%v", v)
	}

	return &s
}
