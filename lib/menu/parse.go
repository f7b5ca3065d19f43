package menu

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError reports that the raw extraction value did not match the
// expected four-level structure, or that a node was missing a required
// field.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode menu: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode menu: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// rawNode mirrors the extraction script's wire shape. required fields
// are pointers so absence can be told apart from emptiness.
type rawNode struct {
	Name        *string   `json:"name"`
	Type        *string   `json:"type"`
	Allergens   []string  `json:"allergens"`
	Preferences []string  `json:"preferences"`
	Disclaimers []string  `json:"disclaimers"`
	Items       []rawNode `json:"items"`
}

type rawWeek = map[string]map[string]map[string]map[string][]rawNode

// Parse converts the raw value returned by the extraction routine
// (nested maps/slices/strings, anything JSON-serializable) into a typed
// Week. unrecognized allergen/preference tags decode to the unknown
// variant instead of failing the parse.
func Parse(raw any) (Week, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return Week{}, &DecodeError{Reason: "raw value is not JSON-serializable", Err: err}
	}
	return decode(buf)
}

// legacy plist-flavored output occasionally emitted by the browsing
// runtime: unquoted `key = value;` pairs with parens for arrays.
var legacyReplacer = strings.NewReplacer(
	" = ", ": ",
	";", ",",
	"(", "[",
	")", "]",
)

// ParseString parses a textual serialization of the dataset. it accepts
// plain JSON as well as the quasi-JSON dialect, which is normalized by
// plain substitution before the same strict decode. this is a bounded
// repair path, not an alternate grammar.
func ParseString(s string) (Week, error) {
	return decode([]byte(legacyReplacer.Replace(s)))
}

func decode(buf []byte) (Week, error) {
	var raw rawWeek
	err := json.Unmarshal(buf, &raw)
	if err != nil {
		return Week{}, &DecodeError{Reason: "value does not match date/venue/meal/station hierarchy", Err: err}
	}

	data := WeekData{}
	for date, venues := range raw {
		data[date] = map[string]map[string]map[string][]Node{}
		for venue, meals := range venues {
			data[date][venue] = map[string]map[string][]Node{}
			for meal, stations := range meals {
				data[date][venue][meal] = map[string][]Node{}
				for station, nodes := range stations {
					typed, err := convertNodes(nodes)
					if err != nil {
						return Week{}, err
					}
					data[date][venue][meal][station] = typed
				}
			}
		}
	}
	return Week{Data: data}, nil
}

func convertNodes(raw []rawNode) ([]Node, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]Node, 0, len(raw))
	for _, r := range raw {
		node, err := convertNode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func convertNode(raw rawNode) (Node, error) {
	if raw.Name == nil {
		return Node{}, &DecodeError{Reason: "node is missing required field `name`"}
	}
	if raw.Type == nil {
		return Node{}, &DecodeError{Reason: fmt.Sprintf("node %q is missing required field `type`", *raw.Name)}
	}

	nodeType := NodeType(*raw.Type)
	if !nodeType.Valid() {
		return Node{}, &DecodeError{Reason: fmt.Sprintf("node %q has invalid type %q", *raw.Name, *raw.Type)}
	}

	node := Node{
		Name:        *raw.Name,
		Type:        nodeType,
		Disclaimers: raw.Disclaimers,
	}

	if len(raw.Allergens) > 0 {
		node.Allergens = make([]Allergen, len(raw.Allergens))
		for i, tag := range raw.Allergens {
			node.Allergens[i] = ParseAllergen(tag)
		}
	}
	if len(raw.Preferences) > 0 {
		node.Preferences = make([]DietaryPreference, len(raw.Preferences))
		for i, tag := range raw.Preferences {
			node.Preferences[i] = ParseDietaryPreference(tag)
		}
	}

	children, err := convertNodes(raw.Items)
	if err != nil {
		return Node{}, err
	}
	node.Items = children

	return node, nil
}
