package scraper

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Line is one `.js-menu-item` entry scanned off a station, in DOM
// order: its visible text plus the tag lists carried by its data
// attributes.
type Line struct {
	Text        string
	Allergens   []string
	Preferences []string
}

// RawNode is the classifier's output tree, shaped exactly like the
// extraction wire contract. tags stay raw strings here; enum validation
// belongs to the parser.
type RawNode struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Allergens   []string   `json:"allergens,omitempty"`
	Preferences []string   `json:"preferences,omitempty"`
	Disclaimers []string   `json:"disclaimers,omitempty"`
	Items       []*RawNode `json:"items,omitempty"`
}

const (
	typeItem       = "item"
	typeHeader     = "header"
	typeTimeHeader = "time-header"
)

// phrases that mark a line as an allergen/ingredient caveat rather than
// a dish. matched case-insensitively as substrings.
var disclaimerPhrases = []string{
	"may contain",
	"contains traces",
	"processed in a facility",
	"manufactured in a facility",
	"shared equipment",
	"cross contamination",
	"nuts and peanuts are used",
	"nuts are used",
	"peanuts are used",
	"not analyzed",
}

var (
	nutMentionPattern  = regexp.MustCompile(`(?i)\b(peanut|peanuts|nut|nuts|tree[- ]?nut|almond|walnut|cashew|pecan)\b`)
	forwardVerbPattern = regexp.MustCompile(`(used|may|contain)`)
	asteriskPattern    = regexp.MustCompile(`^\*.*\*$`)
	timeHeaderPattern  = regexp.MustCompile(`(?i)\b(opens|starts|closes)\s+at\b`)
	headerCharsPattern = regexp.MustCompile(`^[A-Z0-9 '&\-/()]+$`)
	nonLetterPattern   = regexp.MustCompile(`[^A-Za-z]`)
	quotedPattern      = regexp.MustCompile(`"([^"]+)"`)
)

func isDisclaimer(text string) bool {
	if text == "" {
		return false
	}
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, phrase := range disclaimerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if nutMentionPattern.MatchString(trimmed) && forwardVerbPattern.MatchString(trimmed) {
		return true
	}
	return asteriskPattern.MatchString(trimmed)
}

func isTimeHeader(text string) bool {
	return timeHeaderPattern.MatchString(strings.TrimSpace(text))
}

// looksLikeHeader spots short all-caps section titles like "HOT LINE"
// or "GRILL SPECIALS". disclaimers and time headers are checked first
// by the caller's ordering, but guard anyway since the heuristics
// overlap on strings like "*NUTS*".
func looksLikeHeader(text string) bool {
	if text == "" {
		return false
	}
	if isDisclaimer(text) || isTimeHeader(text) {
		return false
	}
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)
	if len(words) <= 6 && headerCharsPattern.MatchString(trimmed) {
		return true
	}
	letters := nonLetterPattern.ReplaceAllString(text, "")
	return len(letters) > 0 && text == strings.ToUpper(text) && len(words) <= 5
}

// ParseTagList decodes a data attribute carrying a JSON-encoded string
// array. the page sometimes emits malformed values, in which case every
// double-quoted substring is pulled out as a best-effort tag list.
func ParseTagList(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags
	}
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(raw, -1) {
		out = append(out, m[1])
	}
	return out
}

// ClassifyStation turns a station's ordered line items into its menu
// node tree. the heuristic ordering is load-bearing: disclaimer, then
// time-header, then header, then item. two cursors track where the next
// line attaches.
func ClassifyStation(subtitle string, lines []Line) []*RawNode {
	var items []*RawNode

	var currentHeader *RawNode
	if subtitle != "" {
		currentHeader = &RawNode{
			Name:        subtitle,
			Type:        typeHeader,
			Items:       []*RawNode{},
			Disclaimers: []string{},
		}
		items = append(items, currentHeader)
	}

	var currentTimeHeader *RawNode

	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		hasLabels := len(line.Allergens) > 0 || len(line.Preferences) > 0

		if isDisclaimer(text) {
			// disclaimers attach to the innermost active grouping;
			// with no grouping active they are dropped entirely
			if currentTimeHeader != nil {
				currentTimeHeader.Disclaimers = append(currentTimeHeader.Disclaimers, text)
			} else if currentHeader != nil {
				currentHeader.Disclaimers = append(currentHeader.Disclaimers, text)
			}
			continue
		}

		if isTimeHeader(text) {
			currentTimeHeader = &RawNode{
				Name:        text,
				Type:        typeTimeHeader,
				Items:       []*RawNode{},
				Disclaimers: []string{},
			}
			if currentHeader != nil {
				currentHeader.Items = append(currentHeader.Items, currentTimeHeader)
			} else {
				items = append(items, currentTimeHeader)
			}
			continue
		}

		if !hasLabels && looksLikeHeader(text) {
			// headers never nest inside the previous header, and a new
			// header closes any open time window
			currentHeader = &RawNode{
				Name:        text,
				Type:        typeHeader,
				Items:       []*RawNode{},
				Disclaimers: []string{},
			}
			items = append(items, currentHeader)
			currentTimeHeader = nil
			continue
		}

		item := &RawNode{
			Name:        text,
			Type:        typeItem,
			Allergens:   line.Allergens,
			Preferences: line.Preferences,
		}
		if currentTimeHeader != nil {
			currentTimeHeader.Items = append(currentTimeHeader.Items, item)
		} else if currentHeader != nil {
			currentHeader.Items = append(currentHeader.Items, item)
		} else {
			items = append(items, item)
		}
	}

	return items
}
