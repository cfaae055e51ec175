package preset

import "strings"

// Merge returns local presets followed by community presets, each tagged with
// its source. Ids are unique in the result: the first entry holding an id
// keeps it, so local entries win, and every later holder (or an entry with
// no id) is renumbered with the -N suffix rule. Inputs are not modified.
func Merge(local, community []Preset) []Preset {
	out := make([]Preset, 0, len(local)+len(community))
	seen := make(map[string]bool, len(local)+len(community))
	taken := func(id string) bool { return seen[id] }

	add := func(p Preset, src Source) {
		p.Source = src
		if p.ID == "" || seen[p.ID] {
			base := p.ID
			if base == "" {
				base = p.Name
			}
			p.ID = UniqueID(base, taken)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	for _, p := range local {
		add(p, SourceLocal)
	}
	for _, p := range community {
		add(p, SourceCommunity)
	}
	return out
}

// AllCategories is the category that matches every preset.
const AllCategories = "All"

// Filter keeps presets whose name or description contains query (case
// insensitive) and whose category equals category. An empty query matches
// everything, as does an empty category or "All".
func Filter(list []Preset, query, category string) []Preset {
	q := strings.ToLower(query)
	out := make([]Preset, 0, len(list))
	for _, p := range list {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns "All" followed by each distinct non-empty category in
// first-seen order.
func Categories(list []Preset) []string {
	out := []string{AllCategories}
	seen := make(map[string]bool)
	for _, p := range list {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
