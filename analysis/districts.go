package analysis

import (
	"fmt"
	"sort"

	"silicorex/datasets"
	"silicorex/translations"
)

// Resolver maps between canonical district names and their display form.
//
// The canonical set is the rainfall districts that also have an entry in the
// localization table. A district missing from either is not offered, even
// when the boiler or road data has it.
type Resolver struct {
	canonical []string
	known     map[string]bool
	toLocal   map[string]string
	fromLocal map[string]string
}

// NewResolver computes the canonical set from the rainfall table.
func NewResolver(rainfall *datasets.Table, localization map[string]string) *Resolver {
	r := &Resolver{
		known:     make(map[string]bool),
		toLocal:   make(map[string]string, len(localization)),
		fromLocal: make(map[string]string, len(localization)),
	}
	for en, local := range localization {
		r.toLocal[en] = local
		r.fromLocal[local] = en
	}

	col := rainfall.Column(datasets.RainfallDistrictColumn)
	if col >= 0 {
		for _, row := range rainfall.Rows {
			if col >= len(row) {
				continue
			}
			name := row[col]
			if r.known[name] {
				continue
			}
			if _, ok := r.toLocal[name]; !ok {
				continue
			}
			r.known[name] = true
			r.canonical = append(r.canonical, name)
		}
	}
	sort.Strings(r.canonical)
	return r
}

// Canonical returns the analysable districts in canonical spelling.
func (r *Resolver) Canonical() []string {
	out := make([]string, len(r.canonical))
	copy(out, r.canonical)
	return out
}

// AvailableDistricts returns display names for locale, ordered by the
// canonical spelling.
func (r *Resolver) AvailableDistricts(locale string) []string {
	if locale == translations.DefaultLocale {
		return r.Canonical()
	}
	out := make([]string, 0, len(r.canonical))
	for _, name := range r.canonical {
		out = append(out, r.toLocal[name])
	}
	return out
}

// Resolve maps a display name back to its canonical district. Matching is
// exact.
func (r *Resolver) Resolve(displayName, locale string) (string, error) {
	canonical := displayName
	if locale != translations.DefaultLocale {
		en, ok := r.fromLocal[displayName]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnresolvable, displayName)
		}
		canonical = en
	}
	if !r.known[canonical] {
		return "", fmt.Errorf("%w: %q", ErrUnresolvable, displayName)
	}
	return canonical, nil
}

// Display returns the display name of a canonical district for locale.
func (r *Resolver) Display(canonical, locale string) string {
	if locale == translations.DefaultLocale {
		return canonical
	}
	if local, ok := r.toLocal[canonical]; ok {
		return local
	}
	return canonical
}
