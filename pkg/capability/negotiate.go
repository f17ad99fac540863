package capability

import "fmt"

// ValidateConfigure checks a Set Configuration request against the
// categories an endpoint advertises. Every requested capability's category
// must be advertised. Order does not matter and duplicate categories in
// requested are allowed, since configure replaces the whole configuration.
func ValidateConfigure(advertised []Category, requested []Capability) error {
	allowed := make(map[Category]struct{}, len(advertised))
	for _, c := range advertised {
		allowed[c] = struct{}{}
	}
	for _, c := range requested {
		if _, ok := allowed[c.Category()]; !ok {
			return fmt.Errorf("%w: %s not advertised", ErrOutOfRange, c.Category())
		}
	}
	return nil
}

// IsApplication reports whether c may be changed by Reconfigure.
func IsApplication(c Capability) bool {
	return c.Category().IsApplication()
}

// ValidateReconfigure checks that every update is an application capability.
func ValidateReconfigure(updates []Capability) error {
	for _, c := range updates {
		if !IsApplication(c) {
			return fmt.Errorf("%w: %s is not reconfigurable", ErrOutOfRange, c.Category())
		}
	}
	return nil
}

// Merge applies updates to existing by category. Entries of existing whose
// category appears in updates are removed, then all updates are appended.
// Categories not mentioned in updates keep their entries and position.
// Neither input is modified and the appended updates are deep copies.
func Merge(existing, updates []Capability) []Capability {
	replaced := make(map[Category]struct{}, len(updates))
	for _, u := range updates {
		replaced[u.Category()] = struct{}{}
	}

	out := make([]Capability, 0, len(existing)+len(updates))
	for _, c := range existing {
		if _, ok := replaced[c.Category()]; !ok {
			out = append(out, c)
		}
	}
	return append(out, Clone(updates)...)
}
