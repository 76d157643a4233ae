package types

// Selection maps a variant option name to the chosen value identifier.
// It is embedded into cart items, order line items, and combination rules.
type Selection map[string]string

// Clone returns an independent copy so callers can mutate safely.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both selections contain exactly the same pairs.
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if other[k] != v {
			return false
		}
	}
	return true
}

// Contains reports whether every pair in sub is present in s.
func (s Selection) Contains(sub Selection) bool {
	for k, v := range sub {
		if s[k] != v {
			return false
		}
	}
	return true
}
