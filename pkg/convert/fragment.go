package convert

// Fragment is a piece of converted SQL text plus its conversion status.
// Fragments are transient: created and discarded within a single statement's
// conversion.
type Fragment struct {
	Text      string
	Converted bool
}

// Combine concatenates two fragments. The combined fragment is converted
// only when both operands are: one unconverted sub-expression poisons the
// whole containing statement, regardless of order.
func Combine(a, b Fragment) Fragment {
	return Fragment{
		Text:      a.Text + b.Text,
		Converted: a.Converted && b.Converted,
	}
}

// CombineAll reduces an ordered sequence of fragments left to right.
func CombineAll(frags []Fragment) Fragment {
	result := Fragment{Text: "", Converted: true}
	for _, f := range frags {
		result = Combine(result, f)
	}
	return result
}
