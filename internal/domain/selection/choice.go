package selection

// Choice is either exactly one candidate or none.
type Choice struct {
	index int
	ref   string
	set   bool
}

// None returns the empty choice.
func None() Choice { return Choice{index: -1} }

// Chosen returns a choice of the candidate at index.
func Chosen(index int, ref string) Choice {
	return Choice{index: index, ref: ref, set: true}
}

// IsNone reports whether nothing is chosen.
func (c Choice) IsNone() bool { return !c.set }

// Index returns the chosen candidate index, or -1.
func (c Choice) Index() int {
	if !c.set {
		return -1
	}
	return c.index
}

// Ref returns the chosen candidate reference, or "".
func (c Choice) Ref() string { return c.ref }
