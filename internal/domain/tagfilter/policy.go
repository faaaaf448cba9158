package tagfilter

import "fmt"

// EmptyPolicy decides visibility while no tag is required.
type EmptyPolicy int

const (
	// HideAll hides every candidate until a tag is required.
	HideAll EmptyPolicy = iota
	// ShowAll shows every candidate until a tag is required.
	ShowAll
)

// String returns the config spelling of the policy.
func (p EmptyPolicy) String() string {
	switch p {
	case ShowAll:
		return "show_all"
	default:
		return "hide_all"
	}
}

// ParseEmptyPolicy parses "hide_all" or "show_all". Empty input means HideAll.
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch s {
	case "", "hide_all":
		return HideAll, nil
	case "show_all":
		return ShowAll, nil
	default:
		return HideAll, fmt.Errorf("unknown empty filter policy %q (want hide_all or show_all)", s)
	}
}
