package thermal

import "fmt"

// Case selects which coupling profile drives a run.
type Case int

const (
	CaseUnknown Case = iota
	CasePassive
	CaseForced
)

// Cases returns every runnable case in comparison order.
func Cases() []Case {
	return []Case{CasePassive, CaseForced}
}

func (c Case) Valid() bool {
	return c == CasePassive || c == CaseForced
}

func (c Case) String() string {
	switch c {
	case CasePassive:
		return "passive"
	case CaseForced:
		return "forced"
	default:
		return "unknown"
	}
}

func ParseCase(s string) (Case, error) {
	switch s {
	case "passive", "natural", "1":
		return CasePassive, nil
	case "forced", "2":
		return CaseForced, nil
	default:
		return CaseUnknown, fmt.Errorf("%w: %q", ErrInvalidCase, s)
	}
}

func (c Case) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCase, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Case) UnmarshalText(b []byte) error {
	parsed, err := ParseCase(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
