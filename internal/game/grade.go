package game

// Grade classifies one evaluated input. The order is meaningful: a
// higher grade is a better hit.
type Grade int

const (
	Miss Grade = iota
	Good
	Great
	Perfect
)

func (g Grade) String() string {
	switch g {
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	}
	return "Miss"
}

// Score is the fixed point value awarded for a hit of this grade.
func (g Grade) Score() int {
	switch g {
	case Perfect:
		return 300
	case Great:
		return 200
	case Good:
		return 100
	}
	return 0
}
