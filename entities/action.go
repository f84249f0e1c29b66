package entities

// Action is what the synchronizer did with a destination file
type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionSkipped    Action = "skipped"
	ActionBackfilled Action = "backfilled"
)

// Actions lists every action in report order
var Actions = []Action{ActionCreated, ActionUpdated, ActionBackfilled, ActionSkipped}

func (a Action) String() string {
	return string(a)
}

// MatchRule identifies which resolver rule produced the index keys
type MatchRule string

const (
	MatchNone       MatchRule = "none"
	MatchAlias      MatchRule = "alias"
	MatchExact      MatchRule = "exact"
	MatchNormalized MatchRule = "normalized"
	MatchSubstring  MatchRule = "substring"
)

// Outcome records what happened to one presentation during a run
type Outcome struct {
	Presentation Presentation
	Action       Action
	Rule         MatchRule
	Keys         []string
	ItemCount    int
	Path         string
	Err          error
}

// Matched reports whether any index key was found for the presentation
func (o Outcome) Matched() bool {
	return len(o.Keys) > 0
}
