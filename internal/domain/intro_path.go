package domain

// IntroPath is a recommended warm-introduction route from someone the
// requester already knows to a target person.
type IntroPath struct {
	Path          []Node     `json:"path"`
	Relationships []EdgeType `json:"relationships"`
	Strength      int        `json:"strength"`
	Suggestion    string     `json:"suggestion"`
}

// Hops returns the number of edges along the path.
func (p IntroPath) Hops() int {
	return len(p.Relationships)
}

// NodeIDs returns the ids of the path nodes in order.
func (p IntroPath) NodeIDs() []string {
	return NodeIDs(p.Path)
}

// IntroPathQuery requests an introduction route for an owner.
type IntroPathQuery struct {
	OwnerID        string `json:"ownerId" validate:"required"`
	TargetPersonID string `json:"targetPersonId" validate:"required"`
	MaxHops        int    `json:"maxHops"`
}

// IntroPathResult is the outcome of a successful search.
type IntroPathResult struct {
	Recommended  IntroPath   `json:"recommended"`
	Alternatives []IntroPath `json:"alternatives,omitempty"`
}
