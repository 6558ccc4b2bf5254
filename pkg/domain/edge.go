package domain

// Edge connects two nodes. Animated is derived render state: it is set by
// the projection layer while a run is flowing through the edge's target.
type Edge struct {
	ID       string `json:"id" yaml:"id"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Animated bool   `json:"animated,omitempty" yaml:"animated,omitempty"`
}
