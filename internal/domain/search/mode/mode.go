package mode

// Mode is the result ordering requested by the caller.
type Mode string

// Sort mode constants.
const (
	// Default orders by score, ties broken by title.
	Default Mode = "default"
	// Relevance orders strictly by score; equal scores keep match order.
	Relevance Mode = "relevance"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Default || m == Relevance
}
