package domain

// Challenge carries the catalog text of one practice challenge.
type Challenge struct {
	ID          int      `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Hints       []string `json:"hints,omitempty" yaml:"hints"`
	HintIndex   int      `json:"-" yaml:"-"`
}

// NextHint returns the next available hint for the challenge.
// Returns empty string if no more hints are available.
func (c *Challenge) NextHint() string {
	if c.HintIndex >= len(c.Hints) {
		return ""
	}
	hint := c.Hints[c.HintIndex]
	c.HintIndex++
	return hint
}

// HasHints returns true if there are hints remaining.
func (c *Challenge) HasHints() bool {
	return c.HintIndex < len(c.Hints)
}

// ResetHints rewinds the hint cursor.
func (c *Challenge) ResetHints() {
	c.HintIndex = 0
}
