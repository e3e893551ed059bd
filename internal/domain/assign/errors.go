package assign

import "errors"

// Sentinel kinds for recommendation errors.
var (
	ErrNoRequiredSkills = errors.New("task must have required skills to generate recommendations")
)
