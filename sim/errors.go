package sim

import "fmt"

// ConfigurationError reports an invalid construction parameter.
// Returned by Config.Validate and NewEngine; no engine exists when it is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// OccupiedCellError is returned when placing into a cell that already holds an agent.
// Under correct engine logic it never occurs; the engine treats it as a corrupted
// data model and panics with it rather than retrying.
type OccupiedCellError struct {
	Pos      Position
	Occupant AgentID
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("cell %v already occupied by agent %d", e.Pos, e.Occupant)
}

// OutOfBoundsError is returned for coordinates outside the lattice.
type OutOfBoundsError struct {
	Pos           Position
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position %v outside %dx%d grid", e.Pos, e.Width, e.Height)
}
