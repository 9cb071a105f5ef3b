package gcode

// Command types beyond the G/M/T letters
const (
	TypeSystem byte = '$' // GRBL system command, e.g. $H
	TypeStatus byte = '?' // GRBL status query
)

// Command represents a parsed input line
type Command struct {
	Type       byte             // 'G', 'M', 'T', TypeSystem, TypeStatus, or 0 for a comment
	Number     int              // Command number (e.g., 0 for G0, 28 for G28)
	System     string           // Upper-cased text after '$'
	Parameters map[byte]float64 // Parameters (X, Y, Z, P, S, etc.)
	Comment    string           // Comment text
}

// HasParameter checks if a parameter exists in the command
func (cmd *Command) HasParameter(param byte) bool {
	_, ok := cmd.Parameters[param]
	return ok
}

// GetParameter gets a parameter value, or returns the default if not present
func (cmd *Command) GetParameter(param byte, defaultValue float64) float64 {
	if val, ok := cmd.Parameters[param]; ok {
		return val
	}
	return defaultValue
}
