package registry

import "fmt"

// DuplicateToolError is returned by Register when a tool with the same name
// already exists in the registry.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownToolError is returned by Dispatch when the requested tool name does
// not resolve to a registered definition.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool not found: %q", e.Name)
}

// InvalidArgumentsError is returned by Dispatch when the raw arguments
// violate the tool's declared parameter schema. Reason describes the first
// violated constraint.
type InvalidArgumentsError struct {
	Tool   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Reason)
}
