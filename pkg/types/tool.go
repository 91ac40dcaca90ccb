package types

// ToolInputSchema is the JSON schema advertised for a tool's input parameters.
// Every parameter of the fixed vpsbridge toolset is typed as "string".
type ToolInputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// Tool describes one entry of the tool catalog as returned by the REST API.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"input_schema"`
}

// InvokeToolRequest is the request body for invoking a tool over the REST API.
type InvokeToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ContentBlock is a single block of a tool result. The fixed toolset only
// ever produces blocks of type "text".
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolInvokeResult is the uniform envelope returned for a tool invocation.
// It is designed to be passed down to the end user.
type ToolInvokeResult struct {
	IsError bool           `json:"isError,omitempty"`
	Content []ContentBlock `json:"content"`
}

// ServerMetadata holds static identity information about a vpsbridge server.
type ServerMetadata struct {
	Version string `json:"version"`
}
