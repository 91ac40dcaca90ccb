// Package registry owns the fixed catalog of vpsbridge tools and dispatches
// invocations to their handlers.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vpsbridge/vpsbridge/internal/telemetry"
	"github.com/vpsbridge/vpsbridge/pkg/types"
)

// ParamType identifies the primitive type of a tool parameter.
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeNumber  ParamType = "number"
	ParamTypeBoolean ParamType = "boolean"
)

// ParamSpec declares a single tool parameter and its constraints.
// MinLength only applies to string parameters; 0 means unconstrained.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	MinLength   int
}

// Arguments holds the validated, typed arguments passed to a tool handler.
// Handlers never observe arguments that failed validation.
type Arguments map[string]any

// String returns the named argument as a string. Validation guarantees the
// type for declared string parameters, so the zero value is only returned
// for optional parameters that were omitted.
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Result is the uniform envelope produced by a tool handler: a sequence of
// content blocks, independent of the carrier the invocation arrived on.
type Result struct {
	Content []types.ContentBlock
}

// NewTextResult builds a Result with a single text content block.
func NewTextResult(text string) *Result {
	return &Result{
		Content: []types.ContentBlock{{Type: "text", Text: text}},
	}
}

// Handler executes one tool invocation. It receives arguments that have
// already been validated against the tool's ParamSpecs.
type Handler func(ctx context.Context, args Arguments) (*Result, error)

// ToolDefinition describes one registered tool. Definitions are immutable
// once registered.
type ToolDefinition struct {
	Name        string
	Description string
	Params      []ParamSpec
	Handler     Handler
}

// ToolInfo is the discovery view of a registered tool.
type ToolInfo struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// InvocationObserver gets notified after every dispatch, successful or not.
// Observers run on the request goroutine and must not block for long.
type InvocationObserver func(ctx context.Context, tool string, args Arguments, err error, elapsed time.Duration)

// Config holds the dependencies of a Registry.
type Config struct {
	// Metrics records per-invocation telemetry. Defaults to a no-op
	// implementation when nil.
	Metrics telemetry.CustomMetrics

	// Observers are invoked after each dispatch (used for audit logging).
	Observers []InvocationObserver
}

// Registry is the catalog of tools. The set is fixed at process start; after
// that only read operations (List, Dispatch) are exercised.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*ToolDefinition
	order []string

	metrics   telemetry.CustomMetrics
	observers []InvocationObserver
}

// NewRegistry creates an empty Registry.
func NewRegistry(c *Config) *Registry {
	if c == nil {
		c = &Config{}
	}
	metrics := c.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}
	return &Registry{
		defs:      make(map[string]*ToolDefinition),
		metrics:   metrics,
		observers: c.Observers,
	}
}

// Register adds a tool definition to the catalog.
// It returns a DuplicateToolError if a tool with the same name already exists.
func (r *Registry) Register(def *ToolDefinition) error {
	if def == nil {
		return fmt.Errorf("tool definition must not be nil")
	}
	if def.Name == "" {
		return fmt.Errorf("tool definition must have a name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q must have a handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return &DuplicateToolError{Name: def.Name}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// List returns the full catalog in registration order. The order is stable
// across calls within one process lifetime.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		infos = append(infos, ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			Params:      def.Params,
		})
	}
	return infos
}

// Get returns the definition for the given tool name.
func (r *Registry) Get(name string) (*ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Dispatch looks up the named tool, validates rawArgs against its declared
// schema and runs its handler. Validation happens strictly before the
// handler runs. Handler errors are propagated, never swallowed.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs map[string]any) (*Result, error) {
	started := time.Now()
	outcome := telemetry.ToolCallOutcomeError

	def, ok := r.Get(name)
	if !ok {
		err := &UnknownToolError{Name: name}
		r.metrics.RecordToolCall(ctx, name, outcome, time.Since(started))
		return nil, err
	}

	args, err := validateArguments(def, rawArgs)
	if err == nil {
		var res *Result
		res, err = def.Handler(ctx, args)
		if err == nil {
			outcome = telemetry.ToolCallOutcomeSuccess
			r.metrics.RecordToolCall(ctx, name, outcome, time.Since(started))
			r.notifyObservers(ctx, name, args, nil, time.Since(started))
			return res, nil
		}
	}

	r.metrics.RecordToolCall(ctx, name, outcome, time.Since(started))
	r.notifyObservers(ctx, name, args, err, time.Since(started))
	return nil, err
}

func (r *Registry) notifyObservers(ctx context.Context, tool string, args Arguments, err error, elapsed time.Duration) {
	for _, o := range r.observers {
		o(ctx, tool, args, err, elapsed)
	}
}

// validateArguments checks rawArgs against the tool's declared parameters.
// It fails fast on the first violated constraint and returns only the
// declared parameters, so handlers never see undeclared input.
func validateArguments(def *ToolDefinition, rawArgs map[string]any) (Arguments, error) {
	args := make(Arguments, len(def.Params))

	for _, p := range def.Params {
		raw, present := rawArgs[p.Name]
		if !present {
			if p.Required {
				return nil, &InvalidArgumentsError{
					Tool:   def.Name,
					Reason: fmt.Sprintf("missing required parameter %q", p.Name),
				}
			}
			continue
		}

		switch p.Type {
		case ParamTypeString:
			s, ok := raw.(string)
			if !ok {
				return nil, &InvalidArgumentsError{
					Tool:   def.Name,
					Reason: fmt.Sprintf("parameter %q must be a string", p.Name),
				}
			}
			if p.MinLength > 0 && len(s) < p.MinLength {
				reason := fmt.Sprintf("parameter %q must be at least %d characters long", p.Name, p.MinLength)
				if p.MinLength == 1 {
					reason = fmt.Sprintf("parameter %q must not be empty", p.Name)
				}
				return nil, &InvalidArgumentsError{Tool: def.Name, Reason: reason}
			}
			args[p.Name] = s
		case ParamTypeNumber:
			switch n := raw.(type) {
			case float64:
				args[p.Name] = n
			case int:
				args[p.Name] = float64(n)
			case int64:
				args[p.Name] = float64(n)
			default:
				return nil, &InvalidArgumentsError{
					Tool:   def.Name,
					Reason: fmt.Sprintf("parameter %q must be a number", p.Name),
				}
			}
		case ParamTypeBoolean:
			b, ok := raw.(bool)
			if !ok {
				return nil, &InvalidArgumentsError{
					Tool:   def.Name,
					Reason: fmt.Sprintf("parameter %q must be a boolean", p.Name),
				}
			}
			args[p.Name] = b
		default:
			return nil, &InvalidArgumentsError{
				Tool:   def.Name,
				Reason: fmt.Sprintf("parameter %q has unsupported type %q", p.Name, p.Type),
			}
		}
	}

	return args, nil
}
