// Package tools defines the fixed vpsbridge tool catalog: four remote
// operations, each backed by a single call to the upstream VPS agent.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/vpsbridge/vpsbridge/internal/registry"
)

// Tool names as advertised to protocol callers.
const (
	ToolRunCommand    = "vps_run_command"
	ToolListDirectory = "vps_list_directory"
	ToolReadFile      = "vps_read_file"
	ToolWriteFile     = "vps_write_file"
)

// emptyMarker is rendered in place of a blank stdout or stderr stream.
const emptyMarker = "[empty]"

// Caller is the backend surface the tool handlers depend on.
// *backend.Client satisfies it; tests substitute stubs.
type Caller interface {
	Call(ctx context.Context, path string, body map[string]any) (map[string]any, error)
}

// RegisterAll registers the full tool catalog on reg, in its fixed order.
func RegisterAll(reg *registry.Registry, b Caller) error {
	for _, def := range Definitions(b) {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", def.Name, err)
		}
	}
	return nil
}

// Definitions returns the tool catalog bound to the given backend.
// The returned order is the catalog's canonical order.
func Definitions(b Caller) []*registry.ToolDefinition {
	return []*registry.ToolDefinition{
		{
			Name:        ToolRunCommand,
			Description: "Run a shell command on the remote VPS and return its output",
			Params: []registry.ParamSpec{
				{Name: "cmd", Type: registry.ParamTypeString, Description: "Shell command to execute", Required: true, MinLength: 1},
			},
			Handler: runCommandHandler(b),
		},
		{
			Name:        ToolListDirectory,
			Description: "List the contents of a directory on the remote VPS",
			Params: []registry.ParamSpec{
				{Name: "path", Type: registry.ParamTypeString, Description: "Absolute path of the directory to list", Required: true, MinLength: 1},
			},
			Handler: listDirectoryHandler(b),
		},
		{
			Name:        ToolReadFile,
			Description: "Read a file from the remote VPS",
			Params: []registry.ParamSpec{
				{Name: "path", Type: registry.ParamTypeString, Description: "Absolute path of the file to read", Required: true, MinLength: 1},
			},
			Handler: readFileHandler(b),
		},
		{
			Name:        ToolWriteFile,
			Description: "Write content to a file on the remote VPS",
			Params: []registry.ParamSpec{
				{Name: "path", Type: registry.ParamTypeString, Description: "Absolute path of the file to write", Required: true, MinLength: 1},
				{Name: "content", Type: registry.ParamTypeString, Description: "Content to write to the file", Required: true},
			},
			Handler: writeFileHandler(b),
		},
	}
}

func runCommandHandler(b Caller) registry.Handler {
	return func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
		cmd := args.String("cmd")
		payload, err := b.Call(ctx, "/run", map[string]any{"cmd": cmd})
		if err != nil {
			return nil, err
		}
		text := renderOutcome(
			"$ "+cmd,
			stringField(payload, "stdout"),
			stringField(payload, "stderr"),
		)
		return registry.NewTextResult(text), nil
	}
}

func listDirectoryHandler(b Caller) registry.Handler {
	return func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
		path := args.String("path")
		payload, err := b.Call(ctx, "/ls", map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		text := renderOutcome("Path: "+path, formatFileList(payload), "")
		return registry.NewTextResult(text), nil
	}
}

func readFileHandler(b Caller) registry.Handler {
	return func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
		path := args.String("path")
		payload, err := b.Call(ctx, "/read", map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		text := renderOutcome("Path: "+path, stringField(payload, "content"), "")
		return registry.NewTextResult(text), nil
	}
}

func writeFileHandler(b Caller) registry.Handler {
	return func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
		path := args.String("path")
		payload, err := b.Call(ctx, "/write", map[string]any{
			"path":    path,
			"content": args.String("content"),
		})
		if err != nil {
			return nil, err
		}
		text := renderOutcome(
			"Path: "+path,
			stringField(payload, "stdout"),
			stringField(payload, "stderr"),
		)
		return registry.NewTextResult(text), nil
	}
}

// renderOutcome renders a successful backend call into the uniform text
// shape shared by all four tools. Blank streams render as [empty].
func renderOutcome(header, stdout, stderr string) string {
	if stdout == "" {
		stdout = emptyMarker
	}
	if stderr == "" {
		stderr = emptyMarker
	}
	return fmt.Sprintf("%s\nStatus: success\n\nSTDOUT:\n%s\n\nSTDERR:\n%s", header, stdout, stderr)
}

// stringField returns the named string field from a backend payload,
// substituting an empty string when the field is absent or not a string.
func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// formatFileList renders the backend's `files` array as one line per entry.
// Entries missing a type are listed as plain files.
func formatFileList(payload map[string]any) string {
	rawFiles, _ := payload["files"].([]any)
	lines := make([]string, 0, len(rawFiles))
	for _, rf := range rawFiles {
		f, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(f, "name")
		typ := stringField(f, "type")
		if typ == "" {
			typ = "file"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", typ, name))
	}
	return strings.Join(lines, "\n")
}
