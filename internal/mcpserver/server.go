// Package mcpserver exposes a read-only MCP surface over the
// libraries a project configures: build status, resolved function
// symbols, and parsed signatures, without ever triggering a build or
// a harness synthesis (spec.md SPEC_FULL §11.6), grounded on the
// teacher's internal/mcp package (mcp.NewServer, AddTool, JSON-schema
// described tool inputs).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sputniklab/sputnik/internal/library"
	"github.com/sputniklab/sputnik/internal/signature"
)

// Server wraps the loaded libraries a project names and the MCP
// server that answers queries about them.
type Server struct {
	server *mcp.Server
	libs   map[string]*library.Library
}

// New loads every library at libPaths and attaches the MCP tool
// handlers. Each library's build state is reloaded from disk (never
// rebuilt) so queries reflect whatever the last `sputnik prebuild`
// produced.
func New(libPaths []string) (*Server, error) {
	libs := make(map[string]*library.Library, len(libPaths))
	for _, p := range libPaths {
		lib, err := library.Load(p)
		if err != nil {
			return nil, err
		}
		if err := lib.State.Reload(); err != nil {
			return nil, err
		}
		libs[lib.Name] = lib
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "sputnik-mcp-server",
			Version: "0.1.0",
		}, nil),
		libs: libs,
	}
	s.registerTools()

	return s, nil
}

// Run blocks, serving MCP requests over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "list_libraries",
		Description: "List every library configured for this project, with its source root and whether it has a built target blob.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleListLibraries)

	s.server.AddTool(&mcp.Tool{
		Name:        "resolve_function",
		Description: "Resolve a function name to its post-rename symbol in a given library. Returns name suggestions when the function is not found.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"library": {
					Type:        "string",
					Description: "Library name, as given in its config.json",
				},
				"function": {
					Type:        "string",
					Description: "Function name to resolve",
				},
			},
			Required: []string{"library", "function"},
		},
	}, s.handleResolveFunction)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_signature",
		Description: "Parse (or fetch from the system man pages) the C signature of a function.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"function": {
					Type:        "string",
					Description: "Function name",
				},
				"array_width": {
					Type:        "integer",
					Description: "Default array width substituted for unsized array parameters (defaults to 8)",
				},
			},
			Required: []string{"function"},
		},
	}, s.handleGetSignature)

	s.server.AddTool(&mcp.Tool{
		Name:        "build_status",
		Description: "Report whether a library's build directory and target blob are present.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"library": {
					Type:        "string",
					Description: "Library name, as given in its config.json",
				},
			},
			Required: []string{"library"},
		},
	}, s.handleBuildStatus)
}

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal mcp response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	res, marshalErr := textResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	res.IsError = true
	return res, nil
}

type libraryInfo struct {
	Name       string `json:"name"`
	SourceRoot string `json:"source_root"`
	BuildDir   string `json:"build_dir"`
	Built      bool   `json:"built"`
}

func (s *Server) handleListLibraries(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := make([]libraryInfo, 0, len(s.libs))
	for _, lib := range s.libs {
		_, err := os.Stat(lib.TargetBlob)
		infos = append(infos, libraryInfo{
			Name:       lib.Name,
			SourceRoot: lib.SourceRoot,
			BuildDir:   lib.BuildDir,
			Built:      err == nil,
		})
	}
	return textResult(map[string]interface{}{"libraries": infos})
}

type resolveFunctionParams struct {
	Library  string `json:"library"`
	Function string `json:"function"`
}

func (s *Server) handleResolveFunction(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params resolveFunctionParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("resolve_function", fmt.Errorf("invalid parameters: %w", err))
	}

	lib, ok := s.libs[params.Library]
	if !ok {
		return errorResult("resolve_function", fmt.Errorf("unknown library %q", params.Library))
	}

	resolved, ok := lib.ResolveFunction(params.Function)
	if ok {
		return textResult(map[string]interface{}{
			"library":  params.Library,
			"function": params.Function,
			"resolved": resolved,
		})
	}

	candidates := make([]string, 0, len(lib.State.RenameMap))
	for k := range lib.State.RenameMap {
		candidates = append(candidates, trimAt(k))
	}

	return textResult(map[string]interface{}{
		"library":     params.Library,
		"function":    params.Function,
		"resolved":    nil,
		"suggestions": library.TopSuggestions(params.Function, candidates, 5),
	})
}

func trimAt(s string) string {
	if len(s) > 0 && s[0] == '@' {
		return s[1:]
	}
	return s
}

type getSignatureParams struct {
	Function   string `json:"function"`
	ArrayWidth int    `json:"array_width"`
}

func (s *Server) handleGetSignature(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params getSignatureParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("get_signature", fmt.Errorf("invalid parameters: %w", err))
	}

	width := params.ArrayWidth
	if width <= 0 {
		width = 8
	}

	sig, err := signature.FetchSignature(ctx, params.Function, width)
	if err != nil {
		return errorResult("get_signature", err)
	}

	return textResult(map[string]interface{}{
		"function":  params.Function,
		"signature": sig,
	})
}

type buildStatusParams struct {
	Library string `json:"library"`
}

func (s *Server) handleBuildStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params buildStatusParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("build_status", fmt.Errorf("invalid parameters: %w", err))
	}

	lib, ok := s.libs[params.Library]
	if !ok {
		return errorResult("build_status", fmt.Errorf("unknown library %q", params.Library))
	}

	info, err := os.Stat(lib.TargetBlob)
	built := err == nil

	resp := map[string]interface{}{
		"library":     params.Library,
		"build_dir":   lib.BuildDir,
		"target_blob": lib.TargetBlob,
		"built":       built,
	}
	if built {
		resp["last_built"] = info.ModTime()
	}

	return textResult(resp)
}
