package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/crossprint-mcp/internal/editor"
	"github.com/ironsheep/crossprint-mcp/internal/geometry"
	"github.com/ironsheep/crossprint-mcp/internal/imaging"
	"github.com/ironsheep/crossprint-mcp/internal/registry"
)

// errInvalidArguments marks tool arguments that could not be parsed or are
// missing required values. Such failures are reported as -32602.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_warp").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Results that carry a rendered image get an additional image content block
// ahead of the text block.
//
// Tool execution errors return a JSON-RPC error response with code -32000;
// unparseable arguments return -32602.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "err", err)
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{}
	if p, ok := result.(*previewResult); ok {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     p.ImageBase64,
			"mimeType": p.MimeType,
		})
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": mustMarshalJSON(result),
	})

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Loading and inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_preview":
		return s.handleImagePreview(args)
	case "image_describe":
		return s.handleImageDescribe(args)

	// Geometric edits
	case "image_warp":
		return s.handleImageWarp(args)
	case "image_warp_to_square":
		return s.handleImageWarpToSquare(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Binarization
	case "image_threshold":
		return s.handleImageThreshold(args)
	case "image_threshold_suggest":
		return s.handleImageThresholdSuggest(args)

	// Output
	case "image_export":
		return s.handleImageExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, tagging failures as invalid
// arguments. Missing arguments decode as an empty object. Each name in
// required must be present and non-null.
func decodeArgs(args json.RawMessage, v interface{}, required ...string) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if len(required) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	for _, name := range required {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("%w: %s is required", errInvalidArguments, name)
		}
	}
	return nil
}

// requireImageID lists the argument every per-image tool needs.
var requireImageID = []string{"image_id"}

// metaResult is returned by every editing tool.
type metaResult struct {
	ImageID registry.ID   `json:"image_id"`
	Meta    registry.Meta `json:"meta"`
}

type imageIDArgs struct {
	ImageID registry.ID `json:"image_id"`
}

// === Loading and Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
	Data string `json:"data"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	switch {
	case a.Path != "" && a.Data != "":
		return nil, fmt.Errorf("%w: give either path or data, not both", errInvalidArguments)
	case a.Path != "":
		return s.editor.LoadFile(a.Path)
	case a.Data != "":
		raw, err := decodeBase64(a.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: data is not valid base64: %v", errInvalidArguments, err)
		}
		return s.editor.Load(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("%w: path or data is required", errInvalidArguments)
	}
}

// decodeBase64 accepts plain base64 or a data URL.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

type previewResult struct {
	ImageID     registry.ID   `json:"image_id"`
	Meta        registry.Meta `json:"meta"`
	MimeType    string        `json:"mime_type"`
	ImageBase64 string        `json:"image_base64"`
}

type imagePreviewArgs struct {
	ImageID     registry.ID `json:"image_id"`
	GridSpacing int         `json:"grid_spacing"`
	GridLabels  bool        `json:"grid_labels"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := decodeArgs(args, &a, requireImageID...); err != nil {
		return nil, err
	}

	var (
		png []byte
		err error
	)
	if a.GridSpacing > 0 {
		png, err = s.editor.PreviewWithGrid(a.ImageID, imaging.GridOptions{
			Spacing: a.GridSpacing,
			Labels:  a.GridLabels,
		})
	} else {
		png, err = s.editor.Preview(a.ImageID)
	}
	if err != nil {
		return nil, err
	}

	meta, err := s.editor.Describe(a.ImageID)
	if err != nil {
		return nil, err
	}
	return &previewResult{
		ImageID:     a.ImageID,
		Meta:        meta,
		MimeType:    "image/png",
		ImageBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (s *Server) handleImageDescribe(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a, requireImageID...); err != nil {
		return nil, err
	}
	return s.editor.Inspect(a.ImageID)
}

// === Geometric Edit Handlers ===

type imageWarpArgs struct {
	ImageID registry.ID      `json:"image_id"`
	Points  []geometry.Point `json:"points"`
}

func (a imageWarpArgs) quad() ([4]geometry.Point, error) {
	var pts [4]geometry.Point
	if len(a.Points) != 4 {
		return pts, fmt.Errorf("%w: expected 4 points, got %d", errInvalidArguments, len(a.Points))
	}
	copy(pts[:], a.Points)
	return pts, nil
}

func (s *Server) handleImageWarp(args json.RawMessage) (interface{}, error) {
	var a imageWarpArgs
	if err := decodeArgs(args, &a, "image_id", "points"); err != nil {
		return nil, err
	}
	pts, err := a.quad()
	if err != nil {
		return nil, err
	}
	meta, err := s.editor.ApplyWarp(a.ImageID, pts)
	if err != nil {
		return nil, err
	}
	return metaResult{ImageID: a.ImageID, Meta: meta}, nil
}

func (s *Server) handleImageWarpToSquare(args json.RawMessage) (interface{}, error) {
	var a imageWarpArgs
	if err := decodeArgs(args, &a, "image_id", "points"); err != nil {
		return nil, err
	}
	pts, err := a.quad()
	if err != nil {
		return nil, err
	}
	meta, err := s.editor.ApplyWarpToSquare(a.ImageID, pts)
	if err != nil {
		return nil, err
	}
	return metaResult{ImageID: a.ImageID, Meta: meta}, nil
}

type imageCropArgs struct {
	ImageID registry.ID `json:"image_id"`
	editor.PreviewRect
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a, "image_id", "left", "top", "right", "bottom"); err != nil {
		return nil, err
	}
	meta, err := s.editor.ApplyCrop(a.ImageID, a.PreviewRect)
	if err != nil {
		return nil, err
	}
	return metaResult{ImageID: a.ImageID, Meta: meta}, nil
}

// === Binarization Handlers ===

type imageThresholdArgs struct {
	ImageID registry.ID `json:"image_id"`
	Method  string      `json:"method"`
	Value   *int        `json:"value"`
}

func (s *Server) handleImageThreshold(args json.RawMessage) (interface{}, error) {
	var a imageThresholdArgs
	if err := decodeArgs(args, &a, requireImageID...); err != nil {
		return nil, err
	}
	if a.Method == "" {
		a.Method = editor.MethodGlobal
	}
	value := 128
	if a.Value != nil {
		value = *a.Value
	}
	meta, err := s.editor.ApplyThreshold(a.ImageID, a.Method, value)
	if err != nil {
		return nil, err
	}
	return metaResult{ImageID: a.ImageID, Meta: meta}, nil
}

type thresholdSuggestResult struct {
	ImageID registry.ID `json:"image_id"`
	Method  string      `json:"method"`
	Level   uint8       `json:"level"`
}

func (s *Server) handleImageThresholdSuggest(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a, requireImageID...); err != nil {
		return nil, err
	}
	level, err := s.editor.SuggestThreshold(a.ImageID)
	if err != nil {
		return nil, err
	}
	return thresholdSuggestResult{ImageID: a.ImageID, Method: editor.MethodOtsu, Level: level}, nil
}

// === Output Handlers ===

type imageExportArgs struct {
	ImageID   registry.ID `json:"image_id"`
	Directory string      `json:"directory"`
}

type exportResult struct {
	ImageID registry.ID `json:"image_id"`
	Path    string      `json:"path"`
}

func (s *Server) handleImageExport(args json.RawMessage) (interface{}, error) {
	var a imageExportArgs
	if err := decodeArgs(args, &a, requireImageID...); err != nil {
		return nil, err
	}
	dir := a.Directory
	if dir == "" {
		dir = s.exportDir
	}
	path, err := s.editor.Export(a.ImageID, dir)
	if err != nil {
		return nil, err
	}
	return exportResult{ImageID: a.ImageID, Path: path}, nil
}
