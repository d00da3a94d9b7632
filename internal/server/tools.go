package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var imageIDProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Image id returned by image_load",
	"minimum":     1,
}

var pointsProperty = map[string]interface{}{
	"type":        "array",
	"description": "Exactly four corner points in preview coordinates, in any order",
	"minItems":    4,
	"maxItems":    4,
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	},
}

func imageOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"image_id": imageIDProperty,
		},
		"required": []string{"image_id"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Loading and inspection
		{
			Name:        "image_load",
			Description: "Load an image from a file path or from base64 data (PNG, JPEG, GIF, BMP, TIFF, WebP). EXIF orientation is applied. Returns the image id and preview metadata; all later coordinates are in preview space.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes or a data URL, instead of path",
					},
				},
			},
		},
		{
			Name:        "image_preview",
			Description: "Return the current preview of an image as a base64-encoded PNG, with its metadata. Optionally overlay a coordinate grid labelled in preview coordinates to help pick corner points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Grid line spacing in preview pixels. 0 or omitted draws no grid",
						"default":     0,
					},
					"grid_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid intersections with their x,y coordinates",
						"default":     false,
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "image_describe",
			Description: "Describe an image: full-resolution width and height, channel layout, preview metadata, and whether a threshold base is cached.",
			InputSchema: imageOnlySchema(),
		},

		// Geometric edits
		{
			Name:        "image_warp",
			Description: "Straighten a distorted quadrilateral in place. The four points are mapped onto an axis-aligned square centred on their centroid and the whole canvas is reprojected; the image size is unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"points":   pointsProperty,
				},
				"required": []string{"image_id", "points"},
			},
		},
		{
			Name:        "image_warp_to_square",
			Description: "Replace the image with the region inside a quadrilateral, rectified into a square whose side is the mean edge length of the quadrilateral.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"points":   pointsProperty,
				},
				"required": []string{"image_id", "points"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop the image to an axis-aligned rectangle given in preview coordinates. The rectangle is clamped to the image and must leave at least 2x2 pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"left": map[string]interface{}{
						"type":        "number",
						"description": "Left edge X coordinate (preview space)",
					},
					"top": map[string]interface{}{
						"type":        "number",
						"description": "Top edge Y coordinate (preview space)",
					},
					"right": map[string]interface{}{
						"type":        "number",
						"description": "Right edge X coordinate (exclusive, preview space)",
					},
					"bottom": map[string]interface{}{
						"type":        "number",
						"description": "Bottom edge Y coordinate (exclusive, preview space)",
					},
				},
				"required": []string{"image_id", "left", "top", "right", "bottom"},
			},
		},

		// Binarization
		{
			Name:        "image_threshold",
			Description: "Binarize the image to black and white. Every threshold call starts from the same pre-threshold snapshot, so thresholds can be adjusted repeatedly without compounding; a warp or crop resets the snapshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"global", "otsu"},
						"description": "global uses value; otsu picks the level automatically",
						"default":     "global",
					},
					"value": map[string]interface{}{
						"type":        "integer",
						"description": "Intensity level for global; pixels >= value become white. Clamped to 0-255",
						"default":     128,
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "image_threshold_suggest",
			Description: "Compute the Otsu threshold level for an image without changing it. Useful as a starting value for image_threshold with method global.",
			InputSchema: imageOnlySchema(),
		},

		// Output
		{
			Name:        "image_export",
			Description: "Write the current full-resolution image as a lossless PNG named puzzle_<date>_<time>_<zone>.png and return its path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty,
					"directory": map[string]interface{}{
						"type":        "string",
						"description": "Output directory, created if missing. Defaults to the configured export directory",
					},
				},
				"required": []string{"image_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
