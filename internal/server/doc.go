// Package server implements the MCP (Model Context Protocol) server for
// straightening and cleaning up photographed puzzle grids.
//
// This package provides a JSON-RPC 2.0 server that exposes the editor
// operations through the MCP protocol. A client loads a photo, looks at the
// preview, names the four corners of the grid in preview pixels, and applies
// edits until the grid is square and binarized. The result is exported as PNG.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Loading and Inspection:
//   - image_load: Decode a file or base64 payload and register it
//   - image_preview: Render the preview as PNG, optionally with a coordinate grid
//   - image_describe: Report sizes, scale, layout and threshold cache state
//
// Geometric Edits:
//   - image_warp: Straighten a quad in place on the full canvas
//   - image_warp_to_square: Rectify a quad into a new square image
//   - image_crop: Keep an axis-aligned rectangle
//
// Binarization:
//   - image_threshold: Global or Otsu threshold against the cached base
//   - image_threshold_suggest: Report the Otsu level without editing
//
// Output:
//   - image_export: Write the full-resolution image to a PNG file
//
// # Coordinates
//
// Every coordinate a tool accepts is in preview pixels. The server converts
// to full-resolution pixels by dividing by the scale reported in each
// result's meta block.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or missing arguments, -32000 for any other
//     tool failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// A failed edit never changes the stored image.
//
// # Usage
//
//	reg := registry.New()
//	srv := server.New(editor.New(reg), server.WithExportDir("exports"))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
