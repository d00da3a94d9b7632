// Package imaging provides the raster operators behind crossprint: perspective
// warps, axis-aligned crops, binarization, and the decode/encode/resize
// helpers the registry builds on.
//
// All operators are pure functions. They never modify their input and always
// return a freshly allocated image, so callers can build a complete
// replacement before committing it anywhere.
//
// # Channel Layout
//
// Operators accept any image.Image and work on one of two layouts:
//   - *image.Gray for single-channel data (binarized output, grayscale scans)
//   - *image.NRGBA for everything else (8-bit, non-premultiplied)
//
// A single-channel input stays single-channel through warps and crops.
// Thresholding always returns *image.Gray. Every returned image has its
// origin at (0,0).
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. When resampling, pixel
// centres sit on integer coordinates, so mapping (x,y) to itself reads the
// pixel at (x,y) exactly.
//
// # Intensity
//
// Conversion from colour to intensity uses ITU-R BT.601 luminance weights
// (0.299*R + 0.587*G + 0.114*B) in 16-bit fixed point with rounding. Alpha is
// ignored.
//
// # Error Handling
//
// Operator failures wrap one of the package sentinels (ErrInvalidCrop,
// ErrInvalidThreshold, ErrDecode) or the geometry sentinels
// (geometry.ErrDegenerateQuad, geometry.ErrHomographyEstimation). Check them
// with errors.Is.
package imaging
