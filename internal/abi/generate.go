package abi

import (
	"log/slog"

	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/materializer"
)

// Status codes returned across the boundary
const (
	StatusOK      int32 = 0
	StatusFailure int32 = 1
)

// Logger receives a debug line for each failed Generate call. The status
// code is all the caller sees.
var Logger = slog.New(slog.DiscardHandler)

// Generate decodes root, materializes it inside the directory named by the
// NUL-terminated dirPath, and reports success or failure.
func Generate(root *Node, dirPath *byte) int32 {
	return generate(filesystem.NewOSFileSystem(), root, dirPath)
}

func generate(fsys filesystem.FileSystem, root *Node, dirPath *byte) int32 {
	if dirPath == nil {
		Logger.Debug("Generate called without a directory.")
		return StatusFailure
	}
	dir := cString(dirPath)
	if dir == "" {
		Logger.Debug("Generate called with an empty directory.")
		return StatusFailure
	}

	node, err := Decode(root)
	if err != nil {
		Logger.Debug("Failed to decode configuration.", "dir", dir, "error", err)
		return StatusFailure
	}

	if _, err := materializer.New(fsys, materializer.WithLogger(Logger)).Materialize(node, dir); err != nil {
		Logger.Debug("Failed to materialize configuration.", "dir", dir, "error", err)
		return StatusFailure
	}
	return StatusOK
}
