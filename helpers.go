package main

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/averey/spyglass/internal/logger"
	"github.com/averey/spyglass/internal/objstore"
)

// copyToClipboard puts a detail value on the system clipboard and reports the
// result in the status bar.
func (m *model) copyToClipboard(name, value string) {
	if err := clipboard.WriteAll(value); err != nil {
		logger.Error("Failed to copy %s to clipboard: %v", name, err)
		m.setStatus("Clipboard unavailable: %v", err)
		return
	}
	m.setStatus("Copied %s to clipboard", name)
}

// formatSize renders a byte count with binary suffixes, one decimal place
// above 1 KiB.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// totalSize sums the enumerated sizes ahead of a bulk download confirm.
func totalSize(objs []objstore.DownloadObjectInfo) int64 {
	var total int64
	for _, o := range objs {
		total += o.Size
	}
	return total
}
