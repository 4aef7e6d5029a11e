package main

import (
	"context"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/averey/spyglass/internal/logger"
	"github.com/averey/spyglass/internal/objstore"
)

// loadObjects lists one directory level. Bumping the generation counter here
// makes every in-flight listing or enumeration stale the moment a new
// navigation starts.
func (m *model) loadObjects(key objstore.ObjectKey) tea.Cmd {
	m.loadSeq++
	m.loading = true
	seq := m.loadSeq
	client := m.client
	return func() tea.Msg {
		items, err := client.List(context.Background(), key.Bucket, key.JoinedPath(true))
		if err != nil {
			logger.Error("List %s failed: %v", key.URI(), err)
		}
		return objectsLoadedMsg{seq: seq, key: key, items: items, err: err}
	}
}

// enumerateObjects walks every descendant of a directory ahead of a bulk
// download. The result is only meaningful for the page it started on, so it
// carries the current generation without bumping it.
func (m *model) enumerateObjects(key objstore.ObjectKey, name string, downloadAs bool) tea.Cmd {
	seq := m.loadSeq
	client := m.client
	return func() tea.Msg {
		objs, err := client.ListAllDescendants(context.Background(), key.Bucket, key.JoinedPath(true))
		if err != nil {
			logger.Error("Enumerate %s failed: %v", key.URI(), err)
		}
		return downloadListMsg{
			seq:        seq,
			key:        key,
			name:       name,
			objs:       objs,
			downloadAs: downloadAs,
			err:        err,
		}
	}
}

// downloadObject fetches a single object into the download directory under
// the given local name.
func (m *model) downloadObject(key objstore.ObjectKey, name string) tea.Cmd {
	client := m.client
	dest := filepath.Join(m.cfg.DownloadDir, name)
	return func() tea.Msg {
		err := client.Download(context.Background(), key.Bucket, key.JoinedPath(false), dest)
		if err != nil {
			logger.Error("Download %s failed: %v", key.URI(), err)
		}
		return downloadCompleteMsg{name: name, count: 1, err: err}
	}
}

// downloadObjects fetches an enumerated directory into downloadDir/dir,
// recreating the key hierarchy below the prefix. Individual failures are
// collected rather than aborting the batch.
func (m *model) downloadObjects(prefix objstore.ObjectKey, dir string, objs []objstore.DownloadObjectInfo) tea.Cmd {
	client := m.client
	bucket := prefix.Bucket
	keyPrefix := prefix.JoinedPath(true)
	base := filepath.Join(m.cfg.DownloadDir, dir)
	return func() tea.Msg {
		var failed []string
		count := 0
		for _, obj := range objs {
			rel := strings.TrimPrefix(obj.Key, keyPrefix)
			dest := filepath.Join(base, filepath.FromSlash(rel))
			if err := client.Download(context.Background(), bucket, obj.Key, dest); err != nil {
				logger.Error("Download %s failed: %v", obj.Key, err)
				failed = append(failed, obj.Key)
				continue
			}
			count++
		}
		return downloadCompleteMsg{name: dir, count: count, failed: failed}
	}
}

// pasteObject performs the server-side copy behind the paste confirm dialog.
func (m *model) pasteObject(spec objstore.PasteSpec) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.Copy(context.Background(), spec)
		if err != nil {
			logger.Error("Copy %s/%s -> %s/%s failed: %v",
				spec.SrcBucket, spec.SrcKey, spec.DstBucket, spec.DstKey, err)
		}
		return copyCompleteMsg{spec: spec, err: err}
	}
}

// openManagementConsole opens the endpoint's web console at the current
// directory in the default browser.
func (m *model) openManagementConsole() tea.Cmd {
	url := m.client.ConsoleURL(m.objectKey.Bucket, m.objectKey.JoinedPath(true))
	return func() tea.Msg {
		if err := open.Run(url); err != nil {
			logger.Error("Failed to open %s: %v", url, err)
		}
		return nil
	}
}
