package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/averey/spyglass/internal/config"
	"github.com/averey/spyglass/internal/objstore"
	"github.com/averey/spyglass/internal/projection"
)

// Async operation result messages
type objectsLoadedMsg struct {
	seq   int
	key   objstore.ObjectKey
	items []objstore.Item
	err   error
}

type downloadListMsg struct {
	seq        int
	key        objstore.ObjectKey // enumerated prefix
	name       string             // selected item name, becomes the local directory
	objs       []objstore.DownloadObjectInfo
	downloadAs bool
	err        error
}

type downloadCompleteMsg struct {
	name   string
	count  int
	failed []string
	err    error
}

type copyCompleteMsg struct {
	spec objstore.PasteSpec
	err  error
}

// Terminal dimension constants
const (
	minTerminalWidth  = 40
	minTerminalHeight = 10
	uiOverhead        = 5 // Header (1) + status (1) + borders (2) + padding (1)
)

// Application behavior constants
const (
	statusMessageTTL   = 3 * time.Second
	maxPathSuggestions = 5
	confirmDialogWidth = 70
	confirmTextWidth   = confirmDialogWidth - 4 // borders + padding
	inputDialogWidth   = 50
)

type mode int

const (
	modeDefault mode = iota
	modeFilter
	modeSort
	modeGoToPath
	modeCopyDetail
	modeDownloadConfirm
	modeSave
	modePasteConfirm
	modeHelp
	modeError
)

// storageClient is the slice of the object-storage API the browser consumes.
// Results always come back as messages on the program's event stream.
type storageClient interface {
	List(ctx context.Context, bucket, prefix string) ([]objstore.Item, error)
	ListAllDescendants(ctx context.Context, bucket, prefix string) ([]objstore.DownloadObjectInfo, error)
	Download(ctx context.Context, bucket, key, destPath string) error
	Copy(ctx context.Context, spec objstore.PasteSpec) error
	ConsoleURL(bucket, prefix string) string
}

// listCursor tracks the selected row and scroll offset over the current
// projection. All movement is clamped; every operation is a no-op on an
// empty projection.
type listCursor struct {
	offset   int
	selected int
	total    int
	height   int
}

func newListCursor(total int) listCursor {
	return listCursor{total: total, height: 1}
}

func (c *listCursor) reset(total int) {
	c.total = total
	c.selected = 0
	c.offset = 0
}

// setTotal keeps the selection valid when membership count changes without a
// full reset.
func (c *listCursor) setTotal(total int) {
	c.total = total
	if c.selected >= total {
		c.selected = total - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}
	c.scrollTo()
}

func (c *listCursor) setHeight(height int) {
	if height < 1 {
		height = 1
	}
	c.height = height
	c.scrollTo()
}

func (c *listCursor) next() {
	if c.total == 0 || c.selected >= c.total-1 {
		return
	}
	c.selected++
	c.scrollTo()
}

func (c *listCursor) prev() {
	if c.total == 0 || c.selected == 0 {
		return
	}
	c.selected--
	c.scrollTo()
}

func (c *listCursor) first() {
	if c.total == 0 {
		return
	}
	c.selected = 0
	c.scrollTo()
}

func (c *listCursor) last() {
	if c.total == 0 {
		return
	}
	c.selected = c.total - 1
	c.scrollTo()
}

func (c *listCursor) nextPage() {
	if c.total == 0 {
		return
	}
	c.selected += c.height
	if c.selected > c.total-1 {
		c.selected = c.total - 1
	}
	c.scrollTo()
}

func (c *listCursor) prevPage() {
	if c.total == 0 {
		return
	}
	c.selected -= c.height
	if c.selected < 0 {
		c.selected = 0
	}
	c.scrollTo()
}

func (c *listCursor) scrollTo() {
	if c.selected < c.offset {
		c.offset = c.selected
	}
	if c.selected >= c.offset+c.height {
		c.offset = c.selected - c.height + 1
	}
	if c.offset < 0 {
		c.offset = 0
	}
}

// confirmState is the ok/cancel toggle of a confirm dialog. It starts on ok.
type confirmState struct {
	cancel bool
}

func (s *confirmState) toggle() { s.cancel = !s.cancel }
func (s *confirmState) isOK() bool {
	return !s.cancel
}

type downloadConfirmState struct {
	objs       []objstore.DownloadObjectInfo
	key        objstore.ObjectKey // enumerated prefix
	name       string             // local directory name
	confirm    confirmState
	downloadAs bool
}

type saveDialogState struct {
	input textinput.Model
	objs  []objstore.DownloadObjectInfo // nil means single-object rename
	key   objstore.ObjectKey            // source object or prefix
	size  int64                         // single-object size
}

type pasteConfirmState struct {
	spec    objstore.PasteSpec
	confirm confirmState
}

type copyDetailEntry struct {
	name  string
	value string
}

type copyDetailState struct {
	entries  []copyDetailEntry
	selected int
}

// copySource is the stashed source of a pending server-side copy.
type copySource struct {
	key  objstore.ObjectKey
	item objstore.Item
}

type model struct {
	client storageClient
	cfg    *config.Config

	objectKey   objstore.ObjectKey // current directory
	items       []objstore.Item    // master list, replaced wholesale on refresh
	viewIndices []int              // filter+sort projection into items

	mode   mode
	cursor listCursor

	filterInput textinput.Model
	sortKey     projection.SortKey

	pathInput       textinput.Model
	pathSuggestions []string
	visited         []string // previously visited prefixes

	copyDetail      *copyDetailState
	downloadConfirm *downloadConfirmState
	saveDialog      *saveDialogState
	pasteConfirm    *pasteConfirmState

	source *copySource

	loadSeq int // generation counter for stale completion detection
	loading bool

	statusMsg    string
	statusExpiry time.Time
	errorMsg     string
	errorDetails string

	width  int
	height int
}

func initialModel(client storageClient, cfg *config.Config, key objstore.ObjectKey) model {
	filter := textinput.New()
	filter.Placeholder = "Filter..."
	filter.CharLimit = 256
	filter.Width = inputDialogWidth - 10

	path := textinput.New()
	path.Placeholder = "path/to/prefix"
	path.CharLimit = 1024
	path.Width = inputDialogWidth - 10

	return model{
		client:      client,
		cfg:         cfg,
		objectKey:   key,
		items:       []objstore.Item{},
		viewIndices: []int{},
		mode:        modeDefault,
		cursor:      newListCursor(0),
		filterInput: filter,
		sortKey:     projection.SortDefault,
		pathInput:   path,
	}
}

// Helper methods for safe dimensions
func (m *model) getSafeWidth() int {
	if m.width < minTerminalWidth {
		return minTerminalWidth
	}
	return m.width
}

func (m *model) getSafeHeight() int {
	if m.height < minTerminalHeight {
		return minTerminalHeight
	}
	return m.height
}

// getContentHeight returns available rows for list items (total - UI overhead)
func (m *model) getContentHeight() int {
	availableHeight := m.getSafeHeight() - uiOverhead
	if availableHeight < 3 {
		availableHeight = 3
	}
	return availableHeight
}

func (m *model) nonEmpty() bool {
	return len(m.viewIndices) > 0
}

// selectedItem returns the item under the cursor. A selection outside the
// projection means the cursor and projection disagree, which is a broken
// invariant, not a user error.
func (m *model) selectedItem() objstore.Item {
	if m.cursor.selected >= len(m.viewIndices) {
		panic(fmt.Sprintf("selected view index %d is out of range %d",
			m.cursor.selected, len(m.viewIndices)))
	}
	i := m.viewIndices[m.cursor.selected]
	if i >= len(m.items) {
		panic(fmt.Sprintf("selected index %d is out of range %d", i, len(m.items)))
	}
	return m.items[i]
}

// selectedKey is the full key of the item under the cursor.
func (m *model) selectedKey() objstore.ObjectKey {
	return m.objectKey.Append(m.selectedItem().Name)
}

// refilter recomputes the projection from the current filter text, re-applies
// the current sort and resets the cursor to the top.
func (m *model) refilter() {
	m.viewIndices = projection.Filter(m.items, m.filterInput.Value())
	projection.Sort(m.viewIndices, m.items, m.sortKey)
	m.cursor.reset(len(m.viewIndices))
}

// resort re-orders the existing projection. Membership and cursor stay put.
func (m *model) resort() {
	projection.Sort(m.viewIndices, m.items, m.sortKey)
}

func (m *model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusExpiry = time.Now().Add(statusMessageTTL)
}

func (m *model) showError(title string, details string) {
	m.errorMsg = title
	m.errorDetails = details
	m.mode = modeError
}

// recordVisited remembers a prefix for go-to-path suggestions.
func (m *model) recordVisited(prefix string) {
	if prefix == "" {
		return
	}
	for _, v := range m.visited {
		if v == prefix {
			return
		}
	}
	m.visited = append(m.visited, prefix)
	if max := m.cfg.MaxVisited; max > 0 && len(m.visited) > max {
		m.visited = m.visited[len(m.visited)-max:]
	}
}

func (m *model) closeDialogs() {
	m.mode = modeDefault
	m.copyDetail = nil
	m.downloadConfirm = nil
	m.saveDialog = nil
	m.pasteConfirm = nil
}

func newCopyDetailState(item objstore.Item) *copyDetailState {
	entries := []copyDetailEntry{
		{name: "Key", value: item.Key},
		{name: "URI", value: item.URI},
		{name: "Object URL", value: item.ObjectURL},
	}
	if !item.IsDir {
		entries = append(entries, copyDetailEntry{name: "ETag", value: item.ETag})
	}
	return &copyDetailState{entries: entries}
}
