package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/averey/spyglass/internal/logger"
	"github.com/averey/spyglass/internal/objstore"
	"github.com/averey/spyglass/internal/projection"
)

func (m *model) Init() tea.Cmd {
	return m.loadObjects(m.objectKey)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Expire stale status messages on any event
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cursor.setHeight(m.getContentHeight())
		return m, nil

	case objectsLoadedMsg:
		return m.handleObjectsLoaded(msg)

	case downloadListMsg:
		return m.handleDownloadList(msg)

	case downloadCompleteMsg:
		return m.handleDownloadComplete(msg)

	case copyCompleteMsg:
		return m.handleCopyComplete(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFilter:
			return m.handleFilterKeys(msg)
		case modeSort:
			return m.handleSortKeys(msg)
		case modeGoToPath:
			return m.handleGoToPathKeys(msg)
		case modeCopyDetail:
			return m.handleCopyDetailKeys(msg)
		case modeDownloadConfirm:
			return m.handleDownloadConfirmKeys(msg)
		case modeSave:
			return m.handleSaveKeys(msg)
		case modePasteConfirm:
			return m.handlePasteConfirmKeys(msg)
		case modeHelp:
			return m.handleHelpKeys(msg)
		case modeError:
			// Any key dismisses the error dialog
			m.errorMsg = ""
			m.errorDetails = ""
			m.mode = modeDefault
			return m, nil
		default:
			return m.handleDefaultKeys(msg)
		}
	}

	return m, nil
}

func (m *model) handleObjectsLoaded(msg objectsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loadSeq {
		logger.Info("Dropping stale listing for %s (seq %d, current %d)",
			msg.key.URI(), msg.seq, m.loadSeq)
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.showError("Failed to list objects", msg.err.Error())
		return m, nil
	}

	m.objectKey = msg.key
	m.items = msg.items
	// A fresh page starts with no filter and default order
	m.filterInput.SetValue("")
	m.sortKey = projection.SortDefault
	m.refilter()
	m.recordVisited(msg.key.JoinedPath(false))
	return m, nil
}

func (m *model) handleDownloadList(msg downloadListMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loadSeq {
		logger.Info("Dropping stale enumeration for %s", msg.key.URI())
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.showError("Failed to enumerate objects", msg.err.Error())
		return m, nil
	}
	if len(msg.objs) == 0 {
		m.setStatus("No objects to download under %s", msg.key.URI())
		return m, nil
	}

	m.downloadConfirm = &downloadConfirmState{
		objs:       msg.objs,
		key:        msg.key,
		name:       msg.name,
		downloadAs: msg.downloadAs,
	}
	m.mode = modeDownloadConfirm
	return m, nil
}

func (m *model) handleDownloadComplete(msg downloadCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.showError("Download failed", msg.err.Error())
		return m, nil
	}
	if len(msg.failed) > 0 {
		m.showError("Download finished with errors",
			strings.Join(msg.failed, "\n"))
		return m, nil
	}
	if msg.count == 1 {
		m.setStatus("Downloaded %s to %s", msg.name, m.cfg.DownloadDir)
	} else {
		m.setStatus("Downloaded %d objects to %s", msg.count, m.cfg.DownloadDir)
	}
	return m, nil
}

func (m *model) handleCopyComplete(msg copyCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.showError("Copy failed", msg.err.Error())
		return m, nil
	}
	m.setStatus("Copied to %s", objstore.KeyWithPrefix(msg.spec.DstBucket, msg.spec.DstKey).URI())

	// Refresh only when the destination landed in the directory on screen
	dst := objstore.KeyWithPrefix(msg.spec.DstBucket, msg.spec.DstKey)
	if dst.Parent().Equal(m.objectKey) {
		return m, m.loadObjects(m.objectKey)
	}
	return m, nil
}

func (m *model) handleDefaultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		m.cursor.next()
	case "k", "up":
		m.cursor.prev()
	case "g", "home":
		m.cursor.first()
	case "G", "end":
		m.cursor.last()
	case "ctrl+f", "pgdown":
		m.cursor.nextPage()
	case "ctrl+b", "pgup":
		m.cursor.prevPage()

	case "enter", "l", "right":
		if !m.nonEmpty() {
			return m, nil
		}
		item := m.selectedItem()
		if item.IsDir {
			return m, m.loadObjects(m.objectKey.Append(item.Name))
		}
		m.copyDetail = newCopyDetailState(item)
		m.mode = modeCopyDetail

	case "h", "left", "backspace":
		if !m.objectKey.IsRoot() {
			return m, m.loadObjects(m.objectKey.Parent())
		}

	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.refilter()
			return m, nil
		}
		if !m.objectKey.IsRoot() {
			return m, m.loadObjects(m.objectKey.Parent())
		}

	case "B":
		if !m.objectKey.IsRoot() {
			return m, m.loadObjects(objstore.KeyWithPrefix(m.objectKey.Bucket, ""))
		}

	case "/":
		m.mode = modeFilter
		m.filterInput.Focus()
		return m, textinput.Blink

	case "o":
		m.mode = modeSort

	case ":":
		m.mode = modeGoToPath
		m.pathInput.SetValue(m.objectKey.JoinedPath(false))
		m.pathInput.CursorEnd()
		m.pathInput.Focus()
		m.updatePathSuggestions()
		return m, textinput.Blink

	case "y":
		if !m.nonEmpty() {
			return m, nil
		}
		m.copyDetail = newCopyDetailState(m.selectedItem())
		m.mode = modeCopyDetail

	case "c":
		if !m.nonEmpty() {
			return m, nil
		}
		item := m.selectedItem()
		if item.IsDir {
			m.setStatus("Cannot copy a folder, select an object")
			return m, nil
		}
		m.source = &copySource{key: m.selectedKey(), item: item}
		m.setStatus("Copy source: %s", m.source.key.URI())

	case "p":
		if m.source == nil {
			m.setStatus("Nothing to paste, mark a source with 'c' first")
			return m, nil
		}
		dst := m.objectKey.Append(m.source.item.Name)
		m.pasteConfirm = &pasteConfirmState{
			spec: objstore.PasteSpec{
				SrcBucket: m.source.key.Bucket,
				SrcKey:    m.source.key.JoinedPath(false),
				DstBucket: dst.Bucket,
				DstKey:    dst.JoinedPath(false),
			},
		}
		m.mode = modePasteConfirm

	case "d":
		if !m.nonEmpty() {
			return m, nil
		}
		item := m.selectedItem()
		if item.IsDir {
			m.loading = true
			return m, m.enumerateObjects(m.selectedKey(), item.Name, false)
		}
		m.setStatus("Downloading %s...", item.Name)
		return m, m.downloadObject(m.selectedKey(), item.Name)

	case "D":
		if !m.nonEmpty() {
			return m, nil
		}
		item := m.selectedItem()
		if item.IsDir {
			m.loading = true
			return m, m.enumerateObjects(m.selectedKey(), item.Name, true)
		}
		m.openSaveDialog(item.Name, nil, m.selectedKey(), item.Size)
		return m, textinput.Blink

	case "r":
		return m, m.loadObjects(m.objectKey)

	case "m":
		return m, m.openManagementConsole()

	case "?":
		m.mode = modeHelp
	}

	return m, nil
}

func (m *model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Apply: keep the filter, leave the dialog
		m.filterInput.Blur()
		m.mode = modeDefault
		return m, nil
	case "esc":
		// Close: discard the filter entirely
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.refilter()
		m.mode = modeDefault
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filterInput.Value()
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *model) handleSortKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.sortKey < projection.SortSizeDesc {
			m.sortKey++
			m.resort()
		}
	case "k", "up":
		if m.sortKey > projection.SortDefault {
			m.sortKey--
			m.resort()
		}
	case "enter":
		// Apply: the previewed order becomes the page order
		m.mode = modeDefault
	case "esc":
		// Close: abandon the preview and fall back to default order
		m.sortKey = projection.SortDefault
		m.resort()
		m.mode = modeDefault
	}
	return m, nil
}

func (m *model) handleGoToPathKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		prefix := strings.Trim(strings.TrimSpace(m.pathInput.Value()), "/")
		m.pathInput.Blur()
		m.mode = modeDefault
		return m, m.loadObjects(objstore.KeyWithPrefix(m.objectKey.Bucket, prefix))
	case "esc":
		m.pathInput.Blur()
		m.mode = modeDefault
		return m, nil
	case "tab":
		if len(m.pathSuggestions) > 0 {
			m.pathInput.SetValue(m.pathSuggestions[0])
			m.pathInput.CursorEnd()
			m.updatePathSuggestions()
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.pathInput.Value()
	m.pathInput, cmd = m.pathInput.Update(msg)
	if m.pathInput.Value() != before {
		m.updatePathSuggestions()
	}
	return m, cmd
}

// updatePathSuggestions fuzzy-matches the typed path against visited prefixes.
func (m *model) updatePathSuggestions() {
	input := m.pathInput.Value()
	if input == "" {
		m.pathSuggestions = nil
		return
	}
	matches := fuzzy.Find(input, m.visited)
	m.pathSuggestions = m.pathSuggestions[:0]
	for i, match := range matches {
		if i >= maxPathSuggestions {
			break
		}
		m.pathSuggestions = append(m.pathSuggestions, match.Str)
	}
}

func (m *model) handleCopyDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.copyDetail
	switch msg.String() {
	case "j", "down":
		if s.selected < len(s.entries)-1 {
			s.selected++
		}
	case "k", "up":
		if s.selected > 0 {
			s.selected--
		}
	case "enter":
		entry := s.entries[s.selected]
		m.copyToClipboard(entry.name, entry.value)
		m.closeDialogs()
	case "esc", "y":
		m.closeDialogs()
	}
	return m, nil
}

func (m *model) handleDownloadConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.downloadConfirm
	switch msg.String() {
	case "h", "l", "left", "right", "tab":
		s.confirm.toggle()
	case "enter":
		if !s.confirm.isOK() {
			m.closeDialogs()
			return m, nil
		}
		objs, key, name := s.objs, s.key, s.name
		m.closeDialogs()
		if s.downloadAs {
			m.openSaveDialog(name, objs, key, 0)
			return m, textinput.Blink
		}
		m.setStatus("Downloading %d objects...", len(objs))
		return m, m.downloadObjects(key, name, objs)
	case "esc":
		m.closeDialogs()
	}
	return m, nil
}

func (m *model) openSaveDialog(name string, objs []objstore.DownloadObjectInfo, key objstore.ObjectKey, size int64) {
	input := textinput.New()
	input.CharLimit = 1024
	input.Width = inputDialogWidth - 10
	input.SetValue(name)
	input.CursorEnd()
	input.Focus()

	m.saveDialog = &saveDialogState{input: input, objs: objs, key: key, size: size}
	m.mode = modeSave
}

func (m *model) handleSaveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.saveDialog
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(s.input.Value())
		if name == "" {
			// Nothing entered, keep prompting
			return m, nil
		}
		objs, key := s.objs, s.key
		m.closeDialogs()
		if objs != nil {
			m.setStatus("Downloading %d objects...", len(objs))
			return m, m.downloadObjects(key, name, objs)
		}
		m.setStatus("Downloading %s...", name)
		return m, m.downloadObject(key, name)
	case "esc":
		m.closeDialogs()
		return m, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return m, cmd
}

func (m *model) handlePasteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.pasteConfirm
	switch msg.String() {
	case "h", "l", "left", "right", "tab":
		s.confirm.toggle()
	case "enter":
		if !s.confirm.isOK() {
			m.closeDialogs()
			return m, nil
		}
		spec := s.spec
		m.closeDialogs()
		m.setStatus("Copying %s...", spec.SrcKey)
		return m, m.pasteObject(spec)
	case "esc":
		m.closeDialogs()
	}
	return m, nil
}

func (m *model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q", "enter":
		m.mode = modeDefault
	}
	return m, nil
}
