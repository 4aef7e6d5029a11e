package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/averey/spyglass/internal/objstore"
	"github.com/averey/spyglass/internal/projection"
	"github.com/averey/spyglass/internal/textwrap"
)

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var mainContent string
	switch m.mode {
	case modeFilter:
		mainContent = m.renderFilterDialog()
	case modeSort:
		mainContent = m.renderSortDialog()
	case modeGoToPath:
		mainContent = m.renderGoToPathDialog()
	case modeCopyDetail:
		mainContent = m.renderCopyDetailDialog()
	case modeDownloadConfirm:
		mainContent = m.renderDownloadConfirmDialog()
	case modeSave:
		mainContent = m.renderSaveDialog()
	case modePasteConfirm:
		mainContent = m.renderPasteConfirmDialog()
	case modeHelp:
		mainContent = m.renderHelpView()
	case modeError:
		mainContent = m.renderErrorDialog()
	default:
		mainContent = m.renderObjectList()
	}

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		mainContent,
		statusBar,
	)
}

func (m *model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	locationStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252"))

	filterStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("226"))

	location := m.objectKey.URI()
	title := titleStyle.Render("🔭 Spyglass") + locationStyle.Render(" "+location)

	if filter := m.filterInput.Value(); filter != "" {
		title += filterStyle.Render(fmt.Sprintf("  [filter: %s]", filter))
	}
	if m.sortKey != projection.SortDefault {
		title += filterStyle.Render(fmt.Sprintf("  [sort: %s]", projection.Labels()[m.sortKey]))
	}
	if m.loading {
		title += locationStyle.Render("  loading...")
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.getSafeWidth()).
		Render(title)
}

func (m *model) renderStatusBar() string {
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("240")).
		Padding(0, 1)

	var statusText string
	switch {
	case m.statusMsg != "":
		statusText = m.statusMsg
	case !m.nonEmpty():
		statusText = "0 items"
	default:
		statusText = fmt.Sprintf("%d/%d  %d items",
			m.cursor.selected+1, len(m.viewIndices), len(m.items))
	}

	rightSide := "? help  q quit"
	padding := m.getSafeWidth() - lipgloss.Width(statusText) - lipgloss.Width(rightSide) - 3
	if padding < 1 {
		padding = 1
	}

	return statusStyle.Width(m.getSafeWidth()).Render(
		statusText + strings.Repeat(" ", padding) + rightSide)
}

func (m *model) renderObjectList() string {
	availableHeight := m.getContentHeight()
	width := m.getSafeWidth()

	listStyle := lipgloss.NewStyle().
		Padding(0, 1)

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("230"))

	dirStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	dateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	if !m.nonEmpty() {
		empty := listStyle.Render("No objects")
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(width - 2).
			Height(availableHeight).
			Render(empty)
	}

	// Column layout: name fills what the date and size columns leave over
	sizeWidth := 10
	dateWidth := m.cfg.DateWidth
	nameWidth := width - 4 - 2 - dateWidth - 2 - sizeWidth - 2
	if nameWidth < 10 {
		nameWidth = 10
	}

	start := m.cursor.offset
	end := start + availableHeight
	if end > len(m.viewIndices) {
		end = len(m.viewIndices)
	}

	var rows []string
	for pos := start; pos < end; pos++ {
		item := m.items[m.viewIndices[pos]]

		name := item.Name
		if item.IsDir {
			name += "/"
		}
		if runewidth.StringWidth(name) > nameWidth {
			name = runewidth.Truncate(name, nameWidth, "...")
		}
		name = runewidth.FillRight(name, nameWidth)

		var date, size string
		if item.IsDir {
			date = strings.Repeat(" ", dateWidth)
			size = strings.Repeat(" ", sizeWidth)
		} else {
			date = runewidth.FillRight(item.LastModified.Format(m.cfg.DateFormat), dateWidth)
			size = runewidth.FillLeft(formatSize(item.Size), sizeWidth)
		}

		cursor := "  "
		if pos == m.cursor.selected {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s", cursor, name, dateStyle.Render(date), size)
		switch {
		case pos == m.cursor.selected:
			line = selectedStyle.Render(fmt.Sprintf("%s%s  %s  %s", cursor, name, date, size))
		case item.IsDir:
			line = dirStyle.Render(line)
		default:
			line = normalStyle.Render(line)
		}
		rows = append(rows, line)
	}

	if start > 0 {
		rows = append([]string{"▲ More objects above..."}, rows...)
	}
	if end < len(m.viewIndices) {
		rows = append(rows, "▼ More objects below...")
	}

	list := listStyle.Render(strings.Join(rows, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(width - 2).
		Height(availableHeight).
		Render(list)
}

// centerDialog places a rendered dialog in the middle of the content area.
func (m *model) centerDialog(rendered string, dialogWidth, dialogHeight int) string {
	verticalPadding := (m.getSafeHeight() - dialogHeight) / 2
	horizontalPadding := (m.getSafeWidth() - dialogWidth) / 2
	if verticalPadding < 0 {
		verticalPadding = 0
	}
	if horizontalPadding < 0 {
		horizontalPadding = 0
	}
	return lipgloss.NewStyle().
		Padding(verticalPadding, horizontalPadding).
		Render(rendered)
}

func inputDialogStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("105")).
		Padding(1, 2).
		Width(inputDialogWidth)
}

func dialogTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))
}

func (m *model) renderFilterDialog() string {
	title := dialogTitleStyle().Render("🔍 Filter Objects")
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Render("enter apply · esc clear")

	dialog := title + "\n\n" + m.filterInput.View() + "\n\n" + hint
	return m.centerDialog(inputDialogStyle().Render(dialog), inputDialogWidth, 8)
}

func (m *model) renderSortDialog() string {
	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("230"))
	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	title := dialogTitleStyle().Render("↕ Sort Objects")

	var lines []string
	for key, label := range projection.Labels() {
		line := "  " + label
		if projection.SortKey(key) == m.sortKey {
			line = selectedStyle.Render("> " + label)
		} else {
			line = normalStyle.Render(line)
		}
		lines = append(lines, line)
	}

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Render("j/k preview · enter apply · esc reset")

	dialog := title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + hint
	return m.centerDialog(inputDialogStyle().Render(dialog), inputDialogWidth, 13)
}

func (m *model) renderGoToPathDialog() string {
	title := dialogTitleStyle().Render("➜ Go To Path")

	dialog := title + "\n\n" + m.pathInput.View()
	if len(m.pathSuggestions) > 0 {
		suggestionStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
		var lines []string
		for i, s := range m.pathSuggestions {
			marker := "  "
			if i == 0 {
				marker = "⇥ "
			}
			lines = append(lines, suggestionStyle.Render(marker+s))
		}
		dialog += "\n\n" + strings.Join(lines, "\n")
	}

	height := 8 + len(m.pathSuggestions)
	return m.centerDialog(inputDialogStyle().Render(dialog), inputDialogWidth, height)
}

func (m *model) renderCopyDetailDialog() string {
	s := m.copyDetail

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("230"))
	nameStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	title := dialogTitleStyle().Render("📋 Copy To Clipboard")

	var lines []string
	for i, entry := range s.entries {
		name := entry.name
		if i == s.selected {
			name = selectedStyle.Render("> " + name)
		} else {
			name = nameStyle.Render("  " + name)
		}
		value := entry.value
		if runewidth.StringWidth(value) > confirmTextWidth-4 {
			value = runewidth.Truncate(value, confirmTextWidth-4, "...")
		}
		lines = append(lines, name+"\n"+valueStyle.Render("    "+value))
	}

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Render("j/k select · enter copy · esc close")

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("105")).
		Padding(1, 2).
		Width(confirmDialogWidth)

	dialog := title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + hint
	height := 8 + 2*len(s.entries)
	return m.centerDialog(dialogStyle.Render(dialog), confirmDialogWidth, height)
}

// renderConfirmButtons draws the ok/cancel pair with the active side lit.
func renderConfirmButtons(okLabel string, confirm confirmState) string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(0, 2)

	ok := inactiveStyle.Render(okLabel)
	cancel := activeStyle.Render("Cancel")
	if confirm.isOK() {
		ok = activeStyle.Render(okLabel)
		cancel = inactiveStyle.Render("Cancel")
	}
	return ok + "    " + cancel
}

func (m *model) renderDownloadConfirmDialog() string {
	s := m.downloadConfirm

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	title := dialogTitleStyle().Render("⬇ Download Objects")

	summary := contentStyle.Render(fmt.Sprintf(
		"Download %d objects (Total size: %s)?",
		len(s.objs), formatSize(totalSize(s.objs))))

	uri := strings.Join(textwrap.WrapPath(s.key.URI(), confirmTextWidth), "\n")

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("105")).
		Padding(1, 2).
		Width(confirmDialogWidth)

	dialog := title + "\n\n" + pathStyle.Render(uri) + "\n\n" + summary +
		"\n\n" + renderConfirmButtons("Download", s.confirm)
	return m.centerDialog(dialogStyle.Render(dialog), confirmDialogWidth, 11)
}

func (m *model) renderSaveDialog() string {
	s := m.saveDialog

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	title := dialogTitleStyle().Render("💾 Download As")

	var prompt string
	if s.objs != nil {
		prompt = contentStyle.Render(fmt.Sprintf(
			"Directory name for %d objects (Total size: %s):",
			len(s.objs), formatSize(totalSize(s.objs))))
	} else {
		prompt = contentStyle.Render(fmt.Sprintf(
			"File name (%s):", formatSize(s.size)))
	}

	dialog := title + "\n\n" + prompt + "\n" + s.input.View()
	return m.centerDialog(inputDialogStyle().Render(dialog), inputDialogWidth, 9)
}

func (m *model) renderPasteConfirmDialog() string {
	s := m.pasteConfirm

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	title := dialogTitleStyle().Render("📦 Copy Object")

	src := objstore.KeyWithPrefix(s.spec.SrcBucket, s.spec.SrcKey).URI()
	dst := objstore.KeyWithPrefix(s.spec.DstBucket, s.spec.DstKey).URI()
	srcLines := strings.Join(textwrap.WrapPath(src, confirmTextWidth), "\n")
	dstLines := strings.Join(textwrap.WrapPath(dst, confirmTextWidth), "\n")

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("105")).
		Padding(1, 2).
		Width(confirmDialogWidth)

	dialog := title + "\n\n" +
		labelStyle.Render("From:") + "\n" + pathStyle.Render(srcLines) + "\n\n" +
		labelStyle.Render("To:") + "\n" + pathStyle.Render(dstLines) + "\n\n" +
		renderConfirmButtons("Copy", s.confirm)
	return m.centerDialog(dialogStyle.Render(dialog), confirmDialogWidth, 13)
}

func (m *model) renderHelpView() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))
	keyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("226")).
		Width(16)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"j/k, ↓/↑", "Move cursor"},
			{"g/G", "First/last item"},
			{"ctrl+f/ctrl+b", "Page down/up"},
			{"enter, l", "Open folder / object details"},
			{"h, backspace", "Parent folder"},
			{"B", "Bucket root"},
			{":", "Go to path"},
			{"r", "Refresh"},
		}},
		{"View", [][2]string{
			{"/", "Filter by name"},
			{"o", "Sort"},
			{"esc", "Clear filter / go back"},
		}},
		{"Objects", [][2]string{
			{"d", "Download"},
			{"D", "Download as..."},
			{"c", "Mark copy source"},
			{"p", "Paste (server-side copy)"},
			{"y", "Copy key/URI to clipboard"},
			{"m", "Open management console"},
		}},
		{"General", [][2]string{
			{"?", "Toggle this help"},
			{"q, ctrl+c", "Quit"},
		}},
	}

	var lines []string
	for _, section := range sections {
		lines = append(lines, headerStyle.Render(section.title))
		for _, kv := range section.keys {
			lines = append(lines, "  "+keyStyle.Render(kv[0])+descStyle.Render(kv[1]))
		}
		lines = append(lines, "")
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.getSafeWidth() - 2).
		Height(m.getContentHeight())

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) renderErrorDialog() string {
	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Width(confirmDialogWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("244"))

	details := m.errorDetails
	if runewidth.StringWidth(details) > confirmTextWidth*4 {
		details = runewidth.Truncate(details, confirmTextWidth*4, "...")
	}

	dialog := titleStyle.Render("⚠️  "+m.errorMsg) + "\n\n" +
		contentStyle.Render(details) + "\n\n" +
		promptStyle.Render("Press any key to continue")
	return m.centerDialog(dialogStyle.Render(dialog), confirmDialogWidth, 10)
}
