package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averey/spyglass/internal/config"
	"github.com/averey/spyglass/internal/objstore"
	"github.com/averey/spyglass/internal/projection"
)

type stubClient struct {
	items     []objstore.Item
	objs      []objstore.DownloadObjectInfo
	downloads []string
	copies    []objstore.PasteSpec
}

func (s *stubClient) List(_ context.Context, _, _ string) ([]objstore.Item, error) {
	return s.items, nil
}

func (s *stubClient) ListAllDescendants(_ context.Context, _, _ string) ([]objstore.DownloadObjectInfo, error) {
	return s.objs, nil
}

func (s *stubClient) Download(_ context.Context, _, _, destPath string) error {
	s.downloads = append(s.downloads, destPath)
	return nil
}

func (s *stubClient) Copy(_ context.Context, spec objstore.PasteSpec) error {
	s.copies = append(s.copies, spec)
	return nil
}

func (s *stubClient) ConsoleURL(bucket, prefix string) string {
	return "https://console.test/" + bucket + "/" + prefix
}

func listingFixture() []objstore.Item {
	ts := time.Date(2024, 1, 2, 13, 1, 2, 0, time.UTC)
	return []objstore.Item{
		{Name: "dir1", IsDir: true, Key: "path/to/dir1/", URI: "s3://test-bucket/path/to/dir1/"},
		{Name: "dir2", IsDir: true, Key: "path/to/dir2/", URI: "s3://test-bucket/path/to/dir2/"},
		{Name: "file1", Key: "path/to/file1", URI: "s3://test-bucket/path/to/file1",
			ObjectURL: "https://endpoint.test/test-bucket/path/to/file1",
			Size:      1034, LastModified: ts, ETag: "abc123"},
		{Name: "file2", Key: "path/to/file2", URI: "s3://test-bucket/path/to/file2",
			ObjectURL: "https://endpoint.test/test-bucket/path/to/file2",
			Size:      1022976, LastModified: ts.Add(-time.Hour), ETag: "def456"},
	}
}

func testModel(t *testing.T, items []objstore.Item) (*model, *stubClient) {
	t.Helper()
	client := &stubClient{items: items}
	m := initialModel(client, config.Defaults("/home/test"), objstore.KeyWithPrefix("test-bucket", "path/to"))
	m.width = 100
	m.height = 30
	m.cursor.setHeight(m.getContentHeight())
	m.items = items
	m.refilter()
	return &m, client
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// press feeds one key and returns the resulting command.
func press(m *model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestFilterTypingResetsCursor(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("j"))
	press(m, keyRunes("j"))
	assert.Equal(t, 2, m.cursor.selected)

	press(m, keyRunes("/"))
	assert.Equal(t, modeFilter, m.mode)

	press(m, keyRunes("f"))
	assert.Equal(t, "f", m.filterInput.Value())
	assert.Equal(t, []int{2, 3}, m.viewIndices)
	assert.Equal(t, 0, m.cursor.selected)
	assert.Equal(t, 0, m.cursor.offset)
}

func TestFilterApplyKeepsFilter(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("/"))
	press(m, keyRunes("f"))
	press(m, key(tea.KeyEnter))

	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, "f", m.filterInput.Value())
	assert.Equal(t, []int{2, 3}, m.viewIndices)
}

func TestFilterCloseDiscardsFilter(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("/"))
	press(m, keyRunes("f"))
	press(m, key(tea.KeyEsc))

	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, "", m.filterInput.Value())
	assert.Equal(t, []int{0, 1, 2, 3}, m.viewIndices)
}

func TestEscClearsFilterBeforeNavigating(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("/"))
	press(m, keyRunes("f"))
	press(m, key(tea.KeyEnter))

	cmd := press(m, key(tea.KeyEsc))
	assert.Nil(t, cmd, "first esc only clears the filter")
	assert.Equal(t, "", m.filterInput.Value())
	assert.Equal(t, []int{0, 1, 2, 3}, m.viewIndices)

	cmd = press(m, key(tea.KeyEsc))
	assert.NotNil(t, cmd, "second esc navigates to the parent")
}

func TestSortPreviewKeepsCursor(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 1, 2, 0, time.UTC)
	items := []objstore.Item{
		{Name: "zebra", Size: 10, LastModified: ts},
		{Name: "alpha", IsDir: true},
		{Name: "mango", Size: 20, LastModified: ts},
	}
	m, _ := testModel(t, items)
	press(m, keyRunes("j"))
	assert.Equal(t, 1, m.cursor.selected)

	press(m, keyRunes("o"))
	assert.Equal(t, modeSort, m.mode)

	press(m, keyRunes("j"))
	assert.Equal(t, projection.SortNameAsc, m.sortKey)
	assert.Equal(t, []int{1, 2, 0}, m.viewIndices, "preview reorders immediately")
	assert.Equal(t, 1, m.cursor.selected, "sorting never moves the cursor")
}

func TestSortApplyKeepsOrder(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("o"))
	press(m, keyRunes("j"))
	press(m, keyRunes("j"))
	assert.Equal(t, projection.SortNameDesc, m.sortKey)
	press(m, key(tea.KeyEnter))

	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, projection.SortNameDesc, m.sortKey)
	assert.Equal(t, []int{3, 2, 1, 0}, m.viewIndices)
}

func TestSortCloseFallsBackToDefault(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("o"))
	press(m, keyRunes("j"))
	press(m, keyRunes("j"))
	press(m, key(tea.KeyEsc))

	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, projection.SortDefault, m.sortKey)
	assert.Equal(t, []int{0, 1, 2, 3}, m.viewIndices)
}

func TestStaleListingIsDropped(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.loadSeq = 7

	stale := objectsLoadedMsg{
		seq:   3,
		key:   objstore.KeyWithPrefix("test-bucket", "elsewhere"),
		items: []objstore.Item{{Name: "other"}},
	}
	m.Update(stale)

	assert.Len(t, m.items, 4, "stale listing must not replace the page")
	assert.Equal(t, "path/to", m.objectKey.JoinedPath(false))
}

func TestFreshListingResetsFilterAndSort(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("/"))
	press(m, keyRunes("f"))
	press(m, key(tea.KeyEnter))
	press(m, keyRunes("o"))
	press(m, keyRunes("j"))
	press(m, key(tea.KeyEnter))

	msg := objectsLoadedMsg{
		seq:   m.loadSeq,
		key:   objstore.KeyWithPrefix("test-bucket", "other"),
		items: []objstore.Item{{Name: "fresh", IsDir: true}},
	}
	m.Update(msg)

	assert.Equal(t, "", m.filterInput.Value())
	assert.Equal(t, projection.SortDefault, m.sortKey)
	assert.Equal(t, []int{0}, m.viewIndices)
	assert.Equal(t, 0, m.cursor.selected)
	assert.Contains(t, m.visited, "other")
}

func TestEnterOnDirectoryLoads(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	seq := m.loadSeq
	cmd := press(m, key(tea.KeyEnter))

	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Equal(t, seq+1, m.loadSeq, "navigation invalidates in-flight results")

	msg := cmd()
	loaded, ok := msg.(objectsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "path/to/dir1", loaded.key.JoinedPath(false))
}

func TestEnterOnFileOpensDetails(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("G"))
	press(m, key(tea.KeyEnter))

	require.Equal(t, modeCopyDetail, m.mode)
	require.NotNil(t, m.copyDetail)
	names := make([]string, 0, len(m.copyDetail.entries))
	for _, e := range m.copyDetail.entries {
		names = append(names, e.name)
	}
	assert.Equal(t, []string{"Key", "URI", "Object URL", "ETag"}, names)
}

func downloadFixtureObjs() []objstore.DownloadObjectInfo {
	return []objstore.DownloadObjectInfo{
		{Key: "path/to/dir1/a.txt", Size: 100},
		{Key: "path/to/dir1/sub/b.txt", Size: 200},
	}
}

func openDownloadConfirm(t *testing.T, m *model, downloadAs bool) {
	t.Helper()
	m.Update(downloadListMsg{
		seq:        m.loadSeq,
		key:        objstore.KeyWithPrefix("test-bucket", "path/to/dir1"),
		name:       "dir1",
		objs:       downloadFixtureObjs(),
		downloadAs: downloadAs,
	})
	require.Equal(t, modeDownloadConfirm, m.mode)
}

func TestDownloadConfirmCancelEmitsNothing(t *testing.T) {
	m, client := testModel(t, listingFixture())
	openDownloadConfirm(t, m, false)

	press(m, key(tea.KeyLeft)) // flip to cancel
	cmd := press(m, key(tea.KeyEnter))

	assert.Nil(t, cmd, "a cancelled confirm must not start a download")
	assert.Equal(t, modeDefault, m.mode)
	assert.Nil(t, m.downloadConfirm)
	assert.Empty(t, client.downloads)
}

func TestDownloadConfirmOKDownloadsAll(t *testing.T) {
	m, client := testModel(t, listingFixture())
	openDownloadConfirm(t, m, false)

	cmd := press(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, modeDefault, m.mode)

	msg := cmd()
	done, ok := msg.(downloadCompleteMsg)
	require.True(t, ok)
	assert.Equal(t, 2, done.count)
	assert.Empty(t, done.failed)
	assert.Equal(t, []string{
		"/home/test/Downloads/dir1/a.txt",
		"/home/test/Downloads/dir1/sub/b.txt",
	}, client.downloads)
}

func TestDownloadConfirmDownloadAsOpensSaveDialog(t *testing.T) {
	m, client := testModel(t, listingFixture())
	openDownloadConfirm(t, m, true)

	press(m, key(tea.KeyEnter))
	require.Equal(t, modeSave, m.mode)
	require.NotNil(t, m.saveDialog)
	assert.Len(t, m.saveDialog.objs, 2)
	assert.Equal(t, "dir1", m.saveDialog.input.Value())
	assert.Empty(t, client.downloads, "nothing downloads before the name is given")

	m.saveDialog.input.SetValue("renamed")
	cmd := press(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{
		"/home/test/Downloads/renamed/a.txt",
		"/home/test/Downloads/renamed/sub/b.txt",
	}, client.downloads)
}

func TestEmptyEnumerationShowsStatus(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.Update(downloadListMsg{
		seq:  m.loadSeq,
		key:  objstore.KeyWithPrefix("test-bucket", "path/to/dir1"),
		name: "dir1",
	})
	assert.Equal(t, modeDefault, m.mode)
	assert.Contains(t, m.statusMsg, "No objects to download")
}

func TestStaleEnumerationIsDropped(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.loadSeq = 5
	m.Update(downloadListMsg{
		seq:  2,
		key:  objstore.KeyWithPrefix("test-bucket", "path/to/dir1"),
		name: "dir1",
		objs: downloadFixtureObjs(),
	})
	assert.Equal(t, modeDefault, m.mode, "stale enumeration must not open a dialog")
	assert.Nil(t, m.downloadConfirm)
}

func TestDownloadFileImmediately(t *testing.T) {
	m, client := testModel(t, listingFixture())
	press(m, keyRunes("G")) // file2
	cmd := press(m, keyRunes("d"))

	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(downloadCompleteMsg)
	require.True(t, ok)
	assert.Equal(t, 1, done.count)
	assert.Equal(t, []string{"/home/test/Downloads/file2"}, client.downloads)
}

func TestDownloadAsFileRenames(t *testing.T) {
	m, client := testModel(t, listingFixture())
	press(m, keyRunes("G"))
	press(m, keyRunes("D"))
	require.Equal(t, modeSave, m.mode)
	require.NotNil(t, m.saveDialog)
	assert.Nil(t, m.saveDialog.objs)
	assert.Equal(t, "file2", m.saveDialog.input.Value())

	m.saveDialog.input.SetValue("report.csv")
	cmd := press(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"/home/test/Downloads/report.csv"}, client.downloads)
}

func TestSaveDialogRejectsEmptyName(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("G"))
	press(m, keyRunes("D"))
	require.Equal(t, modeSave, m.mode)

	m.saveDialog.input.SetValue("   ")
	cmd := press(m, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, modeSave, m.mode, "an empty name keeps prompting")
}

func TestCopySourceRejectsDirectories(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("c")) // dir1
	assert.Nil(t, m.source)
	assert.Contains(t, m.statusMsg, "Cannot copy a folder")
}

func TestPasteWithoutSourceShowsStatus(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	cmd := press(m, keyRunes("p"))
	assert.Nil(t, cmd)
	assert.Equal(t, modeDefault, m.mode)
	assert.Contains(t, m.statusMsg, "Nothing to paste")
}

func TestPasteConfirmFlow(t *testing.T) {
	m, client := testModel(t, listingFixture())
	press(m, keyRunes("G")) // file2
	press(m, keyRunes("c"))
	require.NotNil(t, m.source)

	press(m, keyRunes("p"))
	require.Equal(t, modePasteConfirm, m.mode)
	require.NotNil(t, m.pasteConfirm)
	assert.Equal(t, "path/to/file2", m.pasteConfirm.spec.SrcKey)
	assert.Equal(t, "path/to/file2", m.pasteConfirm.spec.DstKey)

	// Cancelled confirm copies nothing
	press(m, key(tea.KeyTab))
	cmd := press(m, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Empty(t, client.copies)

	// Source survives for the next paste
	press(m, keyRunes("p"))
	require.Equal(t, modePasteConfirm, m.mode)
	cmd = press(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(copyCompleteMsg)
	require.True(t, ok)
	require.Len(t, client.copies, 1)
	assert.Equal(t, "test-bucket", client.copies[0].DstBucket)
}

func TestCopyCompleteRefreshesCurrentDirectory(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	spec := objstore.PasteSpec{
		SrcBucket: "test-bucket", SrcKey: "elsewhere/file2",
		DstBucket: "test-bucket", DstKey: "path/to/file2",
	}
	_, cmd := m.Update(copyCompleteMsg{spec: spec})
	assert.NotNil(t, cmd, "a copy into the visible directory reloads it")

	spec.DstKey = "somewhere/else/file2"
	_, cmd = m.Update(copyCompleteMsg{spec: spec})
	assert.Nil(t, cmd, "a copy elsewhere does not reload")
}

func TestGoToPathPrefillsAndNavigates(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes(":"))
	require.Equal(t, modeGoToPath, m.mode)
	assert.Equal(t, "path/to", m.pathInput.Value())

	m.pathInput.SetValue("reports/2024/")
	cmd := press(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, modeDefault, m.mode)

	msg := cmd()
	loaded, ok := msg.(objectsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "reports/2024", loaded.key.JoinedPath(false))
}

func TestGoToPathSuggestions(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.visited = []string{"path/to", "reports/2024", "reports/2023", "logs"}

	press(m, keyRunes(":"))
	m.pathInput.SetValue("")
	press(m, keyRunes("r"))
	require.NotEmpty(t, m.pathSuggestions)
	for _, s := range m.pathSuggestions {
		assert.Contains(t, s, "r")
	}

	top := m.pathSuggestions[0]
	press(m, key(tea.KeyTab))
	assert.Equal(t, top, m.pathInput.Value())
}

func TestCopyDetailSelection(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	press(m, keyRunes("G"))
	press(m, keyRunes("y"))
	require.Equal(t, modeCopyDetail, m.mode)

	press(m, keyRunes("j"))
	assert.Equal(t, 1, m.copyDetail.selected)
	press(m, keyRunes("k"))
	press(m, keyRunes("k"))
	assert.Equal(t, 0, m.copyDetail.selected, "selection clamps at the top")

	press(m, key(tea.KeyEsc))
	assert.Equal(t, modeDefault, m.mode)
	assert.Nil(t, m.copyDetail)
}

func TestErrorDialogDismissesOnAnyKey(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.Update(objectsLoadedMsg{seq: m.loadSeq, err: assert.AnError})
	require.Equal(t, modeError, m.mode)

	press(m, keyRunes("x"))
	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, "", m.errorMsg)
}

func TestMovementIsNoOpOnEmptyListing(t *testing.T) {
	m, _ := testModel(t, nil)
	for _, k := range []string{"j", "k", "g", "G", "d", "D", "y", "c"} {
		cmd := press(m, keyRunes(k))
		assert.Nil(t, cmd, "key %q", k)
	}
	assert.Equal(t, modeDefault, m.mode)
	assert.Equal(t, 0, m.cursor.selected)
}

func TestVisitedPrefixesDedupeAndCap(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.cfg.MaxVisited = 3

	m.recordVisited("a")
	m.recordVisited("b")
	m.recordVisited("a")
	assert.Equal(t, []string{"a", "b"}, m.visited)

	m.recordVisited("c")
	m.recordVisited("d")
	assert.Equal(t, []string{"b", "c", "d"}, m.visited)
}

func TestViewRendersWithoutPanicInEveryMode(t *testing.T) {
	m, _ := testModel(t, listingFixture())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	render := func() string { return m.View() }
	assert.NotEmpty(t, render())

	press(m, keyRunes("/"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes("o"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes(":"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes("y"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	openDownloadConfirm(t, m, false)
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes("G"))
	press(m, keyRunes("D"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes("c"))
	press(m, keyRunes("p"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	press(m, keyRunes("?"))
	assert.NotEmpty(t, render())
	press(m, key(tea.KeyEsc))

	m.Update(objectsLoadedMsg{seq: m.loadSeq, err: assert.AnError})
	assert.NotEmpty(t, render())

	wrapped := strings.Split(render(), "\n")
	assert.NotEmpty(t, wrapped)
}
