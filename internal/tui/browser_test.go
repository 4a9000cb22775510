package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/pgman/internal/pgdb"
	"github.com/studiowebux/pgman/internal/s3store"
)

type fakeStore struct {
	snapshots []s3store.Snapshot
	listErr   error
	payload   []byte
	fetchErr  error
	body      io.ReadCloser
	bodyLen   int64
	listCalls int
}

func (f *fakeStore) List(ctx context.Context, bucket, prefix string) ([]s3store.Snapshot, error) {
	f.listCalls++
	return f.snapshots, f.listErr
}

func (f *fakeStore) Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	if f.body != nil {
		return f.body, f.bodyLen, nil
	}
	return io.NopCloser(bytes.NewReader(f.payload)), int64(len(f.payload)), nil
}

func (f *fakeStore) BucketNames(ctx context.Context) ([]string, error) {
	return []string{"backups"}, nil
}

func testSnapshots(n int) []s3store.Snapshot {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps := make([]s3store.Snapshot, n)
	for i := range snaps {
		snaps[i] = s3store.Snapshot{
			Key:          "backups/db-" + string(rune('a'+i)) + ".dump",
			Size:         int64((i + 1) * 1024),
			LastModified: base.Add(time.Duration(n-i) * time.Hour),
		}
	}
	return snaps
}

func newTestModel(store *fakeStore) (*Model, *int) {
	storeCfg := &s3store.Config{
		Bucket:          "backups",
		Region:          "us-east-1",
		EndpointURL:     "http://localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	}
	dbCfg := &pgdb.Config{Host: "localhost", Port: 5432, Username: "postgres"}

	m := New(storeCfg, dbCfg, nil)
	connects := new(int)
	m.connect = func(ctx context.Context, cfg *s3store.Config) (s3store.Store, error) {
		*connects++
		return store, nil
	}
	m.testDB = func(ctx context.Context, cfg *pgdb.Config) error { return nil }
	m.width = 120
	m.height = 40
	return m, connects
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys through Update and returns the last command.
func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

// loadList runs the startup listing to completion.
func loadList(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() returned no command")
	}
	m.Update(cmd())
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestFieldCycleClosure(t *testing.T) {
	seen := make(map[FocusField]bool)
	f := FieldSnapshotList
	for i := 0; i < int(fieldCount); i++ {
		if seen[f] {
			t.Fatalf("field %d visited twice before the cycle closed", f)
		}
		seen[f] = true
		f = f.Next()
	}
	if f != FieldSnapshotList {
		t.Errorf("after %d steps focus = %d, want %d", fieldCount, f, FieldSnapshotList)
	}
	if len(seen) != int(fieldCount) {
		t.Errorf("cycle visited %d fields, want %d", len(seen), fieldCount)
	}
}

func TestTabAdvancesFocus(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	press(m, "tab")
	if m.focus != FieldBucket {
		t.Errorf("focus after tab = %d, want %d", m.focus, FieldBucket)
	}
	for i := 0; i < int(fieldCount)-1; i++ {
		press(m, "tab")
	}
	if m.focus != FieldSnapshotList {
		t.Errorf("focus after full cycle = %d, want %d", m.focus, FieldSnapshotList)
	}
}

func TestEditCancelKeepsValue(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	m.storeCfg.Bucket = "original"

	press(m, "b", "e")
	if m.mode != ModeEditing {
		t.Fatalf("mode = %d, want editing", m.mode)
	}
	if m.editValue != "original" {
		t.Errorf("edit buffer = %q, want %q", m.editValue, "original")
	}

	typeText(m, "xyz")
	press(m, "esc")
	if m.mode != ModeNormal {
		t.Errorf("mode after esc = %d, want normal", m.mode)
	}
	if m.storeCfg.Bucket != "original" {
		t.Errorf("bucket after cancel = %q, want %q", m.storeCfg.Bucket, "original")
	}
}

func TestEditCommitWritesValue(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	m.dbCfg.Host = ""

	press(m, "h", "e")
	typeText(m, "db.internal")
	press(m, "enter")

	if m.mode != ModeNormal {
		t.Errorf("mode after enter = %d, want normal", m.mode)
	}
	if m.dbCfg.Host != "db.internal" {
		t.Errorf("host = %q, want %q", m.dbCfg.Host, "db.internal")
	}
}

func TestEditRejectsBadPort(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})

	press(m, "p", "e")
	typeText(m, "not-a-port")
	press(m, "enter")

	if m.popup.Kind != PopupError {
		t.Fatalf("popup = %d, want error", m.popup.Kind)
	}
	if m.popup.Message != "Invalid port number" {
		t.Errorf("error message = %q, want %q", m.popup.Message, "Invalid port number")
	}
	if m.mode != ModeNormal {
		t.Errorf("mode = %d, want normal", m.mode)
	}
}

func TestSnapshotListNotEditable(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	press(m, "e")
	if m.mode != ModeNormal {
		t.Errorf("mode = %d, editing should be refused on the snapshot list", m.mode)
	}
}

func TestStoreInvalidationOnFieldChange(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(2)}
	m, connects := newTestModel(store)
	loadList(t, m)
	if *connects != 1 {
		t.Fatalf("connects after startup = %d, want 1", *connects)
	}

	// Changing a required field drops the client and reconnects
	press(m, "b", "e")
	typeText(m, "-2")
	cmd := press(m, "enter")
	if *connects != 2 {
		t.Errorf("connects after bucket change = %d, want 2", *connects)
	}
	if cmd == nil {
		t.Fatal("committing a store field should reload the listing")
	}
	m.Update(cmd())

	// Changing the prefix keeps the client but reloads
	press(m, "x", "e")
	typeText(m, "daily/")
	cmd = press(m, "enter")
	if *connects != 2 {
		t.Errorf("connects after prefix change = %d, want 2 (no reconnect)", *connects)
	}
	if cmd == nil {
		t.Fatal("committing the prefix should reload the listing")
	}

	// Committing an unchanged value keeps the client
	press(m, "R", "e")
	press(m, "enter")
	if *connects != 2 {
		t.Errorf("connects after no-op edit = %d, want 2", *connects)
	}
}

func TestSelectionClamping(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(3)}
	m, _ := newTestModel(store)
	loadList(t, m)

	if m.selected != 0 {
		t.Fatalf("initial selection = %d, want 0", m.selected)
	}

	press(m, "j", "j", "j", "j", "j")
	if m.selected != 2 {
		t.Errorf("selection after moving past the end = %d, want 2", m.selected)
	}

	press(m, "k", "k", "k", "k", "k")
	if m.selected != 0 {
		t.Errorf("selection after moving past the start = %d, want 0", m.selected)
	}

	// Shrinking the listing clamps the selection
	m.selected = 2
	store.snapshots = testSnapshots(1)
	cmd := press(m, "r")
	m.Update(cmd())
	if m.selected != 0 {
		t.Errorf("selection after shrink = %d, want 0", m.selected)
	}

	// A single entry pins the selection
	press(m, "j", "k", "j")
	if m.selected != 0 {
		t.Errorf("selection with one snapshot = %d, want 0", m.selected)
	}
}

func TestEmptyListingClearsSelection(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(2)}
	m, _ := newTestModel(store)
	loadList(t, m)

	store.snapshots = nil
	cmd := press(m, "r")
	m.Update(cmd())
	if m.selected != -1 {
		t.Errorf("selection with empty listing = %d, want -1", m.selected)
	}
	press(m, "j")
	if m.selected != -1 {
		t.Errorf("selection after navigating an empty listing = %d, want -1", m.selected)
	}
}

func TestListingFailureKeepsPreviousList(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(3)}
	m, _ := newTestModel(store)
	loadList(t, m)
	press(m, "j")
	if m.selected != 1 {
		t.Fatalf("selection = %d, want 1", m.selected)
	}

	store.listErr = errors.New("access denied")
	cmd := press(m, "r")
	if cmd == nil {
		t.Fatal("refresh should issue a listing")
	}
	m.Update(cmd())

	if m.popup.Kind != PopupError {
		t.Fatalf("popup = %d, want error", m.popup.Kind)
	}
	if m.popup.Message != "access denied" {
		t.Errorf("error message = %q, want %q", m.popup.Message, "access denied")
	}
	if len(m.snapshots) != 3 {
		t.Errorf("listing was modified by a failed refresh, have %d entries", len(m.snapshots))
	}
	if m.selected != 1 {
		t.Errorf("selection moved by a failed refresh: %d", m.selected)
	}
}

func TestQuietListingFailureStaysInline(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(2)}
	m, _ := newTestModel(store)
	loadList(t, m)

	// A reload triggered by a field commit fails; the message stays in
	// the settings panel and the listing survives.
	store.listErr = errors.New("access denied")
	press(m, "x", "e")
	typeText(m, "daily/")
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("committing the prefix should reload the listing")
	}
	m.Update(cmd())

	if m.popup.Kind != PopupHidden {
		t.Errorf("popup = %d, quiet reload failures should stay inline", m.popup.Kind)
	}
	if m.storeCfg.ErrorMessage != "access denied" {
		t.Errorf("inline error = %q, want %q", m.storeCfg.ErrorMessage, "access denied")
	}
	if len(m.snapshots) != 2 {
		t.Errorf("listing was modified by a failed reload, have %d entries", len(m.snapshots))
	}
}

func TestEditAcceptsMultibyteRunes(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	m.storeCfg.Bucket = ""

	press(m, "b", "e")
	typeText(m, "café-日本")
	press(m, "enter")
	if m.storeCfg.Bucket != "café-日本" {
		t.Errorf("bucket = %q, want %q", m.storeCfg.Bucket, "café-日本")
	}
}

func TestRefreshWithMissingBucketReportsError(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(2)}
	m, _ := newTestModel(store)
	loadList(t, m)

	m.storeCfg.Bucket = ""
	m.store = nil
	cmd := press(m, "r")
	if cmd != nil {
		t.Fatal("refresh without a bucket should not issue a listing")
	}
	if m.popup.Kind != PopupError {
		t.Fatalf("popup = %d, want error", m.popup.Kind)
	}
	if m.popup.Message != "bucket name is required" {
		t.Errorf("error message = %q, want %q", m.popup.Message, "bucket name is required")
	}
	if len(m.snapshots) != 2 {
		t.Errorf("listing was modified by a failed refresh, have %d entries", len(m.snapshots))
	}
}

func TestStartupFailureStaysQuiet(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})
	m.storeCfg.Bucket = ""

	cmd := m.Init()
	if cmd != nil {
		t.Fatal("Init() with an incomplete config should not issue a listing")
	}
	if m.popup.Kind != PopupHidden {
		t.Errorf("popup = %d, startup failures should stay inline", m.popup.Kind)
	}
	if m.storeCfg.ErrorMessage != "bucket name is required" {
		t.Errorf("inline error = %q, want %q", m.storeCfg.ErrorMessage, "bucket name is required")
	}
}

func TestConnectionTestPopup(t *testing.T) {
	m, _ := newTestModel(&fakeStore{})

	press(m, "b")
	cmd := press(m, "t")
	if cmd == nil {
		t.Fatal("t on a store field should run a connection test")
	}
	m.Update(cmd())
	if m.popup.Kind != PopupConnTest {
		t.Fatalf("popup = %d, want connection test", m.popup.Kind)
	}
	if m.popup.Provider != providerStore {
		t.Errorf("provider = %q, want %q", m.popup.Provider, providerStore)
	}
	press(m, "esc")
	if m.popup.Kind != PopupHidden {
		t.Errorf("popup after dismiss = %d, want hidden", m.popup.Kind)
	}

	press(m, "h")
	cmd = press(m, "t")
	m.Update(cmd())
	if m.popup.Provider != providerDatabase {
		t.Errorf("provider = %q, want %q", m.popup.Provider, providerDatabase)
	}
}

func TestPopupSwallowsNormalKeys(t *testing.T) {
	store := &fakeStore{snapshots: testSnapshots(2)}
	m, _ := newTestModel(store)
	loadList(t, m)

	press(m, "enter")
	if m.popup.Kind != PopupConfirmRestore {
		t.Fatalf("popup = %d, want confirm restore", m.popup.Kind)
	}

	press(m, "tab", "j", "e")
	if m.focus != FieldSnapshotList {
		t.Errorf("focus changed under a popup: %d", m.focus)
	}
	if m.selected != 0 {
		t.Errorf("selection changed under a popup: %d", m.selected)
	}
	if m.mode != ModeNormal {
		t.Errorf("mode changed under a popup: %d", m.mode)
	}

	press(m, "n")
	if m.popup.Kind != PopupHidden {
		t.Errorf("popup after n = %d, want hidden", m.popup.Kind)
	}
}
