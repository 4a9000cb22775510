package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/pgman/internal/s3store"
)

const (
	chunkSize          = 256 * 1024
	rateSampleInterval = 500 * time.Millisecond
	successHold        = time.Second
)

// transfer tracks a download in flight. Exactly one chunk command is
// outstanding at a time; pending marks that window so a cancellation
// decided mid-chunk can be applied when the result lands.
type transfer struct {
	snapshot s3store.Snapshot
	body     io.ReadCloser
	file     *os.File
	path     string
	total    int64
	done     int64

	startedAt  time.Time
	lastSample time.Time
	lastBytes  int64
	rate       float64

	buf []byte

	pending         bool
	cancelConfirmed bool
}

func (t *transfer) progress() float64 {
	if t.total <= 0 {
		return 0
	}
	p := float64(t.done) / float64(t.total)
	if p > 1 {
		p = 1
	}
	return p
}

// sampleRate updates the throughput estimate at most every half second.
func (t *transfer) sampleRate(now time.Time) {
	if t.lastSample.IsZero() {
		t.lastSample = now
		t.lastBytes = t.done
		return
	}
	elapsed := now.Sub(t.lastSample)
	if elapsed < rateSampleInterval {
		return
	}
	t.rate = float64(t.done-t.lastBytes) / elapsed.Seconds()
	t.lastSample = now
	t.lastBytes = t.done
}

// resetRateBaseline discards the sampling window so time spent paused in
// the cancel prompt does not drag the next estimate down.
func (t *transfer) resetRateBaseline(now time.Time) {
	t.lastSample = now
	t.lastBytes = t.done
}

func (t *transfer) cleanup() {
	if t.body != nil {
		t.body.Close()
	}
	if t.file != nil {
		t.file.Close()
	}
	if t.path != "" {
		os.Remove(t.path)
	}
}

// startDownloadCmd opens the object and the temp file the dump is written to.
func (m *Model) startDownloadCmd(snap s3store.Snapshot) tea.Cmd {
	store := m.store
	bucket := m.storeCfg.Bucket
	return func() tea.Msg {
		body, length, err := store.Fetch(context.Background(), bucket, snap.Key)
		if err != nil {
			return downloadStartedMsg{err: fmt.Errorf("failed to fetch %s: %w", snap.Key, err)}
		}
		if length < 0 {
			length = snap.Size
		}
		if length <= 0 {
			body.Close()
			return downloadStartedMsg{err: errors.New("could not determine file size")}
		}
		file, err := os.CreateTemp("", "pg-backup-*.dump")
		if err != nil {
			body.Close()
			return downloadStartedMsg{err: fmt.Errorf("failed to create temp file: %w", err)}
		}
		return downloadStartedMsg{xfer: &transfer{
			snapshot:  snap,
			body:      body,
			file:      file,
			path:      file.Name(),
			total:     length,
			startedAt: time.Now(),
			buf:       make([]byte, chunkSize),
		}}
	}
}

// readChunkCmd reads one chunk and appends it to the temp file. The Update
// loop decides whether to schedule the next one.
func readChunkCmd(t *transfer) tea.Cmd {
	return func() tea.Msg {
		n, err := t.body.Read(t.buf)
		if n > 0 {
			if _, werr := t.file.Write(t.buf[:n]); werr != nil {
				return downloadChunkMsg{n: n, err: werr}
			}
		}
		return downloadChunkMsg{n: n, err: err}
	}
}

func (m *Model) handleDownloadStarted(msg downloadStartedMsg) tea.Cmd {
	if msg.err != nil {
		m.xfer = nil
		m.popup = Popup{Kind: PopupError, Message: msg.err.Error()}
		return nil
	}
	m.xfer = msg.xfer
	m.popup = Popup{Kind: PopupDownloading}
	m.xfer.pending = true
	return readChunkCmd(m.xfer)
}

func (m *Model) handleDownloadChunk(msg downloadChunkMsg) tea.Cmd {
	t := m.xfer
	if t == nil {
		return nil
	}
	t.pending = false
	t.done += int64(msg.n)
	t.sampleRate(time.Now())

	if t.cancelConfirmed {
		m.abortDownload()
		return nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, io.EOF) {
			return m.finishDownload()
		}
		m.failDownload(msg.err)
		return nil
	}

	// The cancel prompt suspends the pipeline; resuming schedules the
	// next chunk.
	if m.popup.Kind == PopupConfirmCancel {
		return nil
	}

	m.popup = Popup{Kind: PopupDownloading, Progress: t.progress(), Rate: t.rate}
	t.pending = true
	return readChunkCmd(t)
}

func (m *Model) finishDownload() tea.Cmd {
	t := m.xfer
	t.body.Close()
	if err := t.file.Close(); err != nil {
		m.failDownload(err)
		return nil
	}

	m.result = &Result{
		ArtifactPath: t.path,
		SnapshotKey:  t.snapshot.Key,
		SizeBytes:    t.done,
		Duration:     time.Since(t.startedAt),
	}
	m.xfer = nil
	m.popup = Popup{Kind: PopupSuccess, Message: fmt.Sprintf("Downloaded %s", t.snapshot.Key)}
	m.logger.Debug("download complete", "key", t.snapshot.Key, "bytes", t.done, "path", t.path)

	return tea.Tick(successHold, func(time.Time) tea.Msg {
		return successTimeoutMsg{}
	})
}

func (m *Model) failDownload(err error) {
	m.logger.Debug("download failed", "error", err)
	m.xfer.cleanup()
	m.xfer = nil
	m.popup = Popup{Kind: PopupError, Message: err.Error()}
}

func (m *Model) abortDownload() {
	m.xfer.cleanup()
	m.xfer = nil
	m.popup = Popup{}
}
