package session

import (
	"bytes"
	"os"
	"os/exec"
	"sync"
	"time"
)

// maxScrollbackBytes caps the replay buffer regardless of its line limit.
const maxScrollbackBytes = 1 << 20

// Session is one try-out shell started from a config.
type Session struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PresetID   string    `json:"presetId,omitempty"`
	Launch     Launch    `json:"launch"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Connected  bool      `json:"connected"`

	cmd        *exec.Cmd
	ptmx       *os.File
	scrollback *scrollbackBuf
	outChan    chan []byte
	kickChan   chan struct{}
	outMu      sync.Mutex
	done       chan struct{}
}

// scrollbackBuf keeps the last maxLines lines of output, and never more than
// maxBytes bytes. A trailing line without a newline counts as a line.
type scrollbackBuf struct {
	mu       sync.Mutex
	data     []byte
	newlines int
	maxLines int
	maxBytes int
}

func newScrollbackBuf(maxLines int) *scrollbackBuf {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	return &scrollbackBuf{maxLines: maxLines, maxBytes: maxScrollbackBytes}
}

// lineCount is the number of lines held, partial tail included.
func (s *scrollbackBuf) lineCount() int {
	if len(s.data) > 0 && s.data[len(s.data)-1] != '\n' {
		return s.newlines + 1
	}
	return s.newlines
}

func (s *scrollbackBuf) Write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, p...)
	s.newlines += bytes.Count(p, []byte{'\n'})

	for s.lineCount() > s.maxLines {
		i := bytes.IndexByte(s.data, '\n')
		if i < 0 {
			break
		}
		s.data = s.data[i+1:]
		s.newlines--
	}
	if len(s.data) > s.maxBytes {
		excess := len(s.data) - s.maxBytes
		s.newlines -= bytes.Count(s.data[:excess], []byte{'\n'})
		s.data = s.data[excess:]
	}
}

func (s *scrollbackBuf) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return nil
	}
	cp := make([]byte, len(s.data))
	copy(cp, s.data)
	return cp
}

// SetClient registers a channel to receive live PTY output. If a previous
// client is connected it is kicked: its kick channel is closed so the
// WebSocket handler can close that connection. Returns a kick channel that
// will be closed if this client is itself later displaced.
func (s *Session) SetClient(ch chan []byte) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.Connected = true
	return kick
}

// ClearClient is called when a connection ends. It only updates session state
// if ch is still the current owner, so a displaced connection cannot clear a
// newer one. It always closes ch so the pump goroutine exits.
func (s *Session) ClearClient(ch chan []byte) {
	s.outMu.Lock()
	owned := s.outChan == ch
	if owned {
		s.outChan = nil
		s.Connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
}

// ScrollbackSnapshot returns a copy of the scrollback buffer.
func (s *Session) ScrollbackSnapshot() []byte {
	return s.scrollback.Snapshot()
}

// Done returns a channel that is closed when the shell exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// WriteToPTY writes input bytes to the PTY master.
func (s *Session) WriteToPTY(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// deliver records output and forwards it to the connected client, dropping
// it when the client is slow.
func (s *Session) deliver(data []byte) {
	s.scrollback.Write(data)
	s.LastActive = time.Now()

	s.outMu.Lock()
	if s.outChan != nil {
		select {
		case s.outChan <- data:
		default:
		}
	}
	s.outMu.Unlock()
}
