package session

import (
	"io"
	"os/exec"

	"github.com/creack/pty"

	"ghostconf/logging"
)

func spawnPTY(s *Session, onExit func(id string)) error {
	name, args := s.Launch.Argv()
	cmd := exec.Command(name, args...)
	cmd.Dir = s.Launch.Dir
	cmd.Env = append(cmd.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	s.ptmx = ptmx
	s.cmd = cmd

	logging.Debug("session started", "id", s.ID, "shell", name, "dir", cmd.Dir)
	go readLoop(s, onExit)
	return nil
}

func readLoop(s *Session, onExit func(id string)) {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.deliver(data)
		}
		if err != nil {
			if err != io.EOF {
				logging.Debug("session PTY read ended", "id", s.ID, "err", err)
			}
			if s.cmd != nil {
				s.cmd.Wait()
			}
			close(s.done)
			onExit(s.ID)
			return
		}
	}
}

// Resize sets the terminal size of the shell.
func (s *Session) Resize(cols, rows uint16) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
}
