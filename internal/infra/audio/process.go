package audio

import (
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// SourcePlaceholder is replaced by the track source in player arguments.
const SourcePlaceholder = "{src}"

// ProcessOpener opens outputs backed by an external player process.
type ProcessOpener struct {
	command string
	args    []string
}

// NewProcessOpener creates a new ProcessOpener.
// When args contain no placeholder, the source is appended as the last argument.
func NewProcessOpener(command string, args []string) (*ProcessOpener, error) {
	if command == "" {
		return nil, errors.New("player command is required")
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil, errors.Wrapf(err, "player command not found: %s", command)
	}
	return &ProcessOpener{command: command, args: args}, nil
}

// Open implements Opener.
func (o *ProcessOpener) Open(src string, _ time.Duration) (Output, error) {
	if src == "" {
		return nil, ErrNoSource
	}
	return &Process{
		command: o.command,
		args:    expandArgs(o.args, src),
		src:     src,
		paused:  true,
		done:    make(chan struct{}),
	}, nil
}

func expandArgs(args []string, src string) []string {
	out := make([]string, 0, len(args)+1)
	replaced := false
	for _, a := range args {
		if strings.Contains(a, SourcePlaceholder) {
			a = strings.ReplaceAll(a, SourcePlaceholder, src)
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, src)
	}
	return out
}

// Process plays a source by running an external player.
// The process starts on the first Play; pause and resume stop and continue it.
type Process struct {
	mu sync.Mutex

	command string
	args    []string
	src     string
	cmd     *exec.Cmd
	paused  bool

	done     chan struct{}
	doneOnce sync.Once
}

// Source implements Output.
func (p *Process) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// Play implements Output.
func (p *Process) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == "" {
		return ErrNoSource
	}
	if !p.paused {
		return nil
	}

	if p.cmd == nil {
		cmd := exec.Command(p.command, p.args...)
		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "failed to start player: %s", p.command)
		}
		p.cmd = cmd
		zlog.Debug().Msgf("audio: player started: pid=%d src=%s", cmd.Process.Pid, p.src)
		go p.wait(cmd)
	} else if err := resumeProcess(p.cmd.Process); err != nil {
		return errors.Wrap(err, "failed to resume player")
	}

	p.paused = false
	return nil
}

// Pause implements Output.
func (p *Process) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused || p.cmd == nil {
		return nil
	}
	if err := suspendProcess(p.cmd.Process); err != nil {
		return errors.Wrap(err, "failed to pause player")
	}
	p.paused = true
	return nil
}

// Paused implements Output.
func (p *Process) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Clear implements Output.
func (p *Process) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.src = ""
	p.paused = true
	if p.cmd == nil {
		p.finish()
		return nil
	}
	// A stopped process must be continued before it can handle the kill.
	_ = resumeProcess(p.cmd.Process)
	if err := p.cmd.Process.Kill(); err != nil {
		zlog.Debug().Msgf("audio: kill player: %v", err)
	}
	return nil
}

// Done implements Output.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

func (p *Process) wait(cmd *exec.Cmd) {
	err := cmd.Wait()
	if err != nil {
		zlog.Debug().Msgf("audio: player exited: %v", err)
	}
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.finish()
}

func (p *Process) finish() {
	p.doneOnce.Do(func() {
		close(p.done)
	})
}
