package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
)

// Transmitter is the parent-side handle to a spawned receiver process:
// it writes commands to the child's stdin and reads replies from its
// stdout, forwarding the child's stderr line-by-line to a log sink
// prefixed for visual distinction, per spec §4.3 and §6.
type Transmitter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	Log    func(line string)
}

// Spawn starts the receiver binary with handlerKey as its one
// positional startup argument (spec §4.3: "selects one named handler
// from a static registry by a single positional startup argument").
func Spawn(ctx context.Context, binary, handlerKey string, extraArgs ...string) (*Transmitter, error) {
	args := append([]string{handlerKey}, extraArgs...)
	cmd := exec.CommandContext(ctx, binary, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	t := &Transmitter{cmd: cmd, stdin: stdin, stdout: bufio.NewScanner(stdout)}
	t.stdout.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	go t.forwardLog(stderr)

	return t, nil
}

func (t *Transmitter) forwardLog(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if t.Log != nil {
			t.Log("[worker] " + scanner.Text())
		}
	}
}

// Send writes one message to the child's stdin as a single JSON line.
func (t *Transmitter) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = t.stdin.Write(append(data, '\n'))
	return err
}

// Recv blocks for the next message from the child.
func (t *Transmitter) Recv() (Message, bool) {
	if !t.stdout.Scan() {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(t.stdout.Bytes(), &msg); err != nil {
		return Message{}, false
	}
	return msg, true
}

// Disconnect tears the child down: the parent's contract per spec §4.3
// is to call disconnect and drop its reference.
func (t *Transmitter) Disconnect() error {
	t.stdin.Close()
	return t.cmd.Wait()
}

// Kill forcibly terminates the child, used when Disconnect's graceful
// path is not appropriate (e.g. the caller is tearing down early).
func (t *Transmitter) Kill() error {
	if t.cmd.Process == nil {
		return nil
	}
	return t.cmd.Process.Kill()
}
