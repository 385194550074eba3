package adb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/FluidXR/wearctl/internal/session"
)

// Protocol is an authorized debug session on one device. Each command runs
// over its own `adb shell` channel.
type Protocol struct {
	client *Client
	serial string
}

var _ session.Protocol = (*Protocol)(nil)

// OpenChannel starts `adb shell <command>` on the device.
func (p *Protocol) OpenChannel(ctx context.Context, command string) (session.Channel, error) {
	cctx, cancel := context.WithCancel(ctx)
	cmd := p.client.command(cctx, p.serial, "shell", command)
	ch := &Channel{cmd: cmd, cancel: cancel}
	cmd.Stderr = &ch.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("adb shell %q: %w", command, err)
	}
	ch.stdout = stdout
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("adb shell %q: %w", command, err)
	}
	return ch, nil
}

// Channel is one running `adb shell` invocation.
type Channel struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr bytes.Buffer

	waitOnce sync.Once
	waitErr  error
}

var _ session.Channel = (*Channel)(nil)

func (c *Channel) wait() error {
	c.waitOnce.Do(func() { c.waitErr = c.cmd.Wait() })
	return c.waitErr
}

// ReceiveAll reads the command's output until the device closes the channel.
// Output the command itself wrote to stderr is appended after stdout. A
// non-zero exit status of the remote command is not an error; failures of
// adb itself are.
func (c *Channel) ReceiveAll(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, c.cancel)
	defer stop()

	data, readErr := io.ReadAll(c.stdout)
	waitErr := c.wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, fmt.Errorf("read adb shell output: %w", readErr)
	}

	adbErrs, remote := splitStderr(c.stderr.String())
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) || len(adbErrs) > 0 {
			return nil, fmt.Errorf("adb shell: %w: %s", waitErr, strings.Join(adbErrs, "; "))
		}
	}
	if remote != "" {
		data = append(data, remote...)
	}
	return data, nil
}

// Close stops the adb process if it is still running and reaps it.
func (c *Channel) Close() error {
	c.cancel()
	err := c.wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Already reported by ReceiveAll, or caused by the cancel above.
		return nil
	}
	return err
}

// splitStderr separates errors printed by the adb client from stderr output of
// the remote command.
func splitStderr(stderr string) (adbErrs []string, remote string) {
	var sb strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(stderr))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "error: ") || strings.HasPrefix(line, "adb: ") {
			adbErrs = append(adbErrs, strings.TrimSpace(line))
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return adbErrs, sb.String()
}
