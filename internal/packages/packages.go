// Package packages enables, disables and lists packages through the device's
// package manager.
package packages

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPackage is returned when no package name is given.
	ErrEmptyPackage = errors.New("empty package name")
	// ErrNotApplied means the package manager answered without reporting the
	// requested state.
	ErrNotApplied = errors.New("package manager did not apply the change")
)

// Actions passed to an Observer.
const (
	ActionDisable = "disable"
	ActionEnable  = "enable"
)

// Runner executes one shell command on the device.
type Runner interface {
	RunCommand(ctx context.Context, command string) (string, error)
}

const listDisabledCmd = "pm list packages -d"

func disableCmd(pkg string) string { return "pm disable-user --user 0 " + pkg }
func enableCmd(pkg string) string  { return "pm enable " + pkg }

// Disable disables pkg for the primary user and returns the package manager's output.
func Disable(ctx context.Context, r Runner, pkg string) (string, error) {
	if pkg == "" {
		return "", ErrEmptyPackage
	}
	return r.RunCommand(ctx, disableCmd(pkg))
}

// Enable re-enables pkg and returns the package manager's output.
func Enable(ctx context.Context, r Runner, pkg string) (string, error) {
	if pkg == "" {
		return "", ErrEmptyPackage
	}
	return r.RunCommand(ctx, enableCmd(pkg))
}

// ListDisabled returns the raw output of the disabled-package listing.
// Use ParseList to split it into names.
func ListDisabled(ctx context.Context, r Runner) (string, error) {
	return r.RunCommand(ctx, listDisabledCmd)
}

// ParseList extracts package names from "package:<name>" lines.
func ParseList(output string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, ok := strings.CutPrefix(line, "package:")
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Confirm checks the package manager's reply to a disable or enable. The
// command's exit status is not part of the output, so a refusal such as an
// unknown package only shows up as the missing "new state:" line.
func Confirm(action, output string) error {
	var want string
	switch action {
	case ActionDisable:
		want = "new state: disabled-user"
	case ActionEnable:
		want = "new state: enabled"
	default:
		return fmt.Errorf("unknown package action %q", action)
	}
	if strings.Contains(strings.ToLower(output), want) {
		return nil
	}
	if output == "" {
		return ErrNotApplied
	}
	return fmt.Errorf("%w: %s", ErrNotApplied, output)
}

// Result is the outcome of one package in a batch.
type Result struct {
	Package string
	Output  string
	Err     error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Observer is notified after each package in a batch completes.
type Observer func(action string, res Result)

// DisableAll disables each package in order. A failure on one package does not
// stop the rest; the returned slice has one Result per input, in input order.
func DisableAll(ctx context.Context, r Runner, pkgs []string, observe Observer) []Result {
	return batch(ctx, ActionDisable, pkgs, observe, func(pkg string) (string, error) {
		return Disable(ctx, r, pkg)
	})
}

// EnableAll is DisableAll for Enable.
func EnableAll(ctx context.Context, r Runner, pkgs []string, observe Observer) []Result {
	return batch(ctx, ActionEnable, pkgs, observe, func(pkg string) (string, error) {
		return Enable(ctx, r, pkg)
	})
}

func batch(ctx context.Context, action string, pkgs []string, observe Observer, op func(string) (string, error)) []Result {
	results := make([]Result, 0, len(pkgs))
	for _, pkg := range pkgs {
		var res Result
		if err := ctx.Err(); err != nil {
			res = Result{Package: pkg, Err: fmt.Errorf("%s %s: %w", action, pkg, err)}
		} else {
			out, err := op(pkg)
			res = Result{Package: pkg, Output: strings.TrimSpace(out)}
			if err != nil {
				res.Err = fmt.Errorf("%s %s: %w", action, pkg, err)
			}
		}
		if observe != nil {
			observe(action, res)
		}
		results = append(results, res)
	}
	return results
}
