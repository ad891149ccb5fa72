package shaders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spaghettifunk/contentbuild/engine/core"
)

// Runner executes one external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, command string, args []string) (string, error)
}

type cmdOptions struct {
	args   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withStream(stream bool) cmdOption {
	return func(o *cmdOptions) {
		o.stream = stream
	}
}

// ExecRunner runs commands with os/exec. Stream copies the tool's output to the terminal
// as it runs.
type ExecRunner struct {
	Stream bool
}

func (r ExecRunner) Run(ctx context.Context, command string, args []string) (string, error) {
	return executeCmd(ctx, command, withArgs(args...), withStream(r.Stream))
}

func executeCmd(ctx context.Context, command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	core.LogDebug("Executing: %s %s", command, strings.Join(opts.args, " "))
	cmd := exec.CommandContext(ctx, command, opts.args...)

	var b bytes.Buffer
	if opts.stream {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return b.String(), fmt.Errorf("error executing %s: %w", command, ctxErr)
		}
		return b.String(), fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}
