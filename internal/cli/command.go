package cli

import (
	"context"
	"os/exec"
	"strings"

	"github.com/grebekit/grebe/patch"
	"github.com/pkg/errors"
)

// CommandOperation runs one shell command as a patch body. The command's
// combined output is folded into the error on failure.
type CommandOperation struct {
	command string
}

var _ patch.Operation = (*CommandOperation)(nil)

func Command(command string) CommandOperation {
	return CommandOperation{command: command}
}

func (c CommandOperation) Execute(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", c.command)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "command [%s] failed: %s", c.command, strings.TrimSpace(string(out)))
	}

	return nil
}
