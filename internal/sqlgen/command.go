package sqlgen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command is a Generator backed by an external program. The prompt built by
// BuildPrompt is written to its stdin and its stdout is taken as the reply.
type Command struct {
	Path         string
	Args         []string
	SystemPrompt string        // DefaultSystemPrompt when empty
	Timeout      time.Duration // no limit when zero
}

func (c *Command) Generate(ctx context.Context, question, schemaContext string) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	system := c.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = strings.NewReader(BuildPrompt(schemaContext, system, question))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("generator %s: %w: %s", c.Path, err, msg)
		}
		return "", fmt.Errorf("generator %s: %w", c.Path, err)
	}
	return stdout.String(), nil
}
