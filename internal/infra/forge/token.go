package forge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TokenFromCommand runs a shell command and returns the first line of its
// stdout, for tokens kept in password managers instead of the environment.
func TokenFromCommand(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(command) == "" {
		return "", ErrTokenRequired
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("token command: %s: %w", msg, err)
		}
		return "", fmt.Errorf("token command: %w", err)
	}

	token, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: token command produced no output", ErrTokenRequired)
	}
	return token, nil
}
