package commands

import (
	"strings"

	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// CommandLogger returns the command logger for one command group, such as
// "markup", tagged with component and group fields.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := strings.TrimSpace(group)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":     "command",
		"command_group": name,
	})
}
