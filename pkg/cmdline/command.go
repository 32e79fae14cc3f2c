package cmdline

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CommandManager wires a flagManager to a cobra root command, reproducing
// the RegisterCmd/RegisterFlagForCmd call surface consumed elsewhere in
// this tree's cobra-based entrypoints; the upstream package this was
// modeled on was not available in the retrieval pack, so only the surface
// actually exercised here is implemented.
type CommandManager struct {
	root  *cobra.Command
	flags *flagManager
}

// NewCommandManager wraps root, which must already be constructed by the
// caller (Use/Short/Long/RunE set up beforehand).
func NewCommandManager(root *cobra.Command) *CommandManager {
	return &CommandManager{root: root, flags: newFlagManager()}
}

// RegisterCmd adds cmd as a child of the managed root command.
func (m *CommandManager) RegisterCmd(cmd *cobra.Command) {
	m.root.AddCommand(cmd)
}

// RegisterFlagForCmd binds flag to one or more commands.
func (m *CommandManager) RegisterFlagForCmd(flag *Flag, cmds ...*cobra.Command) {
	if err := m.flags.registerFlagForCmd(flag, cmds...); err != nil {
		fmt.Fprintf(os.Stderr, "register flag %q: %v\n", flag.Name, err)
		os.Exit(1)
	}
}

// UpdateCmdFlagFromEnv applies any environment-sourced overrides for cmd's
// flags, using prefix (e.g. "LINGLONG_") to namespace the lookup.
func (m *CommandManager) UpdateCmdFlagFromEnv(cmd *cobra.Command, prefix string) error {
	return m.flags.updateCmdFlagFromEnv(cmd, prefix)
}
