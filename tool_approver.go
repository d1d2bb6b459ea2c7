package intentagent

import (
	"errors"
	"fmt"
	"strings"
)

var ErrToolDisabled = errors.New("tool is disabled")

// ToolApprover decides whether a requested tool may run.
type ToolApprover struct {
	disabled map[string]bool
}

// NewToolApprover refuses every tool named in disabled.
func NewToolApprover(disabled ...string) *ToolApprover {
	a := &ToolApprover{disabled: make(map[string]bool)}
	for _, name := range disabled {
		if name = strings.TrimSpace(name); name != "" {
			a.disabled[name] = true
		}
	}
	return a
}

// Approve returns nil when the tool may run. A nil approver allows all.
func (a *ToolApprover) Approve(tool string, args map[string]interface{}) error {
	if a == nil {
		return nil
	}
	if a.disabled[tool] {
		return fmt.Errorf("%w: %s", ErrToolDisabled, tool)
	}
	return nil
}
