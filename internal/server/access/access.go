// Package access decides whether a principal may act on a project.
//
// Projects are private to their owner: every action is allowed for the owner
// and denied for everybody else. A project that does not exist is denied the
// same way, so callers cannot probe for other users' project ids.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/server/models"
)

type Action int

const (
	Read Action = iota
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Authorize returns nil when userID owns project, otherwise an error
// wrapping common.ErrorForbidden. A nil project is a project that was not
// found.
func Authorize(userID string, project *models.Project, action Action) error {
	if userID == "" || project == nil || project.UserID != userID {
		return fmt.Errorf("%w: %s project", common.ErrorForbidden, action)
	}
	return nil
}
