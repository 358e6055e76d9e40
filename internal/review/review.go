// Package review defines the moderation state machine and the single
// authorization policy every read path consults.
package review

import (
	"github.com/pkg/errors"

	"gengallery/internal/model"
)

// Action is an admin review decision. All three states are
// re-enterable; an admin may flip a record back and forth.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPending Action = "pending"
)

// StatusFor maps a review action to the resulting record status.
func StatusFor(action Action) (model.Status, error) {
	switch action {
	case ActionApprove:
		return model.StatusApproved, nil
	case ActionReject:
		return model.StatusRejected, nil
	case ActionPending:
		return model.StatusPending, nil
	}
	return "", errors.Errorf("unknown review action %q", action)
}

// CanView is the gate for every read path: admins see everything,
// everyone else only approved records.
func CanView(status model.Status, isAdmin bool) bool {
	return isAdmin || status == model.StatusApproved
}
