package ability

import (
	"errors"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
)

var ErrForbidden = errors.New("not permitted")

type Action string

const (
	Read    Action = "read"
	Edit    Action = "edit"
	Destroy Action = "destroy"
)

func (a Action) IsValid() bool {
	switch a {
	case Read, Edit, Destroy:
		return true
	}
	return false
}

// Can reports whether principal may perform action on resource. Depositors
// hold every known action on what they deposited; nobody else holds any.
func Can(principal models.Principal, action Action, resource models.Owned) bool {
	if resource == nil || principal.ID == uuid.Nil {
		return false
	}
	if !action.IsValid() {
		return false
	}
	return resource.DepositorID() == principal.ID
}

// Ability answers permission checks for a single principal.
type Ability struct {
	principal models.Principal
}

func New(principal models.Principal) *Ability {
	return &Ability{principal: principal}
}

func (a *Ability) Principal() models.Principal {
	return a.principal
}

func (a *Ability) Can(action Action, resource models.Owned) bool {
	return Can(a.principal, action, resource)
}

func (a *Ability) Authorize(action Action, resource models.Owned) error {
	if !a.Can(action, resource) {
		return ErrForbidden
	}
	return nil
}

// Permissions is the set of actions a principal holds on one resource.
type Permissions struct {
	Read    bool `json:"read"`
	Edit    bool `json:"edit"`
	Destroy bool `json:"destroy"`
}

func (a *Ability) For(resource models.Owned) Permissions {
	return Permissions{
		Read:    a.Can(Read, resource),
		Edit:    a.Can(Edit, resource),
		Destroy: a.Can(Destroy, resource),
	}
}
