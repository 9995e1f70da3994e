// Package policy decides who may do what. It has no store or transport dependency.
package policy

import "github.com/spw3bt3ch/Teachers-blog/internal/models"

// Action is an operation an actor attempts on a resource.
type Action string

const (
	ActionCreate         Action = "create"
	ActionReadDraft      Action = "read_draft"
	ActionUpdate         Action = "update"
	ActionPublish        Action = "publish"
	ActionDelete         Action = "delete"
	ActionViewStats      Action = "view_stats"
	ActionViewActivities Action = "view_activities"
	ActionManageTaxonomy Action = "manage_taxonomy"
)

// Kind is the type of resource being accessed.
type Kind string

const (
	KindPost      Kind = "post"
	KindComment   Kind = "comment"
	KindUser      Kind = "user"
	KindDashboard Kind = "dashboard"
	KindTaxonomy  Kind = "taxonomy"
)

// Actor is the authenticated caller. A nil *Actor is anonymous.
type Actor struct {
	ID   uint
	Role models.Role
}

// Resource identifies what is being accessed. OwnerID is the author for posts and
// comments and the user's own ID for users.
type Resource struct {
	Kind    Kind
	OwnerID uint
}

// Post, Comment, User, Dashboard and Taxonomy build resources.
func Post(authorID uint) Resource { return Resource{Kind: KindPost, OwnerID: authorID} }

func Comment(authorID uint) Resource { return Resource{Kind: KindComment, OwnerID: authorID} }

func User(id uint) Resource { return Resource{Kind: KindUser, OwnerID: id} }

func Dashboard() Resource { return Resource{Kind: KindDashboard} }

func Taxonomy() Resource { return Resource{Kind: KindTaxonomy} }

// Decision is the outcome of Authorize. Code is the error code to surface on denial.
type Decision struct {
	Allowed bool
	Code    string
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(code, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Err converts a denial into the AppError handlers return. Nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Code {
	case models.CodeUnauthorized:
		return models.NewUnauthorizedError(d.Reason)
	default:
		return models.NewForbiddenError(d.Reason)
	}
}

// Authorize applies the access rules for actor performing action on res.
func Authorize(actor *Actor, res Resource, action Action) Decision {
	// dashboard denials surface as 401 for every caller
	if res.Kind == KindDashboard {
		if actor != nil && actor.ID != 0 && actor.Role == models.RoleAdmin {
			return allow
		}
		return deny(models.CodeUnauthorized, "Unauthorized")
	}

	if actor == nil || actor.ID == 0 {
		return deny(models.CodeUnauthorized, "Unauthorized")
	}
	isAdmin := actor.Role == models.RoleAdmin
	isOwner := res.OwnerID != 0 && actor.ID == res.OwnerID

	switch res.Kind {
	case KindPost:
		switch action {
		case ActionCreate:
			return allow
		case ActionReadDraft, ActionUpdate, ActionPublish, ActionDelete:
			if isOwner || isAdmin {
				return allow
			}
			return deny(models.CodeForbidden, "Forbidden")
		}
	case KindComment:
		switch action {
		case ActionCreate:
			return allow
		case ActionDelete:
			if isOwner || isAdmin || actor.Role == models.RoleModerator {
				return allow
			}
			return deny(models.CodeForbidden, "Forbidden")
		}
	case KindUser:
		if action == ActionUpdate && (isOwner || isAdmin) {
			return allow
		}
		return deny(models.CodeForbidden, "Forbidden")
	case KindTaxonomy:
		if action == ActionManageTaxonomy && isAdmin {
			return allow
		}
		return deny(models.CodeForbidden, "Forbidden")
	}
	return deny(models.CodeForbidden, "Forbidden")
}
