// Package permission holds the access predicates of the catalogue. Every
// predicate is a pure function of the acting user, the policy and the
// ownership envelope of the addressed object.
package permission

// Accession set creator modes.
const (
	CreatorsAdmin         = "admin"
	CreatorsAuthenticated = "authenticated"
)

// DefaultAdminGroup is the group whose members act as administrators.
const DefaultAdminGroup = "admin"

// Actor is the caller of an operation. The zero value is anonymous.
type Actor struct {
	Username string
	Groups   []string
	IsStaff  bool
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

// Authenticated reports whether the actor resolved to a stored user.
func (a Actor) Authenticated() bool { return a.Username != "" }

// PrimaryGroup returns the first group of the actor, if any.
func (a Actor) PrimaryGroup() (string, bool) {
	if len(a.Groups) == 0 {
		return "", false
	}
	return a.Groups[0], true
}

// InGroup reports membership of group.
func (a Actor) InGroup(group string) bool {
	for _, g := range a.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Object is the ownership envelope of a protected record.
type Object struct {
	Group    string
	IsPublic bool
}

// Policy carries the configurable parts of the rules.
type Policy struct {
	AdminGroup           string
	AccessionSetCreators string
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{AdminGroup: DefaultAdminGroup, AccessionSetCreators: CreatorsAdmin}
}

// AdminGroupName returns the admin group, falling back to DefaultAdminGroup.
func (p Policy) AdminGroupName() string { return p.adminGroup() }

func (p Policy) adminGroup() string {
	if p.AdminGroup == "" {
		return DefaultAdminGroup
	}
	return p.AdminGroup
}

// IsAdmin: authenticated and either staff or in the admin group.
func (p Policy) IsAdmin(a Actor) bool {
	return a.Authenticated() && (a.IsStaff || a.InGroup(p.adminGroup()))
}

// CanCreate covers single and bulk creation of accessions and institutes.
func (p Policy) CanCreate(a Actor) bool { return p.IsAdmin(a) }

// CanCreateAccessionSet allows any authenticated actor with a group when the
// policy opens set creation to them.
func (p Policy) CanCreateAccessionSet(a Actor) bool {
	if p.IsAdmin(a) {
		return true
	}
	if p.AccessionSetCreators != CreatorsAuthenticated {
		return false
	}
	_, ok := a.PrimaryGroup()
	return a.Authenticated() && ok
}

// Owns reports whether one of the actor's groups owns o.
func (p Policy) Owns(a Actor, o Object) bool {
	return a.Authenticated() && a.InGroup(o.Group)
}

// CanRetrieve allows public objects, owners and admins.
func (p Policy) CanRetrieve(a Actor, o Object) bool {
	return o.IsPublic || p.Owns(a, o) || p.IsAdmin(a)
}

// Visible is CanRetrieve in the shape used by list filtering and stats.
func (p Policy) Visible(a Actor) func(group string, public bool) bool {
	return func(group string, public bool) bool {
		return p.CanRetrieve(a, Object{Group: group, IsPublic: public})
	}
}

// CanPartialUpdate restricts metadata patches to admins.
func (p Policy) CanPartialUpdate(a Actor, _ Object) bool { return p.IsAdmin(a) }

// CanUpdate allows admins, and owners while the object is not public.
func (p Policy) CanUpdate(a Actor, o Object) bool {
	return p.IsAdmin(a) || (p.Owns(a, o) && !o.IsPublic)
}

// CanDestroy follows the update rule.
func (p Policy) CanDestroy(a Actor, o Object) bool { return p.CanUpdate(a, o) }

// Filter keeps the items visible to the actor.
func Filter[T any](p Policy, a Actor, items []T, envelope func(T) Object) []T {
	if p.IsAdmin(a) {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p.CanRetrieve(a, envelope(item)) {
			out = append(out, item)
		}
	}
	return out
}
