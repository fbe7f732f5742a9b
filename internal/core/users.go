package core

import (
	"context"

	"genebank/internal/permission"
	"genebank/pkg/domain"
)

// CreateGroup stores an ownership group.
func (s *Service) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	var created domain.Group
	_, err := s.run(ctx, "group.create", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateGroup(domain.Group{Name: name})
		return err
	})
	return created, err
}

// EnsureGroup returns the named group, creating it when it does not exist yet.
func (s *Service) EnsureGroup(ctx context.Context, name string) (domain.Group, error) {
	var group domain.Group
	_, err := s.run(ctx, "group.ensure", func(tx domain.Transaction) error {
		if existing, ok := tx.Snapshot().FindGroupByName(name); ok {
			group = existing
			return nil
		}
		var err error
		group, err = tx.CreateGroup(domain.Group{Name: name})
		return err
	})
	return group, err
}

// EnsureAdminGroup creates the policy's admin group when it is missing, so
// records owned by admins without groups of their own have an owner.
func (s *Service) EnsureAdminGroup(ctx context.Context) error {
	_, err := s.EnsureGroup(ctx, s.policy.AdminGroupName())
	return err
}

// CreateUser stores an account belonging to existing groups.
func (s *Service) CreateUser(ctx context.Context, username string, groups []string, staff bool) (domain.User, error) {
	var created domain.User
	_, err := s.run(ctx, "user.create", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateUser(domain.User{Username: username, Groups: groups, IsStaff: staff})
		return err
	})
	return created, err
}

// Authenticate resolves a verified username to an actor. Unknown users are unauthenticated.
func (s *Service) Authenticate(ctx context.Context, username string) (permission.Actor, error) {
	var actor permission.Actor
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		u, ok := v.FindUserByUsername(username)
		if !ok {
			return domain.ErrUnauthenticated
		}
		actor = permission.Actor{Username: u.Username, Groups: append([]string(nil), u.Groups...), IsStaff: u.IsStaff}
		return nil
	})
	if err != nil {
		return permission.Anonymous(), err
	}
	return actor, nil
}
