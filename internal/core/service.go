// Package core orchestrates the catalogue operations: each one checks the
// access policy, resolves references and runs inside a single store
// transaction.
package core

import (
	"context"

	"genebank/internal/blob"
	"genebank/internal/catalog"
	"genebank/internal/infra/persistence/memory"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

// Service exposes the transactional catalogue operations.
type Service struct {
	store   domain.PersistentStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	policy  permission.Policy
	archive *blob.Archive
}

// NewService constructs a service backed by store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		store:   store,
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		policy:  o.policy,
		archive: o.archive,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying store.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Policy returns the access policy in force.
func (s *Service) Policy() permission.Policy { return s.policy }

func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) (domain.Result, error) {
	start := s.clock.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	elapsed := s.clock.Now().Sub(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logger.Warn("operation failed", "op", op, "error", err.Error(), "duration", elapsed)
		return res, err
	}
	s.logger.Info("operation committed", "op", op, "changes", len(res.Changes), "duration", elapsed)
	return res, nil
}

func (s *Service) view(ctx context.Context, op string, fn func(v domain.TransactionView) error) error {
	start := s.clock.Now()
	err := s.store.View(ctx, fn)
	elapsed := s.clock.Now().Sub(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logger.Debug("read failed", "op", op, "error", err.Error())
	}
	return err
}

// deny picks the refusal for an actor lacking a right on a visible object.
func deny(actor permission.Actor) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}

// guard applies the visibility rule before the action rule so that invisible
// objects are reported as missing.
func (s *Service) guard(actor permission.Actor, obj permission.Object, notFound error, allowed func(permission.Actor, permission.Object) bool) error {
	if !s.policy.CanRetrieve(actor, obj) {
		return notFound
	}
	if !allowed(actor, obj) {
		return deny(actor)
	}
	return nil
}

func findInstitute(view domain.TransactionView, code string) (domain.Institute, error) {
	inst, ok := view.FindInstituteByCode(code)
	if !ok {
		return domain.Institute{}, domain.ReferenceError{Entity: domain.EntityInstitute, Key: code}
	}
	return inst, nil
}

func requireGroup(view domain.TransactionView, name string) error {
	if _, ok := view.FindGroupByName(name); !ok {
		return domain.ReferenceError{Entity: domain.EntityGroup, Key: name}
	}
	return nil
}

func visibility(p permission.Policy, actor permission.Actor) catalog.Visibility {
	return catalog.Visibility(p.Visible(actor))
}
