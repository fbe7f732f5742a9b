package core

import (
	"context"

	"genebank/internal/catalog"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

func accessionSetObject(s domain.AccessionSet) permission.Object {
	return permission.Object{Group: s.Group, IsPublic: s.IsPublic}
}

func accessionSetNotFound(instituteCode, number string) error {
	return domain.NotFoundError{Entity: domain.EntityAccessionSet, Key: instituteCode + ":" + number}
}

func findAccessionSet(view domain.TransactionView, instituteCode, number string) (domain.AccessionSet, error) {
	inst, ok := view.FindInstituteByCode(instituteCode)
	if !ok {
		return domain.AccessionSet{}, accessionSetNotFound(instituteCode, number)
	}
	set, ok := view.FindAccessionSetByNumber(inst.ID, number)
	if !ok {
		return domain.AccessionSet{}, accessionSetNotFound(instituteCode, number)
	}
	return set, nil
}

// resolveAccessions maps member references to accession ids. Accessions the
// actor cannot see resolve as missing.
func (s *Service) resolveAccessions(view domain.TransactionView, actor permission.Actor, refs []catalog.AccessionRef) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		inst, err := findInstitute(view, ref.InstituteCode)
		if err != nil {
			return nil, err
		}
		acc, ok := view.FindAccessionByNumber(inst.ID, ref.GermplasmNumber)
		if !ok || !s.policy.CanRetrieve(actor, accessionObject(acc)) {
			return nil, domain.ReferenceError{Entity: domain.EntityAccession, Key: ref.Key()}
		}
		ids = append(ids, acc.ID)
	}
	return ids, nil
}

// ownerGroup is the group a new accession set is assigned to: the actor's
// first group, or the admin group for admins without one.
func (s *Service) ownerGroup(actor permission.Actor) string {
	if g, ok := actor.PrimaryGroup(); ok {
		return g
	}
	return s.policy.AdminGroupName()
}

func accessionSetFromDocument(doc catalog.Document) (*catalog.AccessionSet, error) {
	if err := catalog.ValidateMetadata(domain.EntityAccessionSet, doc.Metadata, catalog.MetadataForbidden); err != nil {
		return nil, err
	}
	return catalog.NewAccessionSetFromPayload(doc)
}

func (s *Service) createAccessionSet(tx domain.Transaction, actor permission.Actor, set *catalog.AccessionSet) (domain.AccessionSet, error) {
	view := tx.Snapshot()
	inst, err := findInstitute(view, set.InstituteCode())
	if err != nil {
		return domain.AccessionSet{}, err
	}
	group := s.ownerGroup(actor)
	if err := requireGroup(view, group); err != nil {
		return domain.AccessionSet{}, err
	}
	ids, err := s.resolveAccessions(view, actor, set.Accessions())
	if err != nil {
		return domain.AccessionSet{}, err
	}
	return tx.CreateAccessionSet(domain.AccessionSet{
		InstituteID:  inst.ID,
		Number:       set.Number(),
		AccessionIDs: ids,
		Group:        group,
		IsPublic:     false,
	})
}

// CreateAccessionSet stores a set owned by the caller's primary group. The
// payload may not carry a metadata envelope.
func (s *Service) CreateAccessionSet(ctx context.Context, actor permission.Actor, doc catalog.Document) (*catalog.AccessionSet, error) {
	if !s.policy.CanCreateAccessionSet(actor) {
		return nil, deny(actor)
	}
	set, err := accessionSetFromDocument(doc)
	if err != nil {
		return nil, err
	}
	var out *catalog.AccessionSet
	_, err = s.run(ctx, "accessionset.create", func(tx domain.Transaction) error {
		rec, err := s.createAccessionSet(tx, actor, set)
		if err != nil {
			return err
		}
		out, err = catalog.NewAccessionSetFromRecord(tx.Snapshot(), rec, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessionSets stores every document or none.
func (s *Service) CreateAccessionSets(ctx context.Context, actor permission.Actor, docs []catalog.Document) ([]*catalog.AccessionSet, error) {
	if !s.policy.CanCreateAccessionSet(actor) {
		return nil, deny(actor)
	}
	batch := &domain.BatchError{}
	sets := make([]*catalog.AccessionSet, len(docs))
	for i, doc := range docs {
		set, err := accessionSetFromDocument(doc)
		if err != nil {
			batch.Add(i, err)
			continue
		}
		sets[i] = set
	}
	if !batch.Empty() {
		return nil, batch
	}
	var out []*catalog.AccessionSet
	_, err := s.run(ctx, "accessionset.bulk_create", func(tx domain.Transaction) error {
		out = make([]*catalog.AccessionSet, 0, len(sets))
		for i, set := range sets {
			rec, err := s.createAccessionSet(tx, actor, set)
			if err != nil {
				batch.Add(i, err)
				continue
			}
			projected, err := catalog.NewAccessionSetFromRecord(tx.Snapshot(), rec, nil)
			if err != nil {
				return err
			}
			out = append(out, projected)
		}
		if !batch.Empty() {
			return batch
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccessionSet returns the set addressed by its identity, projected on fields.
func (s *Service) GetAccessionSet(ctx context.Context, actor permission.Actor, instituteCode, number string, fields []catalog.Field) (*catalog.AccessionSet, error) {
	var out *catalog.AccessionSet
	err := s.view(ctx, "accessionset.get", func(v domain.TransactionView) error {
		rec, err := findAccessionSet(v, instituteCode, number)
		if err != nil {
			return err
		}
		if !s.policy.CanRetrieve(actor, accessionSetObject(rec)) {
			return accessionSetNotFound(instituteCode, number)
		}
		out, err = catalog.NewAccessionSetFromRecord(v, rec, fields)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAccessionSets returns the sets visible to actor that match filter.
func (s *Service) ListAccessionSets(ctx context.Context, actor permission.Actor, filter Filter, fields []catalog.Field) ([]*catalog.AccessionSet, error) {
	out := []*catalog.AccessionSet{}
	err := s.view(ctx, "accessionset.list", func(v domain.TransactionView) error {
		for _, rec := range permission.Filter(s.policy, actor, v.ListAccessionSets(), accessionSetObject) {
			if !filter.matchPublic(rec.IsPublic) {
				continue
			}
			set, err := catalog.NewAccessionSetFromRecord(v, rec, fields)
			if err != nil {
				return err
			}
			if filter.matchAccessionSet(set) {
				out = append(out, set)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAccessionSet replaces the member list of a set. The identity in the
// payload must match the addressed one.
func (s *Service) UpdateAccessionSet(ctx context.Context, actor permission.Actor, instituteCode, number string, doc catalog.Document) (*catalog.AccessionSet, error) {
	set, err := catalog.NewAccessionSetFromPayload(doc)
	if err != nil {
		return nil, err
	}
	if doc.Metadata != nil {
		if err := catalog.ValidateMetadata(domain.EntityAccessionSet, doc.Metadata, catalog.MetadataRequired); err != nil {
			return nil, err
		}
	}
	var out *catalog.AccessionSet
	_, err = s.run(ctx, "accessionset.update", func(tx domain.Transaction) error {
		view := tx.Snapshot()
		current, err := findAccessionSet(view, instituteCode, number)
		if err != nil {
			return err
		}
		obj := accessionSetObject(current)
		if err := s.guard(actor, obj, accessionSetNotFound(instituteCode, number), s.policy.CanUpdate); err != nil {
			return err
		}
		if set.InstituteCode() != instituteCode || set.Number() != number {
			return domain.IdentityChangeError{Entity: domain.EntityAccessionSet}
		}
		meta := catalog.Metadata{Group: current.Group, IsPublic: current.IsPublic}
		if m, ok := set.Metadata(); ok && m != meta {
			if !s.policy.CanPartialUpdate(actor, obj) {
				return deny(actor)
			}
			meta = m
		}
		ids, err := s.resolveAccessions(view, actor, set.Accessions())
		if err != nil {
			return err
		}
		updated, err := tx.UpdateAccessionSet(current.ID, func(rec *domain.AccessionSet) error {
			rec.AccessionIDs = ids
			rec.Group, rec.IsPublic = meta.Group, meta.IsPublic
			return nil
		})
		if err != nil {
			return err
		}
		out, err = catalog.NewAccessionSetFromRecord(tx.Snapshot(), updated, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PatchAccessionSetMetadata changes the group and/or public flag of a set.
func (s *Service) PatchAccessionSetMetadata(ctx context.Context, actor permission.Actor, instituteCode, number string, raw map[string]any) (*catalog.AccessionSet, error) {
	patch, err := catalog.NewMetadataPatch(domain.EntityAccessionSet, raw)
	if err != nil {
		return nil, err
	}
	var out *catalog.AccessionSet
	_, err = s.run(ctx, "accessionset.patch", func(tx domain.Transaction) error {
		current, err := findAccessionSet(tx.Snapshot(), instituteCode, number)
		if err != nil {
			return err
		}
		if err := s.guard(actor, accessionSetObject(current), accessionSetNotFound(instituteCode, number), s.policy.CanPartialUpdate); err != nil {
			return err
		}
		updated, err := tx.UpdateAccessionSet(current.ID, func(rec *domain.AccessionSet) error {
			m := patch.Apply(catalog.Metadata{Group: rec.Group, IsPublic: rec.IsPublic})
			rec.Group, rec.IsPublic = m.Group, m.IsPublic
			return nil
		})
		if err != nil {
			return err
		}
		out, err = catalog.NewAccessionSetFromRecord(tx.Snapshot(), updated, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccessionSet removes a set; its member accessions are kept.
func (s *Service) DeleteAccessionSet(ctx context.Context, actor permission.Actor, instituteCode, number string) error {
	_, err := s.run(ctx, "accessionset.delete", func(tx domain.Transaction) error {
		current, err := findAccessionSet(tx.Snapshot(), instituteCode, number)
		if err != nil {
			return err
		}
		if err := s.guard(actor, accessionSetObject(current), accessionSetNotFound(instituteCode, number), s.policy.CanDestroy); err != nil {
			return err
		}
		return tx.DeleteAccessionSet(current.ID)
	})
	return err
}
