package core

import (
	"context"

	"genebank/internal/catalog"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

func accessionObject(a domain.Accession) permission.Object {
	return permission.Object{Group: a.Group, IsPublic: a.IsPublic}
}

func accessionNotFound(instituteCode, number string) error {
	return domain.NotFoundError{Entity: domain.EntityAccession, Key: instituteCode + ":" + number}
}

func findAccession(view domain.TransactionView, instituteCode, number string) (domain.Accession, error) {
	inst, ok := view.FindInstituteByCode(instituteCode)
	if !ok {
		return domain.Accession{}, accessionNotFound(instituteCode, number)
	}
	acc, ok := view.FindAccessionByNumber(inst.ID, number)
	if !ok {
		return domain.Accession{}, accessionNotFound(instituteCode, number)
	}
	return acc, nil
}

// accessionFromDocument validates a create payload: data first, then the
// mandatory metadata envelope.
func accessionFromDocument(doc catalog.Document) (*catalog.Accession, catalog.Metadata, error) {
	acc, err := catalog.NewAccessionFromPayload(doc)
	if err != nil {
		return nil, catalog.Metadata{}, err
	}
	if err := catalog.ValidateMetadata(domain.EntityAccession, doc.Metadata, catalog.MetadataRequired); err != nil {
		return nil, catalog.Metadata{}, err
	}
	meta, _ := acc.Metadata()
	return acc, meta, nil
}

func createAccession(tx domain.Transaction, acc *catalog.Accession, meta catalog.Metadata) (domain.Accession, error) {
	view := tx.Snapshot()
	inst, err := findInstitute(view, acc.InstituteCode())
	if err != nil {
		return domain.Accession{}, err
	}
	if err := requireGroup(view, meta.Group); err != nil {
		return domain.Accession{}, err
	}
	rec, err := tx.CreateAccession(domain.Accession{
		InstituteID:        inst.ID,
		Number:             acc.GermplasmNumber(),
		ConservationStatus: acc.ConservationStatus(),
		IsAvailable:        acc.IsAvailable(),
		IsSaveDuplicate:    acc.IsSaveDuplicate(),
		PUID:               acc.PUID(),
		Group:              meta.Group,
		IsPublic:           meta.IsPublic,
	})
	if err != nil {
		return domain.Accession{}, err
	}
	if err := createPassports(tx, rec.ID, acc.Passports()); err != nil {
		return domain.Accession{}, err
	}
	return rec, nil
}

// CreateAccession stores one accession with its passports.
func (s *Service) CreateAccession(ctx context.Context, actor permission.Actor, doc catalog.Document) (*catalog.Accession, error) {
	if !s.policy.CanCreate(actor) {
		return nil, deny(actor)
	}
	acc, meta, err := accessionFromDocument(doc)
	if err != nil {
		return nil, err
	}
	var out *catalog.Accession
	_, err = s.run(ctx, "accession.create", func(tx domain.Transaction) error {
		rec, err := createAccession(tx, acc, meta)
		if err != nil {
			return err
		}
		out, err = catalog.NewAccessionFromRecord(tx.Snapshot(), rec, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessions stores every document or none. Failures are collected per
// item into a *domain.BatchError.
func (s *Service) CreateAccessions(ctx context.Context, actor permission.Actor, docs []catalog.Document) ([]*catalog.Accession, error) {
	if !s.policy.CanCreate(actor) {
		return nil, deny(actor)
	}
	type item struct {
		acc  *catalog.Accession
		meta catalog.Metadata
	}
	batch := &domain.BatchError{}
	items := make([]item, len(docs))
	for i, doc := range docs {
		acc, meta, err := accessionFromDocument(doc)
		if err != nil {
			batch.Add(i, err)
			continue
		}
		items[i] = item{acc: acc, meta: meta}
	}
	if !batch.Empty() {
		return nil, batch
	}
	var out []*catalog.Accession
	_, err := s.run(ctx, "accession.bulk_create", func(tx domain.Transaction) error {
		out = make([]*catalog.Accession, 0, len(items))
		for i, it := range items {
			rec, err := createAccession(tx, it.acc, it.meta)
			if err != nil {
				batch.Add(i, err)
				continue
			}
			projected, err := catalog.NewAccessionFromRecord(tx.Snapshot(), rec, nil)
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

// GetAccession returns the accession addressed by its identity, projected on fields.
func (s *Service) GetAccession(ctx context.Context, actor permission.Actor, instituteCode, number string, fields []catalog.Field) (*catalog.Accession, error) {
	var out *catalog.Accession
	err := s.view(ctx, "accession.get", func(v domain.TransactionView) error {
		rec, err := findAccession(v, instituteCode, number)
		if err != nil {
			return err
		}
		if !s.policy.CanRetrieve(actor, accessionObject(rec)) {
			return accessionNotFound(instituteCode, number)
		}
		out, err = catalog.NewAccessionFromRecord(v, rec, fields)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAccessions returns the accessions visible to actor that match filter.
func (s *Service) ListAccessions(ctx context.Context, actor permission.Actor, filter Filter, fields []catalog.Field) ([]*catalog.Accession, error) {
	out := []*catalog.Accession{}
	err := s.view(ctx, "accession.list", func(v domain.TransactionView) error {
		for _, rec := range permission.Filter(s.policy, actor, v.ListAccessions(), accessionObject) {
			if !filter.matchPublic(rec.IsPublic) {
				continue
			}
			a, err := catalog.NewAccessionFromRecord(v, rec, fields)
			if err != nil {
				return err
			}
			if filter.matchAccession(a) {
				out = append(out, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAccession replaces the attributes and passports of an accession. The
// identity in the payload must match the addressed one. Changing the metadata
// envelope requires the partial update right.
func (s *Service) UpdateAccession(ctx context.Context, actor permission.Actor, instituteCode, number string, doc catalog.Document) (*catalog.Accession, error) {
	acc, err := catalog.NewAccessionFromPayload(doc)
	if err != nil {
		return nil, err
	}
	if doc.Metadata != nil {
		if err := catalog.ValidateMetadata(domain.EntityAccession, doc.Metadata, catalog.MetadataRequired); err != nil {
			return nil, err
		}
	}
	var out *catalog.Accession
	_, err = s.run(ctx, "accession.update", func(tx domain.Transaction) error {
		current, err := findAccession(tx.Snapshot(), instituteCode, number)
		if err != nil {
			return err
		}
		obj := accessionObject(current)
		if err := s.guard(actor, obj, accessionNotFound(instituteCode, number), s.policy.CanUpdate); err != nil {
			return err
		}
		if acc.InstituteCode() != instituteCode || acc.GermplasmNumber() != number {
			return domain.IdentityChangeError{Entity: domain.EntityAccession}
		}
		meta := catalog.Metadata{Group: current.Group, IsPublic: current.IsPublic}
		if m, ok := acc.Metadata(); ok && m != meta {
			if !s.policy.CanPartialUpdate(actor, obj) {
				return deny(actor)
			}
			meta = m
		}
		updated, err := tx.UpdateAccession(current.ID, func(a *domain.Accession) error {
			a.ConservationStatus = acc.ConservationStatus()
			a.IsAvailable = acc.IsAvailable()
			a.IsSaveDuplicate = acc.IsSaveDuplicate()
			a.PUID = acc.PUID()
			a.Group = meta.Group
			a.IsPublic = meta.IsPublic
			return nil
		})
		if err != nil {
			return err
		}
		if err := replacePassports(tx, current.ID, acc.Passports()); err != nil {
			return err
		}
		out, err = catalog.NewAccessionFromRecord(tx.Snapshot(), updated, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PatchAccessionMetadata changes the group and/or public flag of an accession.
func (s *Service) PatchAccessionMetadata(ctx context.Context, actor permission.Actor, instituteCode, number string, raw map[string]any) (*catalog.Accession, error) {
	patch, err := catalog.NewMetadataPatch(domain.EntityAccession, raw)
	if err != nil {
		return nil, err
	}
	var out *catalog.Accession
	_, err = s.run(ctx, "accession.patch", func(tx domain.Transaction) error {
		current, err := findAccession(tx.Snapshot(), instituteCode, number)
		if err != nil {
			return err
		}
		if err := s.guard(actor, accessionObject(current), accessionNotFound(instituteCode, number), s.policy.CanPartialUpdate); err != nil {
			return err
		}
		updated, err := tx.UpdateAccession(current.ID, func(a *domain.Accession) error {
			m := patch.Apply(catalog.Metadata{Group: a.Group, IsPublic: a.IsPublic})
			a.Group, a.IsPublic = m.Group, m.IsPublic
			return nil
		})
		if err != nil {
			return err
		}
		out, err = catalog.NewAccessionFromRecord(tx.Snapshot(), updated, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccession removes an accession, its passports and its set memberships.
func (s *Service) DeleteAccession(ctx context.Context, actor permission.Actor, instituteCode, number string) error {
	_, err := s.run(ctx, "accession.delete", func(tx domain.Transaction) error {
		current, err := findAccession(tx.Snapshot(), instituteCode, number)
		if err != nil {
			return err
		}
		if err := s.guard(actor, accessionObject(current), accessionNotFound(instituteCode, number), s.policy.CanDestroy); err != nil {
			return err
		}
		return tx.DeleteAccession(current.ID)
	})
	return err
}
