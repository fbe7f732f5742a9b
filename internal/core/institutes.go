package core

import (
	"context"

	"genebank/internal/catalog"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

func findInstituteRecord(view domain.TransactionView, code string) (domain.Institute, error) {
	inst, ok := view.FindInstituteByCode(code)
	if !ok {
		return domain.Institute{}, domain.NotFoundError{Entity: domain.EntityInstitute, Key: code}
	}
	return inst, nil
}

// CreateInstitute stores one institute. Institutes are reference data managed by admins.
func (s *Service) CreateInstitute(ctx context.Context, actor permission.Actor, doc catalog.Document) (*catalog.Institute, error) {
	if !s.policy.CanCreate(actor) {
		return nil, deny(actor)
	}
	inst, err := catalog.NewInstituteFromPayload(doc)
	if err != nil {
		return nil, err
	}
	var out *catalog.Institute
	_, err = s.run(ctx, "institute.create", func(tx domain.Transaction) error {
		rec, err := tx.CreateInstitute(inst.Record())
		if err != nil {
			return err
		}
		out, err = catalog.NewInstituteFromRecord(tx.Snapshot(), rec, nil, visibility(s.policy, actor))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInstitutes stores every document or none.
func (s *Service) CreateInstitutes(ctx context.Context, actor permission.Actor, docs []catalog.Document) ([]*catalog.Institute, error) {
	if !s.policy.CanCreate(actor) {
		return nil, deny(actor)
	}
	batch := &domain.BatchError{}
	insts := make([]*catalog.Institute, len(docs))
	for i, doc := range docs {
		inst, err := catalog.NewInstituteFromPayload(doc)
		if err != nil {
			batch.Add(i, err)
			continue
		}
		insts[i] = inst
	}
	if !batch.Empty() {
		return nil, batch
	}
	var out []*catalog.Institute
	_, err := s.run(ctx, "institute.bulk_create", func(tx domain.Transaction) error {
		out = make([]*catalog.Institute, 0, len(insts))
		for i, inst := range insts {
			rec, err := tx.CreateInstitute(inst.Record())
			if err != nil {
				batch.Add(i, err)
				continue
			}
			projected, err := catalog.NewInstituteFromRecord(tx.Snapshot(), rec, nil, visibility(s.policy, actor))
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

// GetInstitute returns an institute with stats counted over what actor may see.
func (s *Service) GetInstitute(ctx context.Context, actor permission.Actor, code string, fields []catalog.Field) (*catalog.Institute, error) {
	var out *catalog.Institute
	err := s.view(ctx, "institute.get", func(v domain.TransactionView) error {
		rec, err := findInstituteRecord(v, code)
		if err != nil {
			return err
		}
		out, err = catalog.NewInstituteFromRecord(v, rec, fields, visibility(s.policy, actor))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInstitutes returns every institute, optionally narrowed to one code.
func (s *Service) ListInstitutes(ctx context.Context, actor permission.Actor, filter Filter, fields []catalog.Field) ([]*catalog.Institute, error) {
	out := []*catalog.Institute{}
	err := s.view(ctx, "institute.list", func(v domain.TransactionView) error {
		for _, rec := range v.ListInstitutes() {
			if filter.InstituteCode != "" && rec.Code != filter.InstituteCode {
				continue
			}
			inst, err := catalog.NewInstituteFromRecord(v, rec, fields, visibility(s.policy, actor))
			if err != nil {
				return err
			}
			out = append(out, inst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInstitute replaces the attributes of an institute; the code is immutable.
func (s *Service) UpdateInstitute(ctx context.Context, actor permission.Actor, code string, doc catalog.Document) (*catalog.Institute, error) {
	if !s.policy.IsAdmin(actor) {
		return nil, deny(actor)
	}
	inst, err := catalog.NewInstituteFromPayload(doc)
	if err != nil {
		return nil, err
	}
	var out *catalog.Institute
	_, err = s.run(ctx, "institute.update", func(tx domain.Transaction) error {
		current, err := findInstituteRecord(tx.Snapshot(), code)
		if err != nil {
			return err
		}
		if inst.Code() != code {
			return domain.IdentityChangeError{Entity: domain.EntityInstitute}
		}
		updated, err := tx.UpdateInstitute(current.ID, func(rec *domain.Institute) error {
			next := inst.Record()
			next.Base = rec.Base
			*rec = next
			return nil
		})
		if err != nil {
			return err
		}
		out, err = catalog.NewInstituteFromRecord(tx.Snapshot(), updated, nil, visibility(s.policy, actor))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteInstitute removes an institute no accession or set refers to.
func (s *Service) DeleteInstitute(ctx context.Context, actor permission.Actor, code string) error {
	if !s.policy.IsAdmin(actor) {
		return deny(actor)
	}
	_, err := s.run(ctx, "institute.delete", func(tx domain.Transaction) error {
		current, err := findInstituteRecord(tx.Snapshot(), code)
		if err != nil {
			return err
		}
		return tx.DeleteInstitute(current.ID)
	})
	return err
}
