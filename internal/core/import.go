package core

import (
	"bytes"
	"context"
	"fmt"

	"genebank/internal/catalog"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

// archiveNames are the archive folders per importable entity.
var archiveNames = map[domain.EntityType]string{
	domain.EntityAccession:    "accessions",
	domain.EntityAccessionSet: "accessionsets",
	domain.EntityInstitute:    "institutes",
}

// ImportCSV bulk-creates the rows of a CSV upload. Accession rows take
// metadata as their envelope; other entities ignore it. The upload is
// archived once the rows are committed.
func (s *Service) ImportCSV(ctx context.Context, actor permission.Actor, entity domain.EntityType, content []byte, metadata map[string]any) (int, error) {
	var (
		n   int
		err error
	)
	switch entity {
	case domain.EntityAccession:
		if !s.policy.CanCreate(actor) {
			return 0, deny(actor)
		}
		var docs []catalog.Document
		if docs, err = catalog.ReadAccessions(bytes.NewReader(content)); err != nil {
			return 0, err
		}
		for i := range docs {
			docs[i].Metadata = metadata
		}
		var created []*catalog.Accession
		created, err = s.CreateAccessions(ctx, actor, docs)
		n = len(created)
	case domain.EntityAccessionSet:
		if !s.policy.CanCreateAccessionSet(actor) {
			return 0, deny(actor)
		}
		var docs []catalog.Document
		if docs, err = catalog.ReadAccessionSets(bytes.NewReader(content)); err != nil {
			return 0, err
		}
		var created []*catalog.AccessionSet
		created, err = s.CreateAccessionSets(ctx, actor, docs)
		n = len(created)
	case domain.EntityInstitute:
		if !s.policy.CanCreate(actor) {
			return 0, deny(actor)
		}
		var docs []catalog.Document
		if docs, err = catalog.ReadInstitutes(bytes.NewReader(content)); err != nil {
			return 0, err
		}
		var created []*catalog.Institute
		created, err = s.CreateInstitutes(ctx, actor, docs)
		n = len(created)
	default:
		return 0, fmt.Errorf("csv import not supported for %s", entity)
	}
	if err != nil {
		return 0, err
	}
	s.archiveUpload(ctx, entity, content, actor, n)
	return n, nil
}

// archiveUpload keeps a copy of a committed upload. The rows are already
// committed, so a failure is logged and not returned.
func (s *Service) archiveUpload(ctx context.Context, entity domain.EntityType, content []byte, actor permission.Actor, n int) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.ArchiveUpload(ctx, archiveNames[entity], content, actor.Username, n)
	if err != nil {
		s.logger.Error("archive upload failed", "entity", string(entity), "error", err.Error())
		return
	}
	s.logger.Info("upload archived", "entity", string(entity), "key", key, "rows", n)
}
