package cli

import (
	"fmt"

	"genebank/pkg/domain"
)

// entityArgs maps the entity argument of import and export onto entity types.
var entityArgs = map[string]domain.EntityType{
	"accessions":    domain.EntityAccession,
	"accessionsets": domain.EntityAccessionSet,
	"institutes":    domain.EntityInstitute,
}

func parseEntity(arg string) (domain.EntityType, error) {
	entity, ok := entityArgs[arg]
	if !ok {
		return "", fmt.Errorf("unknown entity %q: use accessions, accessionsets or institutes", arg)
	}
	return entity, nil
}
