package catalog

import (
	"fmt"

	"genebank/pkg/domain"
)

// ValidationError reports a malformed payload, CSV cell or field selection.
type ValidationError struct {
	Entity domain.EntityType
	Msg    string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(entity domain.EntityType, format string, args ...any) *ValidationError {
	return &ValidationError{Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// MsgSetMetadataOnCreate is returned when an accession set payload carries metadata on creation.
const MsgSetMetadataOnCreate = "can not set group or is public while creating the accession set"
