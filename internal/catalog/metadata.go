package catalog

import "genebank/pkg/domain"

// Metadata is the ownership and visibility envelope of a document.
type Metadata struct {
	Group    string `json:"group"`
	IsPublic bool   `json:"is_public"`
}

// Map renders the envelope as it appears in an API document.
func (m Metadata) Map() map[string]any {
	return map[string]any{MetaGroup: m.Group, MetaIsPublic: m.IsPublic}
}

// MetadataMode selects which envelope keys a payload must or may carry.
type MetadataMode int

const (
	// MetadataRequired demands both group and is_public.
	MetadataRequired MetadataMode = iota
	// MetadataPartial demands at least one of them.
	MetadataPartial
	// MetadataForbidden rejects either of them.
	MetadataForbidden
)

// ValidateMetadata checks the raw metadata object of a payload for entity.
func ValidateMetadata(entity domain.EntityType, raw map[string]any, mode MetadataMode) error {
	group, hasGroup := raw[MetaGroup]
	public, hasPublic := raw[MetaIsPublic]
	switch mode {
	case MetadataForbidden:
		if hasGroup || hasPublic {
			return invalid(entity, MsgSetMetadataOnCreate)
		}
		return nil
	case MetadataRequired:
		if !hasGroup {
			return invalid(entity, "mandatory metadata missing: %s", MetaGroup)
		}
		if !hasPublic {
			return invalid(entity, "mandatory metadata missing: %s", MetaIsPublic)
		}
	case MetadataPartial:
		if !hasGroup && !hasPublic {
			return invalid(entity, "metadata must carry %s or %s", MetaGroup, MetaIsPublic)
		}
	}
	if hasGroup {
		if s, ok := group.(string); !ok || s == "" {
			return invalid(entity, "%s must be a non-empty string", MetaGroup)
		}
	}
	if hasPublic {
		if _, ok := public.(bool); !ok {
			return invalid(entity, "%s must be a boolean", MetaIsPublic)
		}
	}
	return nil
}

// MetadataFromMap reads a metadata object validated with MetadataRequired.
func MetadataFromMap(raw map[string]any) Metadata {
	var m Metadata
	m.Group, _ = raw[MetaGroup].(string)
	m.IsPublic, _ = raw[MetaIsPublic].(bool)
	return m
}

// MetadataPatch carries the envelope keys present in a partial update.
type MetadataPatch struct {
	Group    *string
	IsPublic *bool
}

// NewMetadataPatch validates raw in patch mode and extracts the present keys.
func NewMetadataPatch(entity domain.EntityType, raw map[string]any) (MetadataPatch, error) {
	if err := ValidateMetadata(entity, raw, MetadataPartial); err != nil {
		return MetadataPatch{}, err
	}
	var p MetadataPatch
	if g, ok := raw[MetaGroup].(string); ok {
		p.Group = &g
	}
	if v, ok := raw[MetaIsPublic].(bool); ok {
		p.IsPublic = &v
	}
	return p, nil
}

// Apply returns m with the patched keys replaced.
func (p MetadataPatch) Apply(m Metadata) Metadata {
	if p.Group != nil {
		m.Group = *p.Group
	}
	if p.IsPublic != nil {
		m.IsPublic = *p.IsPublic
	}
	return m
}
