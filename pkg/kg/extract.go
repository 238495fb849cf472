package kg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finsight-ai/finsight/pkg/ai"
	"github.com/finsight-ai/finsight/pkg/logger"
)

type extractEntity struct {
	Name     string `json:"name" jsonschema_description:"Name or ticker of the entity, all letters capitalized"`
	Type     string `json:"type" jsonschema_description:"One of the provided entity types"`
	Metadata string `json:"metadata" jsonschema_description:"Explicit attributes as key=value pairs separated by '; ', may be empty"`
}

type extractRelationship struct {
	Source     string  `json:"source" jsonschema_description:"Name of the source entity"`
	Target     string  `json:"target" jsonschema_description:"Name of the target entity"`
	Type       string  `json:"type" jsonschema_description:"Relationship type, one of partnership, acquisition, supplier, customer, competitor, investment, mentioned"`
	Confidence float64 `json:"confidence" jsonschema_description:"Score from 0.0 to 1.0 indicating how strongly the text supports the relationship"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// Extraction holds the graph fragment produced from a single chunk.
type Extraction struct {
	Nodes []Node
	Edges []Edge
}

// Extractor turns document chunks into graph fragments through structured
// model output.
type Extractor struct {
	client      ai.Client
	entityTypes []string
}

// NewExtractorParams contains configuration options for creating a new
// Extractor.
type NewExtractorParams struct {
	Client ai.Client
	// EntityTypes overrides the default entity-type list given to the
	// extraction prompt.
	EntityTypes []string
}

// NewExtractor creates an Extractor with the default financial entity types
// unless overridden.
func NewExtractor(params NewExtractorParams) *Extractor {
	types := params.EntityTypes
	if len(types) == 0 {
		types = []string{TypeCompany, TypeProduct, TypePerson, TypeLocation, TypeMetric}
	}
	return &Extractor{
		client:      params.Client,
		entityTypes: types,
	}
}

// Extract runs entity and relationship extraction over one chunk.
// companyContext is the ticker of the filing under analysis and anchors
// ambiguous references like "the Company". A chunk that yields no entities,
// or whose model output cannot be parsed, produces an empty extraction, not
// an error; only transport failures are returned for the caller to retry.
func (e *Extractor) Extract(ctx context.Context, chunk Chunk, companyContext string) (Extraction, error) {
	types := strings.Join(e.entityTypes, ", ")
	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, types, companyContext, types, types)

	var res extractResponse
	err := e.client.CompleteWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract entities and relationships from a financial document chunk.",
		chunk.Text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if errors.Is(err, ai.ErrUnparsable) {
		logger.Warn("dropping unparsable extraction output", "chunk", chunk.ID, "document", chunk.DocumentID, "error", err)
		return Extraction{}, nil
	}
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract entities and relationships from chunk %s: %w", chunk.ID, err)
	}

	var out Extraction
	for _, entity := range res.Entities {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		out.Nodes = append(out.Nodes, Node{
			ID:       name,
			Type:     strings.TrimSpace(entity.Type),
			Metadata: parseMetadataPairs(entity.Metadata),
			Source:   chunk.DocumentID,
		})
	}
	for _, rel := range res.Relationships {
		source := strings.TrimSpace(rel.Source)
		target := strings.TrimSpace(rel.Target)
		if source == "" || target == "" || source == target {
			continue
		}
		relType := strings.TrimSpace(rel.Type)
		if relType == "" {
			relType = RelMentioned
		}
		weight := rel.Confidence
		if weight <= 0 || weight > 1 {
			weight = 1.0
		}
		out.Edges = append(out.Edges, Edge{
			Source: source,
			Target: target,
			Type:   relType,
			Weight: weight,
			Metadata: map[string]string{
				"document": chunk.DocumentID,
			},
		})
	}
	return out, nil
}

func parseMetadataPairs(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	meta := make(map[string]string)
	for pair := range strings.SplitSeq(raw, ";") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		meta[key] = value
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
