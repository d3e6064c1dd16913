package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/tracing"
)

// Evaluate checks every relationship requirement of the asset. Results are
// cached per generation.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) []inventory.RelationshipEvaluation {
	ctx, done := s.begin(ctx, tracing.SpanEvaluate, attribute.String(tracing.AttrAssetID, id.String()))
	defer done(nil)

	if s.evals == nil {
		return s.catalog.EvaluateRelationships(id)
	}

	evals, hit, _ := s.evals.GetOrLoad(ctx, s.evals.Key(id.String()),
		func(context.Context) ([]inventory.RelationshipEvaluation, error) {
			return s.catalog.EvaluateRelationships(id), nil
		})
	s.metrics.CacheLookup("evaluate", hit)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))

	if evals == nil {
		return nil
	}
	out := make([]inventory.RelationshipEvaluation, len(evals))
	for i, e := range evals {
		e.Requirement = e.Requirement.Clone()
		out[i] = e
	}
	return out
}

// Related returns the assets the given asset links to through typeID.
func (s *Service) Related(ctx context.Context, id uuid.UUID, typeID string) []inventory.Asset {
	_, done := s.begin(ctx, tracing.SpanRelated, attribute.String(tracing.AttrAssetID, id.String()))
	defer done(nil)

	return s.catalog.RelatedAssets(id, typeID)
}

// Components returns the assets embedded in the given asset.
func (s *Service) Components(ctx context.Context, id uuid.UUID) []inventory.Asset {
	_, done := s.begin(ctx, tracing.SpanComponents, attribute.String(tracing.AttrAssetID, id.String()))
	defer done(nil)

	return s.catalog.EmbeddedComponents(id)
}

// RelationshipTypes returns the registered types ordered by id.
func (s *Service) RelationshipTypes(ctx context.Context) []inventory.RelationshipType {
	_, done := s.begin(ctx, tracing.SpanRelationTypes)
	defer done(nil)

	return s.catalog.RelationshipTypes()
}

// RegisterRelationshipType adds or replaces a relationship type.
func (s *Service) RegisterRelationshipType(ctx context.Context, rt inventory.RelationshipType) {
	ctx, done := s.begin(ctx, tracing.SpanRelationTypes)
	defer done(nil)

	s.catalog.RegisterRelationshipType(rt)
	s.changed(ctx, pubsub.RelationshipTypeRegistered, uuid.Nil)
}
