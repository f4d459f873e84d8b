package database

import (
	"context"

	"hrpulse/apperrors"
	"hrpulse/fixtures"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedDocuments flattens a fixture set into insertable documents per collection.
func SeedDocuments(set *fixtures.Set) map[string][]interface{} {
	return map[string][]interface{}{
		CollectionEmployees:       toDocs(set.Employees),
		CollectionMetrics:         toDocs(set.Metrics),
		CollectionTrends:          toDocs(set.Trends),
		CollectionHeatmap:         toDocs(set.Heatmap),
		CollectionAlerts:          toDocs(set.Alerts),
		CollectionJourneyEvents:   toDocs(set.JourneyEvents),
		CollectionFrictions:       toDocs(set.Frictions),
		CollectionMilestones:      toDocs(set.Milestones),
		CollectionReports:         toDocs(set.Reports),
		CollectionActionTemplates: toDocs(set.ActionTemplates),
		CollectionCases:           toDocs(set.Cases),
	}
}

func toDocs[T any](items []T) []interface{} {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}

// Seed replaces the content of every dashboard collection with the fixture set.
func Seed(ctx context.Context, db *mongo.Database, set *fixtures.Set, logger *zap.Logger) error {
	for collection, docs := range SeedDocuments(set) {
		coll := db.Collection(collection)
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrapf(err, "failed to clear %s", collection))
		}
		if len(docs) == 0 {
			continue
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrapf(err, "failed to seed %s", collection))
		}
		logger.Info("collection seeded", zap.String("collection", collection), zap.Int("documents", len(docs)))
	}
	return nil
}
