package database

import (
	"context"
	"time"

	"hrpulse/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// indexSet maps a collection to the indexes its section queries rely on.
var indexSet = map[string][]mongo.IndexModel{
	// TIMELINE: employee scope, newest first
	CollectionJourneyEvents: {
		{
			Keys: bson.D{
				{Key: "employee_id", Value: 1},
				{Key: "date", Value: -1},
			},
			Options: options.Index().SetName("idx_employee_id_date"),
		},
	},

	// FRICTIONS: employee scope plus the status filter
	CollectionFrictions: {
		{
			Keys: bson.D{
				{Key: "employee_id", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_employee_id_status"),
		},
	},

	CollectionMilestones: {
		{
			Keys: bson.D{
				{Key: "employee_id", Value: 1},
				{Key: "planned_date", Value: -1},
			},
			Options: options.Index().SetName("idx_employee_id_planned_date"),
		},
	},

	// ALERTS: severity filter and recency
	CollectionAlerts: {
		{
			Keys: bson.D{
				{Key: "severity", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_severity_created_at"),
		},
	},

	CollectionReports: {
		{
			Keys:    bson.D{{Key: "generated_at", Value: -1}},
			Options: options.Index().SetName("idx_generated_at"),
		},
	},

	CollectionCases: {
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "risk", Value: 1},
			},
			Options: options.Index().SetName("idx_status_risk"),
		},
	},
}

// CreateIndexes creates the dashboard indexes. Existing indexes with the same
// definition are left alone by the server.
func CreateIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for collection, indexes := range indexSet {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return apperrors.WithCode(apperrors.CodeDatabaseError,
				apperrors.Wrapf(err, "failed to create %s indexes", collection))
		}
		logger.Debug("indexes created", zap.String("collection", collection), zap.Int("count", len(indexes)))
	}
	logger.Info("dashboard indexes created")
	return nil
}
