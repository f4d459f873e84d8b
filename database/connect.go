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

// Collection names shared by the repository, the index set and the seeder.
const (
	CollectionEmployees       = "employees"
	CollectionMetrics         = "metrics"
	CollectionTrends          = "trends"
	CollectionHeatmap         = "heatmap"
	CollectionAlerts          = "alerts"
	CollectionJourneyEvents   = "journey_events"
	CollectionFrictions       = "frictions"
	CollectionMilestones      = "milestones"
	CollectionReports         = "reports"
	CollectionActionTemplates = "action_templates"
	CollectionCases           = "cases"
)

// Collections lists every collection the dashboard reads.
var Collections = []string{
	CollectionEmployees,
	CollectionMetrics,
	CollectionTrends,
	CollectionHeatmap,
	CollectionAlerts,
	CollectionJourneyEvents,
	CollectionFrictions,
	CollectionMilestones,
	CollectionReports,
	CollectionActionTemplates,
	CollectionCases,
}

// Connect opens a client for uri and pings the primary before returning it.
func Connect(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrap(err, "failed to connect to MongoDB"))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrap(err, "failed to ping MongoDB"))
	}

	logger.Info("connected to MongoDB", zap.Bool("replica_set", isReplicaSet(ctx, client, logger)))
	return client, nil
}

func isReplicaSet(ctx context.Context, client *mongo.Client, logger *zap.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.M{"hello": 1}).Decode(&result); err != nil {
		logger.Warn("failed to check replica set status", zap.Error(err))
		return false
	}
	_, ok := result["setName"]
	return ok
}
