package repository

import (
	"context"

	"hrpulse/apperrors"
	"hrpulse/database"
	"hrpulse/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DashboardRepository is the read side every dashboard section fetches from. An empty
// employeeID on the employee-scoped methods means every employee.
type DashboardRepository interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListMetrics(ctx context.Context) ([]models.MetricSnapshot, error)
	ListTrend(ctx context.Context) ([]models.TrendPoint, error)
	ListHeatmap(ctx context.Context) ([]models.DepartmentHeatmapRow, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	ListJourneyEvents(ctx context.Context, employeeID string) ([]models.JourneyEvent, error)
	ListFrictions(ctx context.Context, employeeID string) ([]models.Friction, error)
	ListMilestones(ctx context.Context, employeeID string) ([]models.Milestone, error)
	ListReports(ctx context.Context) ([]models.ReportSummary, error)
	ListActionTemplates(ctx context.Context) ([]models.ActionTemplate, error)
	ListCases(ctx context.Context) ([]models.RetentionCase, error)
}

type mongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) DashboardRepository {
	return &mongoRepository{db: db}
}

func findAll[T any](ctx context.Context, db *mongo.Database, collection string, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrapf(err, "failed to query %s", collection))
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, apperrors.Wrapf(err, "failed to decode %s", collection))
	}
	return items, nil
}

func employeeFilter(employeeID string) bson.M {
	if employeeID == "" {
		return bson.M{}
	}
	return bson.M{"employee_id": employeeID}
}

func sortBy(field string, order int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: order}})
}

func (r *mongoRepository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return findAll[models.Employee](ctx, r.db, database.CollectionEmployees, bson.M{}, sortBy("name", 1))
}

func (r *mongoRepository) ListMetrics(ctx context.Context) ([]models.MetricSnapshot, error) {
	return findAll[models.MetricSnapshot](ctx, r.db, database.CollectionMetrics, bson.M{})
}

func (r *mongoRepository) ListTrend(ctx context.Context) ([]models.TrendPoint, error) {
	return findAll[models.TrendPoint](ctx, r.db, database.CollectionTrends, bson.M{}, sortBy("_id", 1))
}

func (r *mongoRepository) ListHeatmap(ctx context.Context) ([]models.DepartmentHeatmapRow, error) {
	return findAll[models.DepartmentHeatmapRow](ctx, r.db, database.CollectionHeatmap, bson.M{})
}

func (r *mongoRepository) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	return findAll[models.Alert](ctx, r.db, database.CollectionAlerts, bson.M{}, sortBy("created_at", -1))
}

func (r *mongoRepository) ListJourneyEvents(ctx context.Context, employeeID string) ([]models.JourneyEvent, error) {
	return findAll[models.JourneyEvent](ctx, r.db, database.CollectionJourneyEvents, employeeFilter(employeeID), sortBy("date", -1))
}

func (r *mongoRepository) ListFrictions(ctx context.Context, employeeID string) ([]models.Friction, error) {
	return findAll[models.Friction](ctx, r.db, database.CollectionFrictions, employeeFilter(employeeID), sortBy("reported_at", -1))
}

func (r *mongoRepository) ListMilestones(ctx context.Context, employeeID string) ([]models.Milestone, error) {
	return findAll[models.Milestone](ctx, r.db, database.CollectionMilestones, employeeFilter(employeeID), sortBy("planned_date", -1))
}

func (r *mongoRepository) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	return findAll[models.ReportSummary](ctx, r.db, database.CollectionReports, bson.M{}, sortBy("generated_at", -1))
}

func (r *mongoRepository) ListActionTemplates(ctx context.Context) ([]models.ActionTemplate, error) {
	return findAll[models.ActionTemplate](ctx, r.db, database.CollectionActionTemplates, bson.M{})
}

func (r *mongoRepository) ListCases(ctx context.Context) ([]models.RetentionCase, error) {
	return findAll[models.RetentionCase](ctx, r.db, database.CollectionCases, bson.M{})
}
