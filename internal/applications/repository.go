package applications

import (
	"context"
	"errors"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("already applied for this job")
)

// Repository defines persistence operations for applications.
// Insert must be atomic with respect to the (job, applicant) uniqueness:
// implementations rely on a unique constraint, not check-then-insert.
type Repository interface {
	Insert(ctx context.Context, a *models.Application) error
	FindByApplicant(ctx context.Context, applicant primitive.ObjectID) ([]models.Application, error)
	FindByJob(ctx context.Context, job primitive.ObjectID) ([]models.Application, error)
	Exists(ctx context.Context, job, applicant primitive.ObjectID) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, note *string) (*models.Application, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, a *models.Application) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.StatusApplied
	}
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		// (job, applicant) unique index violation
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyApplied
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func (r *MongoRepository) FindByApplicant(ctx context.Context, applicant primitive.ObjectID) ([]models.Application, error) {
	return r.find(ctx, bson.M{"applicant": applicant})
}

func (r *MongoRepository) FindByJob(ctx context.Context, job primitive.ObjectID) ([]models.Application, error) {
	return r.find(ctx, bson.M{"job": job})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "appliedAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Application{}
	for cur.Next(ctx) {
		var a models.Application
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Exists(ctx context.Context, job, applicant primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"job": job, "applicant": applicant}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, note *string) (*models.Application, error) {
	set := bson.M{"status": status}
	if note != nil {
		set["note"] = *note
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Application
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
