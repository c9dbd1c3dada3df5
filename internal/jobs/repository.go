package jobs

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("job not found")
)

// Filter narrows the public job listing. Both fields are case-insensitive
// substring matches; listing always excludes postings past their deadline.
type Filter struct {
	Search   string // matches title
	Location string
}

// Update carries partially-updated job fields. Nil pointers are left untouched.
type Update struct {
	Title       *string
	Description *string
	Skills      *[]string
	Location    *string
	JobType     *string
	WorkMode    *string
	Salary      *string
	Company     *string
	Logo        *string
	Openings    *int
	Deadline    *time.Time
}

// Repository defines persistence operations for job postings
type Repository interface {
	Insert(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	ListActive(ctx context.Context, f Filter, now time.Time) ([]models.Job, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobRef, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, j *models.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, j)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		j.ID = oid
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *MongoRepository) ListActive(ctx context.Context, f Filter, now time.Time) ([]models.Job, error) {
	query := bson.M{"deadline": bson.M{"$gte": now}}
	if f.Search != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.Location != "" {
		query["location"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}
	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Job{}
	for cur.Next(ctx) {
		var j models.Job
		if err := cur.Decode(&j); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Job, error) {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Skills != nil {
		set["skills"] = *upd.Skills
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.JobType != nil {
		set["jobType"] = *upd.JobType
	}
	if upd.WorkMode != nil {
		set["workMode"] = *upd.WorkMode
	}
	if upd.Salary != nil {
		set["salary"] = *upd.Salary
	}
	if upd.Company != nil {
		set["company"] = *upd.Company
	}
	if upd.Logo != nil {
		set["logo"] = *upd.Logo
	}
	if upd.Openings != nil {
		set["openings"] = *upd.Openings
	}
	if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var j models.Job
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&j); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *MongoRepository) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobRef, error) {
	out := make(map[primitive.ObjectID]models.JobRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var j models.Job
		if err := cur.Decode(&j); err != nil {
			return nil, err
		}
		out[j.ID] = j.Ref()
	}
	return out, cur.Err()
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
