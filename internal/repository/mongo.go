package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
)

const (
	authUsersCollection = "auth_users"
	questionsCollection = "questions"
	quizUsersCollection = "quiz_users"
)

// Compile-time interface assertions.
var (
	_ UserRepository     = (*MongoUserRepo)(nil)
	_ QuestionRepository = (*MongoQuestionRepo)(nil)
	_ ScoreRepository    = (*MongoScoreRepo)(nil)
)

// EnsureIndexes creates the unique indexes the application relies on:
// auth_users.email and quiz_users.user_id.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(authUsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	_, err = db.Collection(quizUsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user_id index: %w", err)
	}
	return nil
}

// MongoUserRepo implements UserRepository on the auth_users collection.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection(authUsersCollection)}
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (domain.AuthUser, error) {
	var user domain.AuthUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return domain.AuthUser{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id int64) (domain.AuthUser, error) {
	var user domain.AuthUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return domain.AuthUser{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (domain.AuthUser, error) {
	var user domain.AuthUser
	if err := r.coll.FindOne(ctx, bson.M{"refresh_token": refreshToken}).Decode(&user); err != nil {
		return domain.AuthUser{}, fmt.Errorf("get user by refresh token: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) Create(ctx context.Context, user domain.AuthUser) (domain.AuthUser, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return domain.AuthUser{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) Update(ctx context.Context, user domain.AuthUser) error {
	user.UpdatedAt = time.Now().UTC()
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) List(ctx context.Context) ([]domain.AuthUser, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var users []domain.AuthUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// MongoQuestionRepo implements QuestionRepository on the questions collection.
type MongoQuestionRepo struct {
	coll *mongo.Collection
}

func NewMongoQuestionRepo(db *mongo.Database) *MongoQuestionRepo {
	return &MongoQuestionRepo{coll: db.Collection(questionsCollection)}
}

func (r *MongoQuestionRepo) GetByID(ctx context.Context, id string) (domain.Question, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot reference any question.
		return domain.Question{}, fmt.Errorf("parse question id: %w", mongo.ErrNoDocuments)
	}
	var question domain.Question
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&question); err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

func (r *MongoQuestionRepo) IncrementResponses(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("parse question id: %w", mongo.ErrNoDocuments)
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"responses": 1}})
	if err != nil {
		return fmt.Errorf("increment responses: %w", err)
	}
	return nil
}

// MongoScoreRepo implements ScoreRepository on the quiz_users collection.
// Saves are whole-document upserts keyed by user_id; concurrent submissions
// for the same user resolve last-write-wins.
type MongoScoreRepo struct {
	coll *mongo.Collection
}

func NewMongoScoreRepo(db *mongo.Database) *MongoScoreRepo {
	return &MongoScoreRepo{coll: db.Collection(quizUsersCollection)}
}

func (r *MongoScoreRepo) GetByUserID(ctx context.Context, userID string) (domain.QuizUser, error) {
	var user domain.QuizUser
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user); err != nil {
		return domain.QuizUser{}, fmt.Errorf("get quiz user: %w", err)
	}
	return user, nil
}

func (r *MongoScoreRepo) Save(ctx context.Context, user domain.QuizUser) error {
	user.UpdatedAt = time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": user.UserID}, user, opts); err != nil {
		return fmt.Errorf("save quiz user: %w", err)
	}
	return nil
}

func (r *MongoScoreRepo) List(ctx context.Context) ([]domain.QuizUser, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list quiz users: %w", err)
	}
	var users []domain.QuizUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode quiz users: %w", err)
	}
	return users, nil
}
