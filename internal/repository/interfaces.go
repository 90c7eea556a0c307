package repository

import (
	"context"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
)

// UserRepository exposes persistence for login identities. Lookups that find
// nothing return an error wrapping mongo.ErrNoDocuments.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.AuthUser, error)
	GetByID(ctx context.Context, id int64) (domain.AuthUser, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (domain.AuthUser, error)
	Create(ctx context.Context, user domain.AuthUser) (domain.AuthUser, error)
	Update(ctx context.Context, user domain.AuthUser) error
	List(ctx context.Context) ([]domain.AuthUser, error)
}

// QuestionRepository reads the externally-authored question bank. The
// response counter is the only write this service performs on it.
type QuestionRepository interface {
	GetByID(ctx context.Context, id string) (domain.Question, error)
	IncrementResponses(ctx context.Context, id string) error
}

// ScoreRepository persists scoring profiles keyed by the caller-supplied
// userId string.
type ScoreRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.QuizUser, error)
	Save(ctx context.Context, user domain.QuizUser) error
	List(ctx context.Context) ([]domain.QuizUser, error)
}
