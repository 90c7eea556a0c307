package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	"github.com/Gagan3036/compliance-platform-api/internal/repository"
)

const recentActivityLimit = 10

// ScoringService records answer submissions and maintains per-category and
// overall weighted aggregates.
type ScoringService struct {
	questions repository.QuestionRepository
	scores    repository.ScoreRepository
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewScoringService wires dependencies.
func NewScoringService(questions repository.QuestionRepository, scores repository.ScoreRepository, logger *zap.Logger) *ScoringService {
	return &ScoringService{
		questions: questions,
		scores:    scores,
		logger:    logger,
		tracer:    otel.Tracer("github.com/Gagan3036/compliance-platform-api/internal/service"),
		now:       time.Now,
	}
}

// Submit scores one answer: appends an immutable history entry, updates the
// category aggregate, and rederives the overall totals. Repeat answers to
// the same question append and double-count; that is the contract, not a
// bug. The question response counter is incremented best-effort after the
// user document saves, with no transaction spanning the two writes.
func (s *ScoringService) Submit(ctx context.Context, userID, name, questionID string, selectedOption int) (SubmitResult, error) {
	ctx, span := s.startSpan(ctx, "ScoringService.Submit")
	defer span.End()

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return SubmitResult{}, domain.ErrQuestionNotFound
		}
		span.RecordError(err)
		return SubmitResult{}, fmt.Errorf("load question: %w", err)
	}

	isCorrect := selectedOption == question.CorrectAnswer
	scoreEarned := 0
	if isCorrect {
		scoreEarned = question.Weight
	}

	user, err := s.scores.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			span.RecordError(err)
			return SubmitResult{}, fmt.Errorf("load quiz user: %w", err)
		}
		// First submission for this userId; the name is captured once here
		// and never updated by later submissions.
		user = domain.QuizUser{UserID: userID, Name: name}
	}

	now := s.now().UTC()
	user.QuestionHistory = append(user.QuestionHistory, domain.QuestionHistoryEntry{
		QuestionID:     question.ID,
		Category:       question.Category,
		SelectedOption: selectedOption,
		IsCorrect:      isCorrect,
		QuestionWeight: question.Weight,
		ScoreEarned:    scoreEarned,
		AnsweredAt:     now,
	})

	category := user.FindCategoryScore(question.Category)
	if category == nil {
		user.CategoryScores = append(user.CategoryScores, domain.CategoryScore{Category: question.Category})
		category = &user.CategoryScores[len(user.CategoryScores)-1]
	}

	category.TotalScored += scoreEarned
	category.TotalWeighted += question.Weight
	category.QuestionsAnswered++
	category.PercentageScore = float64(category.TotalScored) / float64(category.TotalWeighted) * 100
	category.LastActivity = now

	user.RecalculateTotals()
	user.LastActivity = now

	if err := s.scores.Save(ctx, user); err != nil {
		span.RecordError(err)
		return SubmitResult{}, fmt.Errorf("save quiz user: %w", err)
	}

	// Best-effort: a failure here leaves the counter behind by one, which is
	// accepted rather than rolled back.
	if err := s.questions.IncrementResponses(ctx, questionID); err != nil {
		span.RecordError(err)
		s.log().Warn("increment question responses failed",
			zap.String("question_id", questionID),
			zap.Error(err),
		)
	}

	s.audit("scoring.submit", "user_id", userID, "question_id", questionID, "correct", isCorrect, "score_earned", scoreEarned)
	return SubmitResult{
		IsCorrect:   isCorrect,
		ScoreEarned: scoreEarned,
		CategoryScore: CategoryScoreView{
			Category:        category.Category,
			TotalScored:     category.TotalScored,
			TotalWeighted:   category.TotalWeighted,
			PercentageScore: category.PercentageScore,
		},
		OverallPercentage: user.OverallPercentage,
	}, nil
}

// GetHistory returns the full scoring profile for a user.
func (s *ScoringService) GetHistory(ctx context.Context, userID string) (domain.QuizUser, error) {
	ctx, span := s.startSpan(ctx, "ScoringService.GetHistory")
	defer span.End()

	user, err := s.scores.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.QuizUser{}, domain.ErrUserNotFound
		}
		span.RecordError(err)
		return domain.QuizUser{}, fmt.Errorf("load quiz user: %w", err)
	}
	return user, nil
}

// ListAllUsers returns every scoring profile without pagination.
func (s *ScoringService) ListAllUsers(ctx context.Context) ([]domain.QuizUser, error) {
	ctx, span := s.startSpan(ctx, "ScoringService.ListAllUsers")
	defer span.End()

	users, err := s.scores.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list quiz users: %w", err)
	}
	return users, nil
}

// GetAnalytics derives the per-user report with the ten most recent history
// entries ordered from newest to oldest.
func (s *ScoringService) GetAnalytics(ctx context.Context, userID string) (Analytics, error) {
	ctx, span := s.startSpan(ctx, "ScoringService.GetAnalytics")
	defer span.End()

	user, err := s.scores.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Analytics{}, domain.ErrUserNotFound
		}
		span.RecordError(err)
		return Analytics{}, fmt.Errorf("load quiz user: %w", err)
	}

	recent := make([]domain.QuestionHistoryEntry, len(user.QuestionHistory))
	copy(recent, user.QuestionHistory)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AnsweredAt.After(recent[j].AnsweredAt)
	})
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}

	return Analytics{
		UserID:             user.UserID,
		Name:               user.Name,
		CategoryScores:     user.CategoryScores,
		OverallPercentage:  user.OverallPercentage,
		TotalScore:         user.TotalScore,
		TotalPossibleScore: user.TotalPossibleScore,
		LastActivity:       user.LastActivity,
		RecentActivity:     recent,
	}, nil
}

func (s *ScoringService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *ScoringService) audit(event string, attrs ...any) {
	fields := make([]zap.Field, 0, len(attrs)/2+1)
	fields = append(fields, zap.String("event", event))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	s.log().Info("audit", fields...)
}

func (s *ScoringService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
