package service

import (
	"time"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
)

// UserView is the public projection of an AuthUser: never the password hash
// or the stored refresh token.
type UserView struct {
	ID          int64              `json:"id,string"`
	Email       string             `json:"email"`
	UserType    string             `json:"userType"`
	Profile     domain.Profile     `json:"profile"`
	Permissions domain.Permissions `json:"permissions"`
	LastLogin   *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenPairResult is returned by refresh.
type TokenPairResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Email       string
	Password    string
	UserType    string
	Name        string
	Phone       string
	CompanyName string
	Department  string
}

// ProfileUpdate carries the updatable profile fields. An empty string means
// "not provided" and leaves the stored value untouched.
type ProfileUpdate struct {
	Name        string
	Phone       string
	CompanyName string
	Department  string
}

// CategoryScoreView is the per-category slice of a submission response.
type CategoryScoreView struct {
	Category        string  `json:"complianceName"`
	TotalScored     int     `json:"totalScored"`
	TotalWeighted   int     `json:"totalWeighted"`
	PercentageScore float64 `json:"percentageScore"`
}

// SubmitResult summarizes one scored answer.
type SubmitResult struct {
	IsCorrect         bool              `json:"isCorrect"`
	ScoreEarned       int               `json:"scoreEarned"`
	CategoryScore     CategoryScoreView `json:"categoryScore"`
	OverallPercentage float64           `json:"overallPercentage"`
}

// Analytics is the derived per-user report: category aggregates, overall
// stats, and the ten most recent history entries.
type Analytics struct {
	UserID             string                        `json:"userId"`
	Name               string                        `json:"name"`
	CategoryScores     []domain.CategoryScore        `json:"categoryScores"`
	OverallPercentage  float64                       `json:"overallPercentage"`
	TotalScore         int                           `json:"totalScore"`
	TotalPossibleScore int                           `json:"totalPossibleScore"`
	LastActivity       time.Time                     `json:"lastActivity"`
	RecentActivity     []domain.QuestionHistoryEntry `json:"recentActivity"`
}

func newUserView(user domain.AuthUser) UserView {
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		UserType:    user.UserType,
		Profile:     user.Profile,
		Permissions: user.Permissions,
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
	}
}
