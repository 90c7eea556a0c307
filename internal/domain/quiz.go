package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Question is a single compliance-training question. CorrectAnswer indexes
// into Options; Weight is both the maximum score the question contributes
// and the score earned on a correct answer. Questions are authored outside
// this service; the only mutation here is the Responses counter.
type Question struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Question      string        `bson:"question" json:"question"`
	Options       []string      `bson:"options" json:"options"`
	CorrectAnswer int           `bson:"correct_answer" json:"correctAnswer"`
	Category      string        `bson:"compliance_name" json:"complianceName"`
	Weight        int           `bson:"question_weight" json:"questionWeight"`
	Responses     int64         `bson:"responses" json:"responses"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// CategoryScore is the per-category aggregate nested under a QuizUser.
// PercentageScore is derived: 100 * TotalScored / TotalWeighted.
type CategoryScore struct {
	Category          string    `bson:"compliance_name" json:"complianceName"`
	TotalScored       int       `bson:"total_scored" json:"totalScored"`
	TotalWeighted     int       `bson:"total_weighted" json:"totalWeighted"`
	PercentageScore   float64   `bson:"percentage_score" json:"percentageScore"`
	QuestionsAnswered int       `bson:"questions_answered" json:"questionsAnswered"`
	LastActivity      time.Time `bson:"last_activity" json:"lastActivity"`
}

// QuestionHistoryEntry is an immutable audit record of one answer. Entries
// are never deduplicated: answering the same question twice appends twice
// and double-counts in the aggregates.
type QuestionHistoryEntry struct {
	QuestionID     bson.ObjectID `bson:"question_id" json:"questionId"`
	Category       string        `bson:"compliance_name" json:"complianceName"`
	SelectedOption int           `bson:"selected_option" json:"selectedOption"`
	IsCorrect      bool          `bson:"is_correct" json:"isCorrect"`
	QuestionWeight int           `bson:"question_weight" json:"questionWeight"`
	ScoreEarned    int           `bson:"score_earned" json:"scoreEarned"`
	AnsweredAt     time.Time     `bson:"answered_at" json:"answeredAt"`
}

// QuizUser is the scoring profile. It is keyed by a caller-supplied UserID
// string, a separate identity space from AuthUser; the two are deliberately
// not linked. Created lazily on the first submission.
type QuizUser struct {
	ID                 bson.ObjectID          `bson:"_id,omitempty" json:"-"`
	UserID             string                 `bson:"user_id" json:"userId"`
	Name               string                 `bson:"name" json:"name"`
	CategoryScores     []CategoryScore        `bson:"category_scores" json:"categoryScores"`
	QuestionHistory    []QuestionHistoryEntry `bson:"question_history" json:"questionHistory"`
	TotalScore         int                    `bson:"total_score" json:"totalScore"`
	TotalPossibleScore int                    `bson:"total_possible_score" json:"totalPossibleScore"`
	OverallPercentage  float64                `bson:"overall_percentage" json:"overallPercentage"`
	LastActivity       time.Time              `bson:"last_activity" json:"lastActivity"`
	CreatedAt          time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time              `bson:"updated_at" json:"updatedAt"`
}

// FindCategoryScore returns a pointer into CategoryScores for the given
// category, or nil when the user has not answered in it yet.
func (u *QuizUser) FindCategoryScore(category string) *CategoryScore {
	for i := range u.CategoryScores {
		if u.CategoryScores[i].Category == category {
			return &u.CategoryScores[i]
		}
	}
	return nil
}

// RecalculateTotals rederives the overall aggregates from the category
// aggregates. OverallPercentage is 0 when nothing has been answered.
func (u *QuizUser) RecalculateTotals() {
	total, possible := 0, 0
	for _, cs := range u.CategoryScores {
		total += cs.TotalScored
		possible += cs.TotalWeighted
	}
	u.TotalScore = total
	u.TotalPossibleScore = possible
	if possible > 0 {
		u.OverallPercentage = float64(total) / float64(possible) * 100
	} else {
		u.OverallPercentage = 0
	}
}
