package domain

import (
	"fmt"
	"strings"
	"time"
)

// AwardPoints is credited for one correct answer.
const AwardPoints = 100

// Gender is the closed set of profile genders.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Person is a player profile. Score only changes through atomic increments.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Avatar    string    `json:"avatar"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields. Score is deliberately absent.
type ProfileUpdate struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
	Avatar string `json:"avatar"`
}

// ValidateProfile checks the fields shared by creation and update.
func ValidateProfile(name string, age int, gender Gender) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPerson)
	}
	if age <= 0 {
		return fmt.Errorf("%w: age must be positive", ErrInvalidPerson)
	}
	if !gender.Valid() {
		return fmt.Errorf("%w: gender must be male, female or other", ErrInvalidPerson)
	}
	return nil
}

// Question is a multiple choice trivia question.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// Validate enforces the write-time invariants of a question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %q needs at least 2 options", ErrInvalidQuestion, q.Question)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: %q has duplicate option %q", ErrInvalidQuestion, q.Question, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: %q correct answer is not one of the options", ErrInvalidQuestion, q.Question)
	}
	return nil
}

// PublicQuestion is the client view of a question; the correct answer is withheld.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Public strips the correct answer.
func (q Question) Public() PublicQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{ID: q.ID, Question: q.Question, Options: opts}
}

// CheckAnswerRequest is a submitted answer for one question on behalf of one person.
type CheckAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	UserID     string `json:"userId"`
}

// Validate reports every missing field in one ErrInvalidRequest.
func (r CheckAnswerRequest) Validate() error {
	var missing []string
	if r.QuestionID == "" {
		missing = append(missing, "questionId")
	}
	if r.Answer == "" {
		missing = append(missing, "answer")
	}
	if r.UserID == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// CheckAnswerResult summarizes a verification. UpdatedScore is set only when Correct.
type CheckAnswerResult struct {
	Correct      bool `json:"correct"`
	UpdatedScore *int `json:"updatedScore,omitempty"`
}

// ProfilePatch is a partial profile edit; nil fields keep their current value.
type ProfilePatch struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *Gender `json:"gender"`
	Avatar *string `json:"avatar"`
}

// Apply merges the patch over p's editable fields.
func (pp ProfilePatch) Apply(p Person) ProfileUpdate {
	u := ProfileUpdate{Name: p.Name, Age: p.Age, Gender: p.Gender, Avatar: p.Avatar}
	if pp.Name != nil {
		u.Name = strings.TrimSpace(*pp.Name)
	}
	if pp.Age != nil {
		u.Age = *pp.Age
	}
	if pp.Gender != nil {
		u.Gender = *pp.Gender
	}
	if pp.Avatar != nil {
		u.Avatar = *pp.Avatar
	}
	return u
}

// LeaderboardEntry is a ranked, snapshot-friendly view of a person.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard at one point in time.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
