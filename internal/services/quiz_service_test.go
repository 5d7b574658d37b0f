package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"academy_backend/internal/models"
)

func questionFixture(id, correct string, points int) models.QuizQuestion {
	q := models.QuizQuestion{CorrectAnswer: correct, Points: points}
	q.ID = id
	return q
}

func TestGradeQuiz(t *testing.T) {
	questions := []models.QuizQuestion{
		questionFixture("q1", "Paris", 1),
		questionFixture("q2", "42", 1),
		questionFixture("q3", "true", 2),
	}

	t.Run("all correct", func(t *testing.T) {
		score := GradeQuiz(questions, map[string]string{
			"q1": "Paris", "q2": "42", "q3": "true",
		})
		assert.Equal(t, 100, score)
	})

	t.Run("weighted partial", func(t *testing.T) {
		// 2 of 4 points.
		score := GradeQuiz(questions, map[string]string{
			"q1": "London", "q2": "41", "q3": "true",
		})
		assert.Equal(t, 50, score)
	})

	t.Run("rounds to nearest percent", func(t *testing.T) {
		// 1 of 3 questions, 1 point each: 33.33 rounds to 33.
		qs := []models.QuizQuestion{
			questionFixture("q1", "a", 1),
			questionFixture("q2", "b", 1),
			questionFixture("q3", "c", 1),
		}
		assert.Equal(t, 33, GradeQuiz(qs, map[string]string{"q1": "a"}))
	})

	t.Run("answer matching ignores case and whitespace", func(t *testing.T) {
		score := GradeQuiz(questions[:1], map[string]string{"q1": "  paris "})
		assert.Equal(t, 100, score)
	})

	t.Run("missing answers score zero", func(t *testing.T) {
		assert.Equal(t, 0, GradeQuiz(questions, nil))
	})

	t.Run("zero point questions default to one", func(t *testing.T) {
		qs := []models.QuizQuestion{
			questionFixture("q1", "a", 0),
			questionFixture("q2", "b", 0),
		}
		assert.Equal(t, 50, GradeQuiz(qs, map[string]string{"q1": "a"}))
	})

	t.Run("no questions", func(t *testing.T) {
		assert.Equal(t, 0, GradeQuiz(nil, map[string]string{"q1": "a"}))
	})
}
