package domain_test

import (
	"testing"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *domain.AssessmentSession {
	return domain.NewAssessmentSession(42, "cand-1")
}

func TestStartStage(t *testing.T) {
	now := time.Now()

	t.Run("Technical stage starts and sets the deadline from the quiz", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)

		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))
		require.NotNil(t, session.TechnicalExpiresAt)
		assert.Equal(t, now.Add(30*time.Minute), *session.TechnicalExpiresAt)
	})

	t.Run("HR stage cannot start before a technical result exists", func(t *testing.T) {
		session := newSession()
		err := session.StartStage(domain.StageHR, hrQuiz(t), now)
		assert.True(t, apperror.IsKind(err, apperror.KindOutOfOrder))
	})

	t.Run("A started stage cannot be started again", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))

		err := session.StartStage(domain.StageTechnical, quiz, now)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyAttempted))
	})

	t.Run("A scored stage cannot be started again", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))
		_, err := session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 0}, now)
		require.NoError(t, err)

		err = session.StartStage(domain.StageTechnical, quiz, now)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyAttempted))
	})

	t.Run("The quiz must belong to the requested stage", func(t *testing.T) {
		session := newSession()
		err := session.StartStage(domain.StageTechnical, hrQuiz(t), now)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestSubmitStage(t *testing.T) {
	now := time.Now()

	t.Run("Submitting an unstarted stage is out of order", func(t *testing.T) {
		session := newSession()
		_, err := session.SubmitStage(domain.StageTechnical, technicalQuiz(t, 60), nil, now)
		assert.True(t, apperror.IsKind(err, apperror.KindOutOfOrder))
	})

	t.Run("Passing the technical stage advances the session to HR", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))

		result, err := session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 0, "q2": 2}, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Equal(t, domain.SessionStageHR, session.Stage)
		assert.NotNil(t, session.TechnicalResult)
	})

	t.Run("A failed technical stage still advances; gating happens at aggregation", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))

		result, err := session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 1}, now)
		require.NoError(t, err)
		assert.False(t, result.Passed)
		assert.Equal(t, domain.SessionStageHR, session.Stage)
	})

	t.Run("Late submission is rejected as expired and records nothing", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60) // 30 minute limit
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))

		late := now.Add(31 * time.Minute)
		_, err := session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 0, "q2": 2}, late)
		assert.True(t, apperror.IsKind(err, apperror.KindExpired))
		assert.Nil(t, session.TechnicalResult)
		assert.Equal(t, domain.SessionStageTechnical, session.Stage)
	})

	t.Run("A scored stage cannot be submitted twice", func(t *testing.T) {
		session := newSession()
		quiz := technicalQuiz(t, 60)
		require.NoError(t, session.StartStage(domain.StageTechnical, quiz, now))
		_, err := session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 0}, now)
		require.NoError(t, err)

		_, err = session.SubmitStage(domain.StageTechnical, quiz, map[string]int{"q1": 0, "q2": 2}, now)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyAttempted))
	})

	t.Run("Completing the HR stage completes the session", func(t *testing.T) {
		session := completedSession(t, now, true, true)
		assert.Equal(t, domain.SessionStageCompleted, session.Stage)
	})
}

// completedSession runs a session through both stages. passTech/passHR control
// whether the submitted answers hit the pass threshold.
func completedSession(t *testing.T, now time.Time, passTech, passHR bool) *domain.AssessmentSession {
	t.Helper()
	session := newSession()
	tech := technicalQuiz(t, 60)
	hr := hrQuiz(t)

	techAnswers := map[string]int{"q1": 1}
	if passTech {
		techAnswers = map[string]int{"q1": 0, "q2": 2}
	}
	hrAnswers := map[string]int{"h1": 0}
	if passHR {
		hrAnswers = map[string]int{"h1": 1, "h2": 3}
	}

	require.NoError(t, session.StartStage(domain.StageTechnical, tech, now))
	_, err := session.SubmitStage(domain.StageTechnical, tech, techAnswers, now)
	require.NoError(t, err)
	require.NoError(t, session.StartStage(domain.StageHR, hr, now))
	_, err = session.SubmitStage(domain.StageHR, hr, hrAnswers, now)
	require.NoError(t, err)
	return session
}

func TestAggregateResult(t *testing.T) {
	now := time.Now()

	t.Run("Requires both stage results", func(t *testing.T) {
		session := newSession()
		_, err := session.AggregateResult()
		assert.True(t, apperror.IsKind(err, apperror.KindOutOfOrder))
	})

	t.Run("Passing both stages passes overall", func(t *testing.T) {
		session := completedSession(t, now, true, true)
		report, err := session.AggregateResult()
		require.NoError(t, err)
		assert.True(t, report.OverallPassed)
		assert.Equal(t, 100, report.TechnicalPercent)
		assert.Equal(t, 100, report.HRPercent)
	})

	t.Run("A strong technical score never compensates for a failed HR stage", func(t *testing.T) {
		session := completedSession(t, now, true, false)
		report, err := session.AggregateResult()
		require.NoError(t, err)
		assert.False(t, report.OverallPassed)
		assert.Contains(t, report.Recommendation, "behavioral")
	})

	t.Run("Failing both stages names both in the recommendation", func(t *testing.T) {
		session := completedSession(t, now, false, false)
		report, err := session.AggregateResult()
		require.NoError(t, err)
		assert.False(t, report.OverallPassed)
		assert.Contains(t, report.Recommendation, "both")
	})

	t.Run("Repeated aggregation yields identical reports", func(t *testing.T) {
		session := completedSession(t, now, true, true)
		first, err := session.AggregateResult()
		require.NoError(t, err)
		second, err := session.AggregateResult()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
