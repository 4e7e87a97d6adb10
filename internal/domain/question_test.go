package domain_test

import (
	"strings"
	"testing"

	"newsqa-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestion_TrimsWhitespace(t *testing.T) {
	got, err := domain.ValidateQuestion("  금리 인상 전망 알려줘  ")
	require.NoError(t, err)
	assert.Equal(t, "금리 인상 전망 알려줘", got)
}

func TestValidateQuestion_EmptyRejected(t *testing.T) {
	_, err := domain.ValidateQuestion("   ")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestValidateQuestion_LengthBoundary(t *testing.T) {
	atLimit := strings.Repeat("가", domain.MaxQuestionLength)
	got, err := domain.ValidateQuestion(atLimit)
	require.NoError(t, err)
	assert.Equal(t, atLimit, got)

	_, err = domain.ValidateQuestion(atLimit + "가")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, domain.IsValidation(domain.NewValidationError("bad input")))
	assert.False(t, domain.IsValidation(domain.ErrRetrievalEmpty))
	assert.False(t, domain.IsValidation(nil))
}
