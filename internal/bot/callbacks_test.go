package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/requests"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackDataRoundTrip(t *testing.T) {
	action, value := parseCallbackData(createSubmitCallbackData(requests.KindBreak))
	assert.Equal(t, callbackActionSubmit, action)
	assert.Equal(t, string(requests.KindBreak), value)

	action, value = parseCallbackData(createDecisionCallbackData(approvals.DecisionApprove, "abc-123"))
	assert.Equal(t, callbackActionApprove, action)
	assert.Equal(t, "abc-123", value)

	action, value = parseCallbackData(createDecisionCallbackData(approvals.DecisionDeny, "abc-123"))
	assert.Equal(t, callbackActionDeny, action)
	assert.Equal(t, "abc-123", value)
}

func TestParseCallbackDataWithoutValue(t *testing.T) {
	action, value := parseCallbackData("refresh")
	assert.Equal(t, "refresh", action)
	assert.Empty(t, value)
}

func TestParseCallbackDataWithColonsInValue(t *testing.T) {
	action, value := parseCallbackData("deny:a:b:c")
	assert.Equal(t, callbackActionDeny, action)
	assert.Equal(t, "a:b:c", value)
}
