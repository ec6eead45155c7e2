package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/requests"
	"fmt"
	"strings"
)

const (
	callbackActionSubmit  = "submit"
	callbackActionApprove = string(approvals.DecisionApprove)
	callbackActionDeny    = string(approvals.DecisionDeny)
)

func createSubmitCallbackData(kind requests.Kind) string {
	return fmt.Sprintf("%s:%s", callbackActionSubmit, kind)
}

func createDecisionCallbackData(decision approvals.Decision, requestId string) string {
	return fmt.Sprintf("%s:%s", decision, requestId)
}

// parseCallbackData splits the `action:value` payload of an inline
// button press; the value may itself contain colons
func parseCallbackData(data string) (string, string) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return data, ""
	}
	return parts[0], parts[1]
}
