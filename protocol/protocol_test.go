package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInput(t *testing.T) {
	items := UserInput("hello")
	require.Len(t, items, 1)

	msg, ok := items[0].(Message)
	require.True(t, ok)
	assert.Equal(t, RoleUser, msg.Role)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, InputText{Text: "hello"}, msg.Content[0])
}

func TestRequestValidate(t *testing.T) {
	parallel := true

	req := &Request{Settings: Settings{ParallelToolCalls: &parallel}}
	err := req.Validate()
	require.Error(t, err)
	var uerr *UserError
	assert.ErrorAs(t, err, &uerr)

	req.Tools = []ToolDefinition{{Name: "t"}}
	assert.NoError(t, req.Validate())

	req.Tools = nil
	req.Handoffs = []HandoffDefinition{{ToolName: "h"}}
	assert.NoError(t, req.Validate())

	assert.NoError(t, (&Request{}).Validate())
}

func TestUsageAdd(t *testing.T) {
	total := Usage{}
	total.Add(Usage{Requests: 1, InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(Usage{Requests: 1, InputTokens: 2, OutputTokens: 3, TotalTokens: 5})

	assert.Equal(t, int64(2), total.Requests)
	assert.Equal(t, int64(12), total.InputTokens)
	assert.Equal(t, int64(8), total.OutputTokens)
	assert.Equal(t, int64(20), total.TotalTokens)
}
