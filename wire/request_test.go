package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/protocol"
)

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }
func boolPtr(v bool) *bool          { return &v }

func TestRequestBody_Minimal(t *testing.T) {
	req := &protocol.Request{
		Input: protocol.UserInput("hello"),
	}
	body, err := RequestBody(req)
	require.NoError(t, err)

	input, ok := body["input"].([]any)
	require.True(t, ok)
	require.Len(t, input, 1)

	_, hasTools := body["tools"]
	assert.False(t, hasTools, "no tools declared, no tools key emitted")
	_, hasTemp := body["temperature"]
	assert.False(t, hasTemp, "unset settings stay absent")
}

func TestRequestBody_Settings(t *testing.T) {
	req := &protocol.Request{
		SystemInstructions: "be brief",
		Input:              protocol.UserInput("hello"),
		Tools: []protocol.ToolDefinition{{
			Name:        "get_weather",
			Description: "looks up the weather",
			Parameters:  map[string]any{"type": "object"},
			Strict:      true,
		}},
		Settings: protocol.Settings{
			Temperature:       float64Ptr(0.2),
			TopP:              float64Ptr(0.9),
			MaxTokens:         int64Ptr(512),
			ToolChoice:        "auto",
			ParallelToolCalls: boolPtr(false),
			ReasoningEffort:   "low",
			Truncation:        "auto",
			Store:             boolPtr(true),
		},
		PreviousResponseID: "resp_prev",
	}
	body, err := RequestBody(req)
	require.NoError(t, err)

	assert.Equal(t, "be brief", body["instructions"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Equal(t, 0.9, body["top_p"])
	assert.Equal(t, int64(512), body["max_output_tokens"])
	assert.Equal(t, "auto", body["tool_choice"])
	assert.Equal(t, false, body["parallel_tool_calls"])
	assert.Equal(t, map[string]any{"effort": "low"}, body["reasoning"])
	assert.Equal(t, "auto", body["truncation"])
	assert.Equal(t, true, body["store"])
	assert.Equal(t, "resp_prev", body["previous_response_id"])
}

func TestRequestBody_HandoffsFlattenIntoTools(t *testing.T) {
	req := &protocol.Request{
		Input: protocol.UserInput("hello"),
		Tools: []protocol.ToolDefinition{{Name: "get_weather"}},
		Handoffs: []protocol.HandoffDefinition{{
			ToolName:        "transfer_to_billing",
			ToolDescription: "hand the conversation to the billing agent",
			InputSchema:     map[string]any{"type": "object"},
		}},
	}
	body, err := RequestBody(req)
	require.NoError(t, err)

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	handoff, ok := tools[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function", handoff["type"])
	assert.Equal(t, "transfer_to_billing", handoff["name"])
}

func TestRequestBody_OutputType(t *testing.T) {
	req := &protocol.Request{
		Input: protocol.UserInput("hello"),
		OutputType: &protocol.OutputType{
			Name:   "weather_report",
			Schema: map[string]any{"type": "object"},
			Strict: true,
		},
	}
	body, err := RequestBody(req)
	require.NoError(t, err)

	text, ok := body["text"].(map[string]any)
	require.True(t, ok)
	format, ok := text["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "weather_report", format["name"])
	assert.Equal(t, true, format["strict"])
}

func TestRequestBody_ProviderDataNeverShadows(t *testing.T) {
	req := &protocol.Request{
		SystemInstructions: "real",
		Input:              protocol.UserInput("hello"),
		Settings: protocol.Settings{
			ProviderData: map[string]any{
				"instructions": "fake",
				"service_tier": "priority",
			},
		},
	}
	body, err := RequestBody(req)
	require.NoError(t, err)

	assert.Equal(t, "real", body["instructions"])
	assert.Equal(t, "priority", body["service_tier"])
}

func TestRequestBody_ParallelToolCallsWithoutTools(t *testing.T) {
	req := &protocol.Request{
		Input:    protocol.UserInput("hello"),
		Settings: protocol.Settings{ParallelToolCalls: boolPtr(true)},
	}
	_, err := RequestBody(req)
	require.Error(t, err)

	var uerr *protocol.UserError
	assert.ErrorAs(t, err, &uerr)
}
