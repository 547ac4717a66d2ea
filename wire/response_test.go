package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/protocol"
)

func TestResponseFromWire(t *testing.T) {
	raw := map[string]any{
		"id":     "resp_1",
		"status": "completed",
		"output": []any{
			map[string]any{"type": "message", "role": "assistant", "content": []any{
				map[string]any{"type": "output_text", "text": "hi"},
			}},
			map[string]any{"type": "function_call", "call_id": "call_1", "name": "lookup", "arguments": "{}"},
		},
		"usage": map[string]any{
			"input_tokens":  float64(10),
			"output_tokens": float64(5),
			"total_tokens":  float64(15),
			"output_tokens_details": map[string]any{
				"reasoning_tokens": float64(2),
			},
		},
		"service_tier": "default",
	}

	resp, dropped, err := ResponseFromWire(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	assert.Equal(t, "resp_1", resp.ID)
	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Output, 2)
	_, ok := resp.Output[0].(protocol.Message)
	assert.True(t, ok)
	fc, ok := resp.Output[1].(protocol.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "call_1", fc.CallID)

	assert.Equal(t, int64(1), resp.Usage.Requests)
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
	assert.Equal(t, int64(5), resp.Usage.OutputTokens)
	assert.Equal(t, int64(15), resp.Usage.TotalTokens)
	assert.Equal(t, int64(2), resp.Usage.OutputTokensDetails["reasoning_tokens"])

	assert.Equal(t, "default", resp.ProviderData["service_tier"], "full payload is echoed")
}

func TestResponseFromWire_MissingID(t *testing.T) {
	resp, _, err := ResponseFromWire(map[string]any{"status": "failed"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ID, "resp_"))
	assert.Greater(t, len(resp.ID), len("resp_"))
}

func TestResponseFromWire_TotalSynthesized(t *testing.T) {
	resp, _, err := ResponseFromWire(map[string]any{
		"id": "resp_2",
		"usage": map[string]any{
			"input_tokens":  float64(3),
			"output_tokens": float64(4),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Usage.TotalTokens)
}

func TestResponseFromWire_ReportsDropped(t *testing.T) {
	raw := map[string]any{
		"id": "resp_3",
		"output": []any{
			map[string]any{"type": "message", "role": "user", "content": []any{
				map[string]any{"type": "input_image"},
			}},
		},
	}
	resp, dropped, err := ResponseFromWire(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Empty(t, resp.Output)
}
