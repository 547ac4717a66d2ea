package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/protocol"
)

// roundTrip encodes the item, pushes it through JSON the way the transport
// would, and decodes it back.
func roundTrip(t *testing.T, item protocol.Item) protocol.Item {
	t.Helper()

	encoded, err := ItemToWire(item)
	require.NoError(t, err)

	data, err := json.Marshal(encoded)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	decoded, err := ItemFromWire(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	return decoded
}

func TestRoundTrip_Message(t *testing.T) {
	item := protocol.Message{
		ID:     "msg_1",
		Role:   protocol.RoleUser,
		Status: protocol.StatusCompleted,
		Content: []protocol.ContentPart{
			protocol.InputText{Text: "hello"},
			protocol.InputImage{ImageURL: "https://example.com/cat.png", Detail: "low"},
			protocol.InputFile{FileID: "file_9", Filename: "notes.txt"},
		},
		ProviderData: map[string]any{"vendor_tag": "abc"},
	}
	got := roundTrip(t, item)
	assert.Equal(t, item, got)
}

func TestRoundTrip_AssistantMessage(t *testing.T) {
	item := protocol.Message{
		ID:     "msg_2",
		Role:   protocol.RoleAssistant,
		Status: protocol.StatusCompleted,
		Content: []protocol.ContentPart{
			protocol.OutputText{Text: "hi there"},
			protocol.Refusal{Refusal: "cannot help with that"},
		},
	}
	assert.Equal(t, item, roundTrip(t, item))
}

func TestRoundTrip_FunctionCall(t *testing.T) {
	item := protocol.FunctionCall{
		ID:           "fc_1",
		CallID:       "call_1",
		Name:         "get_weather",
		Arguments:    `{"city":"Berlin"}`,
		Status:       protocol.StatusCompleted,
		ProviderData: map[string]any{"sequence_number": float64(4)},
	}
	assert.Equal(t, item, roundTrip(t, item))
}

func TestRoundTrip_FunctionCallResult(t *testing.T) {
	plain := protocol.FunctionCallResult{
		CallID: "call_1",
		Name:   "get_weather",
		Output: protocol.ToolOutputText{Text: "sunny"},
	}
	assert.Equal(t, plain, roundTrip(t, plain))

	structured := protocol.FunctionCallResult{
		CallID: "call_2",
		Output: protocol.ToolOutputContent{Parts: []protocol.ContentPart{
			protocol.InputText{Text: "see image"},
			protocol.InputImage{ImageURL: "data:image/png;base64,AAAA"},
		}},
	}
	assert.Equal(t, structured, roundTrip(t, structured))
}

func TestRoundTrip_Reasoning(t *testing.T) {
	item := protocol.Reasoning{
		ID:               "rs_1",
		Summary:          []string{"thought about it"},
		Content:          []string{"step one", "step two"},
		EncryptedContent: "opaque-blob",
	}
	assert.Equal(t, item, roundTrip(t, item))
}

func TestRoundTrip_ComputerCall(t *testing.T) {
	call := protocol.ComputerCall{
		ID:     "cc_1",
		CallID: "call_3",
		Status: protocol.StatusInProgress,
		Action: map[string]any{"type": "click", "x": float64(10), "y": float64(20)},
	}
	assert.Equal(t, call, roundTrip(t, call))

	result := protocol.ComputerCallResult{
		CallID:   "call_3",
		ImageURL: "data:image/png;base64,BBBB",
	}
	assert.Equal(t, result, roundTrip(t, result))
}

func TestRoundTrip_ShellCall(t *testing.T) {
	call := protocol.ShellCall{
		ID:               "sh_1",
		CallID:           "call_4",
		Status:           protocol.StatusInProgress,
		Commands:         []string{"ls -la", "cat go.mod"},
		TimeoutMS:        5000,
		WorkingDirectory: "/tmp",
	}
	assert.Equal(t, call, roundTrip(t, call))

	exit := int64(0)
	output := protocol.ShellCallOutput{
		CallID:   "call_4",
		Output:   "total 0",
		ExitCode: &exit,
	}
	assert.Equal(t, output, roundTrip(t, output))
}

func TestRoundTrip_ApplyPatchCall(t *testing.T) {
	for _, op := range []protocol.PatchOperation{
		{Kind: protocol.PatchCreateFile, Path: "a.txt", Content: "hello"},
		{Kind: protocol.PatchUpdateFile, Path: "b.txt", Diff: "@@ -1 +1 @@"},
		{Kind: protocol.PatchDeleteFile, Path: "c.txt"},
	} {
		call := protocol.ApplyPatchCall{CallID: "call_5", Operation: op}
		assert.Equal(t, call, roundTrip(t, call))
	}

	output := protocol.ApplyPatchCallOutput{CallID: "call_5", Status: protocol.StatusCompleted, Output: "ok"}
	assert.Equal(t, output, roundTrip(t, output))
}

func TestRoundTrip_HostedToolCall(t *testing.T) {
	item := protocol.HostedToolCall{
		ID:        "ws_1",
		Kind:      protocol.HostedWebSearch,
		Name:      "web_search_call",
		Status:    protocol.StatusCompleted,
		Arguments: `{"query":"golang websockets"}`,
	}
	assert.Equal(t, item, roundTrip(t, item))
}

func TestRoundTrip_Compaction(t *testing.T) {
	item := protocol.Compaction{ID: "cp_1", EncryptedContent: "blob"}
	assert.Equal(t, item, roundTrip(t, item))
}

func TestRoundTrip_Unknown(t *testing.T) {
	raw := map[string]any{
		"type":   "telemetry_marker",
		"id":     "tm_1",
		"weight": float64(3),
	}
	item, err := ItemFromWire(raw)
	require.NoError(t, err)
	unknown, ok := item.(protocol.Unknown)
	require.True(t, ok)
	assert.Equal(t, "tm_1", unknown.ID)

	encoded, err := ItemToWire(unknown)
	require.NoError(t, err)
	assert.Equal(t, "telemetry_marker", encoded["type"])
	assert.Equal(t, "tm_1", encoded["id"])
	assert.Equal(t, float64(3), encoded["weight"])
}

func TestProviderData_SurvivesRoundTrip(t *testing.T) {
	item := protocol.FunctionCall{
		CallID:    "call_1",
		Name:      "noop",
		Arguments: "{}",
		ProviderData: map[string]any{
			"vendor_extension": map[string]any{"nested": true},
			"score":            float64(0.5),
		},
	}
	got := roundTrip(t, item)
	fc, ok := got.(protocol.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, item.ProviderData, fc.ProviderData)
}

func TestProviderData_NeverShadowsCanonicalFields(t *testing.T) {
	item := protocol.FunctionCall{
		CallID:       "call_real",
		Name:         "real_name",
		ProviderData: map[string]any{"call_id": "call_fake", "name": "fake"},
	}
	encoded, err := ItemToWire(item)
	require.NoError(t, err)
	assert.Equal(t, "call_real", encoded["call_id"])
	assert.Equal(t, "real_name", encoded["name"])
}

func TestItemFromWire_LegacyAliases(t *testing.T) {
	raw := map[string]any{
		"type":      "function_call",
		"callId":    "call_7",
		"name":      "lookup",
		"arguments": map[string]any{"q": "x"},
	}
	item, err := ItemFromWire(raw)
	require.NoError(t, err)
	fc, ok := item.(protocol.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "call_7", fc.CallID)
	assert.JSONEq(t, `{"q":"x"}`, fc.Arguments)
}

func TestItemFromWire_StringMessageContent(t *testing.T) {
	raw := map[string]any{"type": "message", "role": "user", "content": "plain"}
	item, err := ItemFromWire(raw)
	require.NoError(t, err)
	msg, ok := item.(protocol.Message)
	require.True(t, ok)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, protocol.InputText{Text: "plain"}, msg.Content[0])
}

func TestItemFromWire_DropsStaleImage(t *testing.T) {
	raw := map[string]any{
		"type": "message",
		"role": "user",
		"content": []any{
			map[string]any{"type": "input_image", "detail": "auto"},
		},
	}
	item, err := ItemFromWire(raw)
	require.NoError(t, err)
	assert.Nil(t, item, "message with only unretrievable image data is dropped")
}

func TestItemFromWire_UnknownOutputContentFails(t *testing.T) {
	raw := map[string]any{
		"type": "message",
		"role": "assistant",
		"content": []any{
			map[string]any{"type": "output_hologram", "data": "??"},
		},
	}
	_, err := ItemFromWire(raw)
	require.Error(t, err)
	var perr *protocol.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestItemFromWire_MissingType(t *testing.T) {
	_, err := ItemFromWire(map[string]any{"id": "x"})
	var perr *protocol.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestItemsFromWire_ReportsDropped(t *testing.T) {
	list := []any{
		map[string]any{"type": "message", "role": "user", "content": []any{
			map[string]any{"type": "input_image"},
		}},
		map[string]any{"type": "message", "role": "user", "content": "kept"},
	}
	items, dropped, err := ItemsFromWire(list)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, items, 1)
}

func TestItemFromWire_LocalShellAlias(t *testing.T) {
	raw := map[string]any{
		"type":    "local_shell_call",
		"call_id": "call_9",
		"action": map[string]any{
			"type":    "exec",
			"command": []any{"ls", "-la"},
		},
	}
	item, err := ItemFromWire(raw)
	require.NoError(t, err)
	sh, ok := item.(protocol.ShellCall)
	require.True(t, ok)
	assert.Equal(t, []string{"ls -la"}, sh.Commands)
}
