package wire

import (
	"github.com/hupe1980/agentwire/protocol"
)

// RequestBody builds the translated wire request object from a protocol
// request. The transport tags it with its own discriminator fields; this
// function only produces the shared body.
func RequestBody(req *protocol.Request) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := map[string]any{}
	set(body, "instructions", req.SystemInstructions)

	input, err := ItemsToWire(req.Input)
	if err != nil {
		return nil, err
	}
	body["input"] = input

	if tools := toolsToWire(req); len(tools) > 0 {
		body["tools"] = tools
	}
	set(body, "tool_choice", req.Settings.ToolChoice)
	if req.Settings.ParallelToolCalls != nil {
		body["parallel_tool_calls"] = *req.Settings.ParallelToolCalls
	}
	if req.Settings.Temperature != nil {
		body["temperature"] = *req.Settings.Temperature
	}
	if req.Settings.TopP != nil {
		body["top_p"] = *req.Settings.TopP
	}
	if req.Settings.MaxTokens != nil {
		body["max_output_tokens"] = *req.Settings.MaxTokens
	}
	if req.Settings.ReasoningEffort != "" {
		body["reasoning"] = map[string]any{"effort": req.Settings.ReasoningEffort}
	}
	set(body, "truncation", req.Settings.Truncation)
	if req.Settings.Store != nil {
		body["store"] = *req.Settings.Store
	}

	if req.OutputType != nil {
		format := map[string]any{
			"type":   "json_schema",
			"name":   req.OutputType.Name,
			"schema": req.OutputType.Schema,
			"strict": req.OutputType.Strict,
		}
		body["text"] = map[string]any{"format": format}
	}

	set(body, "previous_response_id", req.PreviousResponseID)
	set(body, "conversation", req.ConversationID)

	// Opaque provider settings merge last and never shadow canonical fields.
	mergeProviderData(body, req.Settings.ProviderData)
	return body, nil
}

// toolsToWire flattens function tools and handoffs into one declaration
// list; the service treats handoffs as regular function tools.
func toolsToWire(req *protocol.Request) []any {
	tools := make([]any, 0, len(req.Tools)+len(req.Handoffs))
	for _, t := range req.Tools {
		tools = append(tools, map[string]any{
			"type":        "function",
			"name":        t.Name,
			"description": t.Description,
			"parameters":  t.Parameters,
			"strict":      t.Strict,
		})
	}
	for _, h := range req.Handoffs {
		tools = append(tools, map[string]any{
			"type":        "function",
			"name":        h.ToolName,
			"description": h.ToolDescription,
			"parameters":  h.InputSchema,
			"strict":      h.Strict,
		})
	}
	return tools
}
