package testutil

// Wire event payload builders shared across transport tests.

// CreatedEvent builds a response.created event.
func CreatedEvent(responseID string) map[string]any {
	return map[string]any{
		"type":     "response.created",
		"response": map[string]any{"id": responseID, "status": "in_progress"},
	}
}

// TextDeltaEvent builds one output text increment.
func TextDeltaEvent(delta string) map[string]any {
	return map[string]any{"type": "response.output_text.delta", "delta": delta}
}

// CompletedEvent builds the success terminal wrapping the given response.
func CompletedEvent(response map[string]any) map[string]any {
	return map[string]any{"type": "response.completed", "response": response}
}

// FailedEvent builds a failure terminal.
func FailedEvent(responseID string) map[string]any {
	return map[string]any{
		"type":     "response.failed",
		"response": map[string]any{"id": responseID, "status": "failed"},
	}
}

// ErrorFrame builds the application-level error frame (no response).
func ErrorFrame(code, message string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"code": code, "message": message},
	}
}

// Response builds a minimal completed response object.
func Response(id string, output ...map[string]any) map[string]any {
	items := make([]any, 0, len(output))
	for _, o := range output {
		items = append(items, o)
	}
	return map[string]any{
		"id":     id,
		"status": "completed",
		"output": items,
		"usage": map[string]any{
			"input_tokens":  float64(7),
			"output_tokens": float64(5),
			"total_tokens":  float64(12),
		},
	}
}

// AssistantMessage builds an output message item with one text part.
func AssistantMessage(id, text string) map[string]any {
	return map[string]any{
		"type":   "message",
		"id":     id,
		"role":   "assistant",
		"status": "completed",
		"content": []any{
			map[string]any{"type": "output_text", "text": text},
		},
	}
}

// FunctionCallItem builds an output function call item.
func FunctionCallItem(id, callID, name, arguments string) map[string]any {
	return map[string]any{
		"type":      "function_call",
		"id":        id,
		"call_id":   callID,
		"name":      name,
		"arguments": arguments,
		"status":    "completed",
	}
}
