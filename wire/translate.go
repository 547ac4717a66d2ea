package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentwire/protocol"
)

// legacyKeyAliases maps field names older clients emitted to their canonical
// wire names. Applied before any other decoding step so the rest of the
// translator only ever sees canonical keys.
var legacyKeyAliases = map[string]string{
	"callId":       "call_id",
	"toolCallId":   "call_id",
	"tool_call_id": "call_id",
	"responseId":   "response_id",
	"imageUrl":     "image_url",
	"fileId":       "file_id",
}

// canonicalize returns a copy of raw with legacy key aliases renamed and
// object-valued "arguments" serialized to their canonical string form.
// The input map is never mutated.
func canonicalize(raw map[string]any) map[string]any {
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		if canon, ok := legacyKeyAliases[k]; ok {
			if _, exists := raw[canon]; !exists {
				k = canon
			}
		}
		m[k] = v
	}
	if args, ok := m["arguments"]; ok {
		if _, isString := args.(string); !isString && args != nil {
			if b, err := json.Marshal(args); err == nil {
				m["arguments"] = string(b)
			}
		}
	}
	return m
}

// pop removes key from m and returns its string value, or "" when absent or
// not a string.
func pop(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	delete(m, key)
	s, _ := v.(string)
	return s
}

// popAny removes key from m and returns its raw value.
func popAny(m map[string]any, key string) any {
	v, ok := m[key]
	if !ok {
		return nil
	}
	delete(m, key)
	return v
}

// popInt removes key from m and returns it as int64 (JSON numbers decode as
// float64).
func popInt(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	delete(m, key)
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// remainder returns m itself as the ProviderData bag, or nil when empty.
func remainder(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// set assigns only non-zero values, keeping encoded items minimal.
func set(m map[string]any, key string, value any) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case protocol.ItemStatus:
		if v == "" {
			return
		}
		m[key] = string(v)
		return
	case nil:
		return
	}
	m[key] = value
}

// mergeProviderData copies bag entries into out without overriding canonical
// fields already present.
func mergeProviderData(out, bag map[string]any) {
	for k, v := range bag {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
}

// hostedKinds is the closed set of hosted tool wire types the client models.
var hostedKinds = map[string]protocol.HostedToolKind{
	"web_search_call":       protocol.HostedWebSearch,
	"file_search_call":      protocol.HostedFileSearch,
	"code_interpreter_call": protocol.HostedCodeInterpreter,
	"image_generation_call": protocol.HostedImageGeneration,
	"mcp_call":              protocol.HostedMCPCall,
}

// ItemToWire encodes one protocol item into its wire representation.
func ItemToWire(item protocol.Item) (map[string]any, error) {
	switch it := item.(type) {
	case protocol.Message:
		return messageToWire(it)
	case protocol.FunctionCall:
		out := map[string]any{"type": "function_call"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "name", it.Name)
		set(out, "arguments", it.Arguments)
		set(out, "status", it.Status)
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.FunctionCallResult:
		out := map[string]any{"type": "function_call_output"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "name", it.Name)
		set(out, "status", it.Status)
		encoded, err := toolOutputToWire(it.Output)
		if err != nil {
			return nil, err
		}
		out["output"] = encoded
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.Reasoning:
		out := map[string]any{"type": "reasoning"}
		set(out, "id", it.ID)
		set(out, "status", it.Status)
		summary := make([]any, 0, len(it.Summary))
		for _, s := range it.Summary {
			summary = append(summary, map[string]any{"type": "summary_text", "text": s})
		}
		out["summary"] = summary
		if len(it.Content) > 0 {
			content := make([]any, 0, len(it.Content))
			for _, c := range it.Content {
				content = append(content, map[string]any{"type": "reasoning_text", "text": c})
			}
			out["content"] = content
		}
		set(out, "encrypted_content", it.EncryptedContent)
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ComputerCall:
		out := map[string]any{"type": "computer_call"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		if it.Action != nil {
			out["action"] = it.Action
		}
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ComputerCallResult:
		out := map[string]any{"type": "computer_call_output"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		out["output"] = map[string]any{"type": "computer_screenshot", "image_url": it.ImageURL}
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ShellCall:
		out := map[string]any{"type": "shell_call"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		action := map[string]any{"type": "exec"}
		commands := make([]any, 0, len(it.Commands))
		for _, c := range it.Commands {
			commands = append(commands, c)
		}
		action["commands"] = commands
		if it.TimeoutMS > 0 {
			action["timeout_ms"] = it.TimeoutMS
		}
		set(action, "working_directory", it.WorkingDirectory)
		out["action"] = action
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ShellCallOutput:
		out := map[string]any{"type": "shell_call_output"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		out["output"] = it.Output
		if it.ExitCode != nil {
			out["exit_code"] = *it.ExitCode
		}
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ApplyPatchCall:
		out := map[string]any{"type": "apply_patch_call"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		op := map[string]any{"type": string(it.Operation.Kind), "path": it.Operation.Path}
		switch it.Operation.Kind {
		case protocol.PatchCreateFile:
			op["content"] = it.Operation.Content
		case protocol.PatchUpdateFile:
			op["diff"] = it.Operation.Diff
		case protocol.PatchDeleteFile:
			// path only
		default:
			return nil, protocol.NewProtocolError("unknown patch operation kind %q", it.Operation.Kind)
		}
		out["operation"] = op
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.ApplyPatchCallOutput:
		out := map[string]any{"type": "apply_patch_call_output"}
		set(out, "id", it.ID)
		set(out, "call_id", it.CallID)
		set(out, "status", it.Status)
		out["output"] = it.Output
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.HostedToolCall:
		wireType := string(it.Kind)
		if it.Kind == protocol.OtherHostedTool || wireType == "" {
			wireType = it.Name
		}
		if wireType == "" {
			return nil, protocol.NewProtocolError("hosted tool call has neither kind nor name")
		}
		out := map[string]any{"type": wireType}
		set(out, "id", it.ID)
		set(out, "status", it.Status)
		set(out, "arguments", it.Arguments)
		set(out, "output", it.Output)
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.Compaction:
		out := map[string]any{"type": "compaction"}
		set(out, "id", it.ID)
		set(out, "encrypted_content", it.EncryptedContent)
		mergeProviderData(out, it.ProviderData)
		return out, nil
	case protocol.Unknown:
		out := make(map[string]any, len(it.ProviderData)+1)
		for k, v := range it.ProviderData {
			out[k] = v
		}
		set(out, "id", it.ID)
		return out, nil
	default:
		return nil, protocol.NewProtocolError("unsupported item type %T", item)
	}
}

func messageToWire(it protocol.Message) (map[string]any, error) {
	out := map[string]any{"type": "message"}
	set(out, "id", it.ID)
	out["role"] = string(it.Role)
	set(out, "status", it.Status)
	content := make([]any, 0, len(it.Content))
	for _, part := range it.Content {
		encoded, err := contentPartToWire(part)
		if err != nil {
			return nil, err
		}
		content = append(content, encoded)
	}
	out["content"] = content
	mergeProviderData(out, it.ProviderData)
	return out, nil
}

func contentPartToWire(part protocol.ContentPart) (map[string]any, error) {
	switch p := part.(type) {
	case protocol.InputText:
		out := map[string]any{"type": "input_text", "text": p.Text}
		mergeProviderData(out, p.ProviderData)
		return out, nil
	case protocol.OutputText:
		out := map[string]any{"type": "output_text", "text": p.Text}
		mergeProviderData(out, p.ProviderData)
		return out, nil
	case protocol.Refusal:
		out := map[string]any{"type": "refusal", "refusal": p.Refusal}
		mergeProviderData(out, p.ProviderData)
		return out, nil
	case protocol.InputImage:
		out := map[string]any{"type": "input_image"}
		set(out, "image_url", p.ImageURL)
		set(out, "file_id", p.FileID)
		set(out, "detail", p.Detail)
		mergeProviderData(out, p.ProviderData)
		return out, nil
	case protocol.InputFile:
		out := map[string]any{"type": "input_file"}
		set(out, "file_data", p.FileData)
		set(out, "file_url", p.FileURL)
		set(out, "file_id", p.FileID)
		set(out, "filename", p.Filename)
		mergeProviderData(out, p.ProviderData)
		return out, nil
	default:
		return nil, protocol.NewProtocolError("unsupported content part type %T", part)
	}
}

func toolOutputToWire(output protocol.ToolOutput) (any, error) {
	switch o := output.(type) {
	case nil:
		return "", nil
	case protocol.ToolOutputText:
		return o.Text, nil
	case protocol.ToolOutputContent:
		parts := make([]any, 0, len(o.Parts))
		for _, p := range o.Parts {
			encoded, err := contentPartToWire(p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, encoded)
		}
		return parts, nil
	default:
		return nil, protocol.NewProtocolError("unsupported tool output type %T", output)
	}
}

// ItemFromWire decodes one wire item. A (nil, nil) return means the item is
// intentionally dropped because the client can no longer represent it (for
// example an image reference with no retrievable source); callers log this
// rather than treating it as an error.
func ItemFromWire(raw map[string]any) (protocol.Item, error) {
	m := canonicalize(raw)
	wireType := pop(m, "type")
	switch wireType {
	case "message":
		return messageFromWire(m)
	case "function_call":
		return protocol.FunctionCall{
			ID:           pop(m, "id"),
			CallID:       pop(m, "call_id"),
			Name:         pop(m, "name"),
			Arguments:    pop(m, "arguments"),
			Status:       protocol.ItemStatus(pop(m, "status")),
			ProviderData: remainder(m),
		}, nil
	case "function_call_output", "function_call_result":
		output, err := toolOutputFromWire(popAny(m, "output"))
		if err != nil {
			return nil, err
		}
		return protocol.FunctionCallResult{
			ID:           pop(m, "id"),
			CallID:       pop(m, "call_id"),
			Name:         pop(m, "name"),
			Status:       protocol.ItemStatus(pop(m, "status")),
			Output:       output,
			ProviderData: remainder(m),
		}, nil
	case "reasoning":
		return reasoningFromWire(m)
	case "computer_call":
		action, _ := popAny(m, "action").(map[string]any)
		return protocol.ComputerCall{
			ID:           pop(m, "id"),
			CallID:       pop(m, "call_id"),
			Status:       protocol.ItemStatus(pop(m, "status")),
			Action:       action,
			ProviderData: remainder(m),
		}, nil
	case "computer_call_output":
		imageURL := ""
		if output, ok := popAny(m, "output").(map[string]any); ok {
			imageURL, _ = output["image_url"].(string)
		}
		return protocol.ComputerCallResult{
			ID:           pop(m, "id"),
			CallID:       pop(m, "call_id"),
			Status:       protocol.ItemStatus(pop(m, "status")),
			ImageURL:     imageURL,
			ProviderData: remainder(m),
		}, nil
	case "shell_call", "local_shell_call":
		return shellCallFromWire(m)
	case "shell_call_output", "local_shell_call_output":
		item := protocol.ShellCallOutput{
			ID:     pop(m, "id"),
			CallID: pop(m, "call_id"),
			Status: protocol.ItemStatus(pop(m, "status")),
			Output: pop(m, "output"),
		}
		if code, ok := popInt(m, "exit_code"); ok {
			item.ExitCode = &code
		}
		item.ProviderData = remainder(m)
		return item, nil
	case "apply_patch_call":
		return applyPatchCallFromWire(m)
	case "apply_patch_call_output":
		return protocol.ApplyPatchCallOutput{
			ID:           pop(m, "id"),
			CallID:       pop(m, "call_id"),
			Status:       protocol.ItemStatus(pop(m, "status")),
			Output:       pop(m, "output"),
			ProviderData: remainder(m),
		}, nil
	case "compaction":
		return protocol.Compaction{
			ID:               pop(m, "id"),
			EncryptedContent: pop(m, "encrypted_content"),
			ProviderData:     remainder(m),
		}, nil
	case "":
		return nil, protocol.NewProtocolError("wire item is missing a type")
	default:
		if kind, ok := hostedKinds[wireType]; ok {
			return protocol.HostedToolCall{
				ID:           pop(m, "id"),
				Kind:         kind,
				Name:         wireType,
				Status:       protocol.ItemStatus(pop(m, "status")),
				Arguments:    pop(m, "arguments"),
				Output:       pop(m, "output"),
				ProviderData: remainder(m),
			}, nil
		}
		// Unmodeled item: keep the full payload so it can be echoed back.
		m["type"] = wireType
		return protocol.Unknown{ID: pop(m, "id"), ProviderData: m}, nil
	}
}

func messageFromWire(m map[string]any) (protocol.Item, error) {
	item := protocol.Message{
		ID:     pop(m, "id"),
		Role:   protocol.Role(pop(m, "role")),
		Status: protocol.ItemStatus(pop(m, "status")),
	}
	rawContent := popAny(m, "content")
	switch content := rawContent.(type) {
	case string:
		// Legacy shorthand: bare string content means one text part.
		item.Content = []protocol.ContentPart{protocol.InputText{Text: content}}
	case []any:
		hadParts := len(content) > 0
		for _, entry := range content {
			partMap, ok := entry.(map[string]any)
			if !ok {
				return nil, protocol.NewProtocolError("message content entry is not an object")
			}
			part, err := contentPartFromWire(partMap, item.Role == protocol.RoleAssistant)
			if err != nil {
				return nil, err
			}
			if part == nil {
				continue // stale reference, dropped
			}
			item.Content = append(item.Content, part)
		}
		if hadParts && len(item.Content) == 0 {
			// Every part referenced data that is no longer retrievable.
			return nil, nil
		}
	case nil:
		// empty message
	default:
		return nil, protocol.NewProtocolError("unsupported message content shape %T", rawContent)
	}
	item.ProviderData = remainder(m)
	return item, nil
}

// contentPartFromWire decodes one content part. output selects the stricter
// handling for model-produced content: an unrecognized output content type
// means the service changed shape in a way the client cannot represent.
// A nil part with nil error means the part was intentionally dropped.
func contentPartFromWire(raw map[string]any, output bool) (protocol.ContentPart, error) {
	m := canonicalize(raw)
	partType := pop(m, "type")
	switch partType {
	case "input_text", "text":
		return protocol.InputText{Text: pop(m, "text"), ProviderData: remainder(m)}, nil
	case "output_text":
		return protocol.OutputText{Text: pop(m, "text"), ProviderData: remainder(m)}, nil
	case "refusal":
		return protocol.Refusal{Refusal: pop(m, "refusal"), ProviderData: remainder(m)}, nil
	case "input_image", "image":
		part := protocol.InputImage{
			ImageURL: pop(m, "image_url"),
			FileID:   pop(m, "file_id"),
			Detail:   pop(m, "detail"),
		}
		if part.ImageURL == "" && part.FileID == "" {
			return nil, nil // image data no longer retrievable
		}
		part.ProviderData = remainder(m)
		return part, nil
	case "input_file", "file":
		return protocol.InputFile{
			FileData:     pop(m, "file_data"),
			FileURL:      pop(m, "file_url"),
			FileID:       pop(m, "file_id"),
			Filename:     pop(m, "filename"),
			ProviderData: remainder(m),
		}, nil
	default:
		if output {
			return nil, protocol.NewProtocolError("unknown output content type %q", partType)
		}
		return nil, protocol.NewProtocolError("unknown input content type %q", partType)
	}
}

func toolOutputFromWire(raw any) (protocol.ToolOutput, error) {
	switch output := raw.(type) {
	case nil:
		return protocol.ToolOutputText{}, nil
	case string:
		return protocol.ToolOutputText{Text: output}, nil
	case []any:
		result := protocol.ToolOutputContent{}
		for _, entry := range output {
			partMap, ok := entry.(map[string]any)
			if !ok {
				return nil, protocol.NewProtocolError("tool output entry is not an object")
			}
			part, err := contentPartFromWire(partMap, false)
			if err != nil {
				return nil, err
			}
			if part == nil {
				continue
			}
			result.Parts = append(result.Parts, part)
		}
		return result, nil
	default:
		return nil, protocol.NewProtocolError("unsupported tool output shape %T", raw)
	}
}

func reasoningFromWire(m map[string]any) (protocol.Item, error) {
	item := protocol.Reasoning{
		ID:               pop(m, "id"),
		Status:           protocol.ItemStatus(pop(m, "status")),
		EncryptedContent: pop(m, "encrypted_content"),
	}
	texts, err := textEntries(popAny(m, "summary"), "summary")
	if err != nil {
		return nil, err
	}
	item.Summary = texts
	texts, err = textEntries(popAny(m, "content"), "content")
	if err != nil {
		return nil, err
	}
	item.Content = texts
	item.ProviderData = remainder(m)
	return item, nil
}

// textEntries flattens a list of {type, text} objects into their text values.
func textEntries(raw any, field string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, protocol.NewProtocolError("reasoning %s is not a list", field)
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, protocol.NewProtocolError("reasoning %s entry is not an object", field)
		}
		text, _ := m["text"].(string)
		out = append(out, text)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func shellCallFromWire(m map[string]any) (protocol.Item, error) {
	item := protocol.ShellCall{
		ID:     pop(m, "id"),
		CallID: pop(m, "call_id"),
		Status: protocol.ItemStatus(pop(m, "status")),
	}
	if action, ok := popAny(m, "action").(map[string]any); ok {
		if commands, ok := action["commands"].([]any); ok {
			for _, c := range commands {
				if s, ok := c.(string); ok {
					item.Commands = append(item.Commands, s)
				}
			}
		} else if command, ok := action["command"].([]any); ok {
			// legacy singular form carries argv for one command
			argv := make([]string, 0, len(command))
			for _, c := range command {
				if s, ok := c.(string); ok {
					argv = append(argv, s)
				}
			}
			if len(argv) > 0 {
				item.Commands = append(item.Commands, strings.Join(argv, " "))
			}
		}
		if timeout, ok := action["timeout_ms"].(float64); ok {
			item.TimeoutMS = int64(timeout)
		}
		if wd, ok := action["working_directory"].(string); ok {
			item.WorkingDirectory = wd
		}
	}
	item.ProviderData = remainder(m)
	return item, nil
}

func applyPatchCallFromWire(m map[string]any) (protocol.Item, error) {
	item := protocol.ApplyPatchCall{
		ID:     pop(m, "id"),
		CallID: pop(m, "call_id"),
		Status: protocol.ItemStatus(pop(m, "status")),
	}
	op, ok := popAny(m, "operation").(map[string]any)
	if !ok {
		return nil, protocol.NewProtocolError("apply_patch_call is missing its operation")
	}
	kind := protocol.PatchOperationKind(fmt.Sprint(op["type"]))
	switch kind {
	case protocol.PatchCreateFile, protocol.PatchUpdateFile, protocol.PatchDeleteFile:
	default:
		return nil, protocol.NewProtocolError("unknown patch operation kind %q", kind)
	}
	item.Operation = protocol.PatchOperation{Kind: kind}
	item.Operation.Path, _ = op["path"].(string)
	item.Operation.Diff, _ = op["diff"].(string)
	item.Operation.Content, _ = op["content"].(string)
	item.ProviderData = remainder(m)
	return item, nil
}

// ItemsToWire encodes an ordered item sequence.
func ItemsToWire(items []protocol.Item) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		encoded, err := ItemToWire(item)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}
	return out, nil
}

// ItemsFromWire decodes an ordered wire item sequence, skipping items the
// translator intentionally drops. The dropped count is returned so callers
// can log it.
func ItemsFromWire(list []any) (items []protocol.Item, dropped int, err error) {
	for _, entry := range list {
		raw, ok := entry.(map[string]any)
		if !ok {
			return nil, dropped, protocol.NewProtocolError("wire item is not an object")
		}
		item, err := ItemFromWire(raw)
		if err != nil {
			return nil, dropped, err
		}
		if item == nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}
