package wire

import (
	"github.com/hupe1980/agentwire/protocol"

	"github.com/google/uuid"
)

// ResponseFromWire translates a raw wire response object into a
// protocol.Response. The raw object is echoed into ProviderData so callers
// never lose fields the translator does not model. The dropped count reports
// output items intentionally skipped (see ItemFromWire); callers log it.
func ResponseFromWire(raw map[string]any) (*protocol.Response, int, error) {
	resp := &protocol.Response{ProviderData: raw}

	resp.ID, _ = raw["id"].(string)
	if resp.ID == "" {
		// The service always assigns ids on success; failures may not.
		resp.ID = "resp_" + uuid.NewString()
	}
	resp.Status, _ = raw["status"].(string)

	var dropped int
	if output, ok := raw["output"].([]any); ok {
		items, d, err := ItemsFromWire(output)
		if err != nil {
			return nil, 0, err
		}
		resp.Output = items
		dropped = d
	}

	resp.Usage = usageFromWire(raw["usage"])
	return resp, dropped, nil
}

func usageFromWire(raw any) protocol.Usage {
	usage := protocol.Usage{Requests: 1}
	m, ok := raw.(map[string]any)
	if !ok {
		return usage
	}
	usage.InputTokens = intField(m, "input_tokens")
	usage.OutputTokens = intField(m, "output_tokens")
	usage.TotalTokens = intField(m, "total_tokens")
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	usage.InputTokensDetails = detailMap(m["input_tokens_details"])
	usage.OutputTokensDetails = detailMap(m["output_tokens_details"])
	return usage
}

func intField(m map[string]any, key string) int64 {
	if v, ok := m[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func detailMap(raw any) map[string]int64 {
	m, ok := raw.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		if n, ok := v.(float64); ok {
			out[k] = int64(n)
		}
	}
	return out
}
