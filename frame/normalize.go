package frame

import (
	"github.com/hupe1980/agentwire/protocol"
	"github.com/hupe1980/agentwire/wire"
)

// Normalize maps one decoded wire event to its ordered semantic events.
// Normalization is additive: every event also yields a raw passthrough so
// observers never lose information the normalizer does not understand, and
// the success terminal yields one extra raw event so consumers can tell
// "fully complete" apart from "any terminal state".
//
// The dropped count reports response output items the translator skipped.
func Normalize(ev *Event) (events []protocol.StreamEvent, dropped int, err error) {
	raw := protocol.RawEvent{Type: ev.Type, Data: ev.Data}

	switch {
	case ev.Type == EventResponseCreated:
		events = append(events, protocol.ResponseStarted{})
	case ev.Type == EventOutputTextDelta:
		delta, _ := ev.Data["delta"].(string)
		events = append(events, protocol.TextDelta{Delta: delta})
	case IsTerminal(ev.Type):
		resp, d, terr := terminalResponse(ev)
		if terr != nil {
			return nil, 0, terr
		}
		dropped = d
		events = append(events, protocol.ResponseDone{Response: resp})
	}

	events = append(events, raw)
	if ev.Type == EventResponseCompleted {
		events = append(events, raw)
	}
	return events, dropped, nil
}

// terminalResponse translates the response object embedded in a terminal
// event, synthesizing the terminal status when the service omitted it.
func terminalResponse(ev *Event) (*protocol.Response, int, error) {
	respMap := ev.Response()
	if respMap == nil {
		respMap = map[string]any{}
	}
	resp, dropped, err := wire.ResponseFromWire(respMap)
	if err != nil {
		return nil, 0, err
	}
	if resp.Status == "" {
		switch ev.Type {
		case EventResponseCompleted:
			resp.Status = "completed"
		case EventResponseIncomplete:
			resp.Status = "incomplete"
		default:
			resp.Status = "failed"
		}
	}
	return resp, dropped, nil
}
