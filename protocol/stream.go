package protocol

// StreamEvent is a semantic progress event produced while a streamed request
// is in flight. Concrete event types implement the unexported isStreamEvent
// marker enabling a closed set.
type StreamEvent interface{ isStreamEvent() }

// ResponseStarted signals that the service accepted the request and began
// producing a response.
type ResponseStarted struct{}

func (ResponseStarted) isStreamEvent() {}

// TextDelta carries one increment of output text.
type TextDelta struct {
	Delta string
}

func (TextDelta) isStreamEvent() {}

// ResponseDone carries the fully assembled terminal response. Exactly one
// ResponseDone is emitted per streamed request, for success and failure
// terminals alike.
type ResponseDone struct {
	Response *Response
}

func (ResponseDone) isStreamEvent() {}

// RawEvent passes through a wire event verbatim so observers never lose
// information the normalizer does not understand.
type RawEvent struct {
	Type string
	Data map[string]any
}

func (RawEvent) isStreamEvent() {}
