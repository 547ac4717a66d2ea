package protocol

// Usage captures token accounting for one response. Detail maps carry
// provider-specific breakdowns (cached tokens, reasoning tokens, ...).
type Usage struct {
	Requests            int64
	InputTokens         int64
	OutputTokens        int64
	TotalTokens         int64
	InputTokensDetails  map[string]int64
	OutputTokensDetails map[string]int64
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other Usage) {
	u.Requests += other.Requests
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// Response is the terminal result of one model request.
type Response struct {
	// ID is the service-assigned response identifier.
	ID string
	// Status reports the terminal state the service assigned
	// ("completed", "failed", "incomplete").
	Status string
	// RequestID is the transport-assigned request identifier, when the
	// transport surfaces one (empty otherwise).
	RequestID string

	Output []Item
	Usage  Usage

	// ProviderData echoes the raw wire response for observability.
	ProviderData map[string]any
}
