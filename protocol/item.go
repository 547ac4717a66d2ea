package protocol

// Role identifies the author of a message item.
type Role string

// Conversation roles understood by the service.
const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ItemStatus reflects the lifecycle of an item as reported by the service.
type ItemStatus string

// Item statuses reported by the service.
const (
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusIncomplete ItemStatus = "incomplete"
	StatusFailed     ItemStatus = "failed"
)

// Item represents one vendor-neutral unit of conversation or tool state.
// Concrete item types implement the unexported isItem marker enabling a
// closed set; Unknown preserves forward compatibility with wire shapes not
// yet modeled.
type Item interface{ isItem() }

// Message is a role-attributed sequence of content parts.
type Message struct {
	ID           string
	Role         Role
	Status       ItemStatus
	Content      []ContentPart
	ProviderData map[string]any
}

func (Message) isItem() {}

// FunctionCall is a model-issued request to invoke a declared tool.
type FunctionCall struct {
	ID           string
	CallID       string // correlates with the matching FunctionCallResult
	Name         string
	Arguments    string // serialized JSON argument payload
	Status       ItemStatus
	ProviderData map[string]any
}

func (FunctionCall) isItem() {}

// FunctionCallResult carries the outcome of a FunctionCall back to the model.
type FunctionCallResult struct {
	ID           string
	CallID       string
	Name         string
	Status       ItemStatus
	Output       ToolOutput
	ProviderData map[string]any
}

func (FunctionCallResult) isItem() {}

// Reasoning is an opaque reasoning trace emitted by the model.
type Reasoning struct {
	ID               string
	Summary          []string
	Content          []string
	EncryptedContent string
	Status           ItemStatus
	ProviderData     map[string]any
}

func (Reasoning) isItem() {}

// ComputerCall is a model-issued request to drive a computer-use environment.
// Action is kept opaque; the client relays it without interpretation.
type ComputerCall struct {
	ID           string
	CallID       string
	Status       ItemStatus
	Action       map[string]any
	ProviderData map[string]any
}

func (ComputerCall) isItem() {}

// ComputerCallResult returns a screenshot taken after a ComputerCall action.
type ComputerCallResult struct {
	ID           string
	CallID       string
	Status       ItemStatus
	ImageURL     string // data URL or retrievable URL of the screenshot
	ProviderData map[string]any
}

func (ComputerCallResult) isItem() {}

// ShellCall is a model-issued request to execute shell commands.
type ShellCall struct {
	ID               string
	CallID           string
	Status           ItemStatus
	Commands         []string
	TimeoutMS        int64
	WorkingDirectory string
	ProviderData     map[string]any
}

func (ShellCall) isItem() {}

// ShellCallOutput carries captured shell execution results.
type ShellCallOutput struct {
	ID           string
	CallID       string
	Status       ItemStatus
	Output       string
	ExitCode     *int64 // nil when the process did not run to completion
	ProviderData map[string]any
}

func (ShellCallOutput) isItem() {}

// PatchOperationKind enumerates the file operations a patch call may request.
type PatchOperationKind string

// Patch operation kinds.
const (
	PatchCreateFile PatchOperationKind = "create_file"
	PatchUpdateFile PatchOperationKind = "update_file"
	PatchDeleteFile PatchOperationKind = "delete_file"
)

// PatchOperation describes a single file mutation requested by the model.
type PatchOperation struct {
	Kind    PatchOperationKind
	Path    string
	Diff    string // unified diff for update operations
	Content string // full file content for create operations
}

// ApplyPatchCall is a model-issued request to apply a file patch.
type ApplyPatchCall struct {
	ID           string
	CallID       string
	Status       ItemStatus
	Operation    PatchOperation
	ProviderData map[string]any
}

func (ApplyPatchCall) isItem() {}

// ApplyPatchCallOutput reports the outcome of an ApplyPatchCall.
type ApplyPatchCallOutput struct {
	ID           string
	CallID       string
	Status       ItemStatus
	Output       string
	ProviderData map[string]any
}

func (ApplyPatchCallOutput) isItem() {}

// HostedToolKind discriminates the server-side tools the service executes
// itself (no client round trip).
type HostedToolKind string

// Hosted tool kinds known to the client. OtherHostedTool preserves kinds the
// client does not model.
const (
	HostedWebSearch       HostedToolKind = "web_search_call"
	HostedFileSearch      HostedToolKind = "file_search_call"
	HostedCodeInterpreter HostedToolKind = "code_interpreter_call"
	HostedImageGeneration HostedToolKind = "image_generation_call"
	HostedMCPCall         HostedToolKind = "mcp_call"
	OtherHostedTool       HostedToolKind = "other"
)

// HostedToolCall records a tool execution performed entirely server-side.
type HostedToolCall struct {
	ID           string
	Kind         HostedToolKind
	Name         string
	Status       ItemStatus
	Arguments    string
	Output       string
	ProviderData map[string]any
}

func (HostedToolCall) isItem() {}

// Compaction marks a point where earlier history was collapsed server-side.
type Compaction struct {
	ID               string
	EncryptedContent string
	ProviderData     map[string]any
}

func (Compaction) isItem() {}

// Unknown is the opaque passthrough variant: the full wire payload is kept
// so it can be echoed back losslessly.
type Unknown struct {
	ID           string
	ProviderData map[string]any
}

func (Unknown) isItem() {}

// ContentPart represents a polymorphic segment of message content. Concrete
// part types implement the unexported isContentPart marker.
type ContentPart interface{ isContentPart() }

// InputText is caller-supplied plain text.
type InputText struct {
	Text         string
	ProviderData map[string]any
}

func (InputText) isContentPart() {}

// OutputText is model-produced plain text.
type OutputText struct {
	Text         string
	ProviderData map[string]any
}

func (OutputText) isContentPart() {}

// Refusal is a model-produced refusal notice.
type Refusal struct {
	Refusal      string
	ProviderData map[string]any
}

func (Refusal) isContentPart() {}

// InputImage references an image by URL (possibly a data URL) or by an
// opaque service file id.
type InputImage struct {
	ImageURL     string
	FileID       string
	Detail       string
	ProviderData map[string]any
}

func (InputImage) isContentPart() {}

// InputFile references a file inline (base64 data), by URL, or by file id.
type InputFile struct {
	FileData     string
	FileURL      string
	FileID       string
	Filename     string
	ProviderData map[string]any
}

func (InputFile) isContentPart() {}

// ToolOutput is the union of tool result payload shapes: a plain string or
// a structured list of content parts.
type ToolOutput interface{ isToolOutput() }

// ToolOutputText is a plain string tool result.
type ToolOutputText struct {
	Text string
}

func (ToolOutputText) isToolOutput() {}

// ToolOutputContent is a structured tool result composed of content parts
// (text and image parts).
type ToolOutputContent struct {
	Parts []ContentPart
}

func (ToolOutputContent) isToolOutput() {}
