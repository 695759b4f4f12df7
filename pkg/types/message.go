// Package types defines the shared message and model types used by the
// LLM provider layer and the analysis pipeline.
package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ImageAttachment carries an inline image for vision-capable models.
// Data is the raw base64 payload without a data-URL prefix; the provider
// is responsible for wire encoding.
type ImageAttachment struct {
	// Data is the base64-encoded image bytes.
	Data string

	// MediaType is the MIME type of the image (e.g. "image/png").
	MediaType string
}

// Message represents a single conversation message sent to or received
// from an LLM provider. Images are only meaningful on user messages.
type Message struct {
	Role    MessageRole
	Content string
	Images  []ImageAttachment
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role text message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewUserImageMessage creates a user-role message carrying a prompt and
// one inline image.
func NewUserImageMessage(content string, image ImageAttachment) *Message {
	return &Message{
		Role:    RoleUser,
		Content: content,
		Images:  []ImageAttachment{image},
	}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// HasImages returns true if the message carries at least one image.
func (m *Message) HasImages() bool {
	return len(m.Images) > 0
}

// ModelInfo describes the LLM model backing a provider.
type ModelInfo struct {
	// Name is the model identifier (e.g. "gpt-4o")
	Name string

	// Provider is the backing service (e.g. "openai")
	Provider string

	// SupportsVision indicates whether the model accepts image input
	SupportsVision bool

	// MaxTokens is the model's context window size
	MaxTokens int

	// Metadata holds provider-specific extras
	Metadata map[string]interface{}
}
