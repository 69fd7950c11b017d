package ai

import "context"

// Role identifies the author of one chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion conversation.
type Message struct {
	Role    Role
	Content string
}

// ModelFamily is a provider-independent model selector. Each adapter maps a
// family onto its own native model identifier.
type ModelFamily string

const (
	// FamilyStandard selects the provider's general generation model.
	FamilyStandard ModelFamily = "standard"
	// FamilyScoring selects the provider's cheaper, more deterministic
	// grading model.
	FamilyScoring ModelFamily = "scoring"
)

// CompletionRequest is the uniform request shape accepted by every adapter.
// It is read-only once constructed.
type CompletionRequest struct {
	Family      ModelFamily
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completion is the normalized result of one completion call.
type Completion struct {
	Text     string
	Provider string
}

// Client produces text completions against one backend.
type Client interface {
	// Provider returns the human-readable label of the bound backend.
	Provider() string
	// Complete performs one blocking completion round-trip.
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// LastUserContent returns the content of the final user message, for
// transports that cannot represent multi-turn conversations.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
