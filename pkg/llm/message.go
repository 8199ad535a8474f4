package llm

// Role tags the speaker of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "llama-4-scout-17b-16e-instruct"
