package llm

// Turn represents a single message in a conversation. Turns are values and are
// never modified after they are created.
type Turn struct {
	Role    Role   `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// UserTurn creates a turn spoken by the user.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn creates a turn spoken by the model.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// SystemTurn creates an instruction turn that steers the model.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}
