package chat

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation. User turns that carried a
// screenshot keep its data URI alongside the text.
type Turn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	ImageURI string `json:"imageUri,omitempty"`
}
