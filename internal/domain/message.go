package domain

type MessageKind string

const (
	MessageReply   MessageKind = "reply"
	MessageWelcome MessageKind = "welcome"
	MessageError   MessageKind = "error"
	MessageNotice  MessageKind = "notice"
)

// Message is a displayed chat line. Errors and notices live here only and
// never reach the transcript sent back to the model.
type Message struct {
	Role    Role        `json:"role"`
	Kind    MessageKind `json:"kind"`
	Content string      `json:"content"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Kind: MessageReply, Content: content}
}

func AssistantMessage(kind MessageKind, content string) Message {
	return Message{Role: RoleModel, Kind: kind, Content: content}
}
