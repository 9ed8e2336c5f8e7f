package enums

import "fmt"

// ChatSender identifies which side of a support conversation wrote a message.
type ChatSender string

const (
	ChatSenderUser  ChatSender = "user"
	ChatSenderAdmin ChatSender = "admin"
)

var validChatSenders = []ChatSender{
	ChatSenderUser,
	ChatSenderAdmin,
}

// String implements fmt.Stringer.
func (c ChatSender) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChatSender.
func (c ChatSender) IsValid() bool {
	for _, candidate := range validChatSenders {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChatSender converts raw input into a ChatSender.
func ParseChatSender(value string) (ChatSender, error) {
	for _, candidate := range validChatSenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid chat sender %q", value)
}
