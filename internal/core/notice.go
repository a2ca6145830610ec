package core

// NoticeLevel ranks how a notice is shown to the user.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message about defaulted data, missing columns or empty selections.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Warn builds a warning notice.
func Warn(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }

// Alert builds an error notice.
func Alert(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }
