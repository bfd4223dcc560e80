package models

// SessionState is the view of a chat session handed to the front-end
type SessionState struct {
	SessionID   string        `json:"sessionId"`
	Username    string        `json:"username"`
	IsLoggedIn  bool          `json:"isLoggedIn"`
	IsConnected bool          `json:"isConnected"`
	Messages    []ChatMessage `json:"messages"`
	Error       string        `json:"error,omitempty"`
}

// LoginRequest is the request body to open a chat session
type LoginRequest struct {
	Username string `json:"username"`
}

// LoginResponse is returned once a session has been established
type LoginResponse struct {
	Token   string       `json:"token"`
	Session SessionState `json:"session"`
}

// SendMessageRequest is the request body to post into the chat
type SendMessageRequest struct {
	Message string `json:"message"`
}

// DJMessageRequest is the request body for a moderator chat message
type DJMessageRequest struct {
	DJName  string `json:"djName"`
	Message string `json:"message"`
}
