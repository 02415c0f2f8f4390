package domain

// EmployerChatStats - счетчики для бейджа в шапке
type EmployerChatStats struct {
	EmployerID          string `json:"employer_id"`
	Conversations       int    `json:"conversations"`
	UnreadConversations int    `json:"unread_conversations"`
}
