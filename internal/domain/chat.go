package domain

import (
	"time"
)

type Message struct {
	ID          int64     `json:"id"`
	EmployerID  string    `json:"employer_id"`
	ApplicantID string    `json:"applicant_id"`
	SenderID    string    `json:"sender_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *Message) ConversationKey() ConversationKey {
	return ConversationKey{EmployerID: m.EmployerID, ApplicantID: m.ApplicantID}
}

// ConversationSummary - изменяемая сводка беседы для списков (last-writer-wins по каждому полю)
type ConversationSummary struct {
	Key                string     `json:"key"`
	EmployerID         string     `json:"employer_id"`
	ApplicantID        string     `json:"applicant_id"`
	ApplicantName      *string    `json:"applicant_name,omitempty"`
	LastMessage        *string    `json:"last_message,omitempty"`
	LastTimestamp      *time.Time `json:"last_timestamp,omitempty"`
	UnreadForEmployer  bool       `json:"unread_for_employer"`
	UnreadForApplicant bool       `json:"unread_for_applicant"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (s *ConversationSummary) ConversationKey() ConversationKey {
	return ConversationKey{EmployerID: s.EmployerID, ApplicantID: s.ApplicantID}
}

func (s *ConversationSummary) HasApplicantName() bool {
	return s.ApplicantName != nil && *s.ApplicantName != ""
}

// DisplayName - имя кандидата, а если оно еще не известно, сырой id
func (s *ConversationSummary) DisplayName() string {
	if s.HasApplicantName() {
		return *s.ApplicantName
	}
	return s.ApplicantID
}

// SummaryPatch - частичная запись сводки. Пишутся только не-nil поля.
type SummaryPatch struct {
	ApplicantName      *string
	LastMessage        *string
	LastTimestamp      *time.Time
	UnreadForEmployer  *bool
	UnreadForApplicant *bool
}

func (p SummaryPatch) IsEmpty() bool {
	return p.ApplicantName == nil && p.LastMessage == nil && p.LastTimestamp == nil &&
		p.UnreadForEmployer == nil && p.UnreadForApplicant == nil
}

// ApplyTo выполняет merge патча в существующую сводку
func (p SummaryPatch) ApplyTo(s *ConversationSummary) {
	if p.ApplicantName != nil {
		s.ApplicantName = stringPtr(*p.ApplicantName)
	}
	if p.LastMessage != nil {
		s.LastMessage = stringPtr(*p.LastMessage)
	}
	if p.LastTimestamp != nil {
		ts := *p.LastTimestamp
		s.LastTimestamp = &ts
	}
	if p.UnreadForEmployer != nil {
		s.UnreadForEmployer = *p.UnreadForEmployer
	}
	if p.UnreadForApplicant != nil {
		s.UnreadForApplicant = *p.UnreadForApplicant
	}
}

// ConversationView - то, что получает клиент при открытии беседы.
// Exists=false означает, что сводки еще нет и поля восстановлены из ключа.
type ConversationView struct {
	Key           string               `json:"key"`
	EmployerID    string               `json:"employer_id"`
	ApplicantID   string               `json:"applicant_id"`
	ApplicantName *string              `json:"applicant_name,omitempty"`
	DisplayName   string               `json:"display_name"`
	Exists        bool                 `json:"exists"`
	Summary       *ConversationSummary `json:"summary,omitempty"`
}

// NewConversationView собирает представление беседы: имя из сводки, затем подсказка, затем сырой id
func NewConversationView(key ConversationKey, summary *ConversationSummary, nameHint string) *ConversationView {
	view := &ConversationView{
		Key:         key.String(),
		EmployerID:  key.EmployerID,
		ApplicantID: key.ApplicantID,
		DisplayName: key.ApplicantID,
	}

	if summary != nil {
		view.Exists = true
		view.Summary = summary
		view.ApplicantID = summary.ApplicantID
		if summary.HasApplicantName() {
			view.ApplicantName = stringPtr(*summary.ApplicantName)
		}
	}
	if view.ApplicantName == nil && nameHint != "" {
		view.ApplicantName = stringPtr(nameHint)
	}
	if view.ApplicantName != nil {
		view.DisplayName = *view.ApplicantName
	}

	return view
}

// Profile - то, что удалось достать из внешнего сервиса профилей
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
