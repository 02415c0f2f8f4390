package domain

import (
	"sort"
	"strings"

	apperrors "jobboard_chat/pkg/errors"
)

type Role string

const (
	RoleEmployer  Role = "employer"
	RoleApplicant Role = "applicant"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEmployer:
		return RoleEmployer, nil
	case RoleApplicant:
		return RoleApplicant, nil
	default:
		return "", apperrors.ErrInvalidRole
	}
}

func (r Role) Other() Role {
	if r == RoleEmployer {
		return RoleApplicant
	}
	return RoleEmployer
}

type UnreadState string

const (
	StateRead   UnreadState = "READ"
	StateUnread UnreadState = "UNREAD"
)

// UnreadFor возвращает состояние флага для стороны
func (s *ConversationSummary) UnreadFor(role Role) UnreadState {
	unread := s.UnreadForApplicant
	if role == RoleEmployer {
		unread = s.UnreadForEmployer
	}
	if unread {
		return StateUnread
	}
	return StateRead
}

// OnSendPatch - запись сводки при отправке: последнее сообщение, у получателя UNREAD, у отправителя READ.
// LastTimestamp заполняет хранилище серверным временем сообщения.
// Имя пишется только если оно известно, чтобы не затереть уже найденное имя сырым id.
func OnSendPatch(sender Role, text, nameHint string) SummaryPatch {
	patch := SummaryPatch{
		LastMessage:        stringPtr(text),
		UnreadForEmployer:  boolPtr(sender != RoleEmployer),
		UnreadForApplicant: boolPtr(sender != RoleApplicant),
	}
	if nameHint = strings.TrimSpace(nameHint); nameHint != "" {
		patch.ApplicantName = stringPtr(nameHint)
	}
	return patch
}

// MarkReadPatch сбрасывает флаг только читающей стороны
func MarkReadPatch(reader Role) SummaryPatch {
	if reader == RoleEmployer {
		return SummaryPatch{UnreadForEmployer: boolPtr(false)}
	}
	return SummaryPatch{UnreadForApplicant: boolPtr(false)}
}

func ApplicantNamePatch(name string) SummaryPatch {
	return SummaryPatch{ApplicantName: stringPtr(name)}
}

// SortSummaries: сначала непрочитанные работодателем, затем по last_timestamp от новых к старым,
// сводки без времени - в конце
func SortSummaries(list []*ConversationSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.UnreadForEmployer != b.UnreadForEmployer {
			return a.UnreadForEmployer
		}
		switch {
		case a.LastTimestamp == nil && b.LastTimestamp == nil:
			return false
		case a.LastTimestamp == nil:
			return false
		case b.LastTimestamp == nil:
			return true
		}
		return a.LastTimestamp.After(*b.LastTimestamp)
	})
}
