package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "jobboard_chat/pkg/errors"
)

// KeyDelimiter разделяет employer и applicant в строковом ключе беседы
const KeyDelimiter = "_"

// ConversationKey - структурированный идентификатор беседы employer/applicant.
// В хранилище беседа адресуется парой колонок, строковая форма нужна только для URL и топиков.
type ConversationKey struct {
	EmployerID  string `json:"employer_id"`
	ApplicantID string `json:"applicant_id"`
}

// NewConversationKey проверяет идентификаторы: пустые и содержащие разделитель отклоняются,
// поэтому String() -> ParseConversationKey всегда возвращает исходную пару.
func NewConversationKey(employerID, applicantID string) (ConversationKey, error) {
	employerID = strings.TrimSpace(employerID)
	applicantID = strings.TrimSpace(applicantID)

	if employerID == "" || applicantID == "" {
		return ConversationKey{}, fmt.Errorf("%w: employer and applicant ids are required", apperrors.ErrInvalidIdentifier)
	}
	if strings.Contains(employerID, KeyDelimiter) || strings.Contains(applicantID, KeyDelimiter) {
		return ConversationKey{}, fmt.Errorf("%w: ids must not contain %q", apperrors.ErrInvalidIdentifier, KeyDelimiter)
	}

	return ConversationKey{EmployerID: employerID, ApplicantID: applicantID}, nil
}

// ParseConversationKey разбирает строковый ключ и валидирует обе части
func ParseConversationKey(key string) (ConversationKey, error) {
	k := ParseKey(key)
	return NewConversationKey(k.EmployerID, k.ApplicantID)
}

func (k ConversationKey) String() string {
	return JoinKey(k.EmployerID, k.ApplicantID)
}

// RoleOf определяет роль отправителя в беседе
func (k ConversationKey) RoleOf(participantID string) (Role, error) {
	switch participantID {
	case k.EmployerID:
		return RoleEmployer, nil
	case k.ApplicantID:
		return RoleApplicant, nil
	default:
		return "", apperrors.ErrNotParticipant
	}
}

// JoinKey склеивает идентификаторы без экранирования
func JoinKey(employerID, applicantID string) string {
	return employerID + KeyDelimiter + applicantID
}

// ParseKey делит ключ на две части по первому разделителю и никогда не падает.
// Если employerID сам содержал разделитель, результат будет неверным.
func ParseKey(key string) ConversationKey {
	parts := strings.SplitN(key, KeyDelimiter, 2)
	k := ConversationKey{EmployerID: parts[0]}
	if len(parts) > 1 {
		k.ApplicantID = parts[1]
	}
	return k
}

// EmployerIDVariants возвращает все представления employer id, под которыми он мог быть сохранен:
// исходную строку и каноническую десятичную форму, если id числовой ("010" -> "010", "10").
func EmployerIDVariants(employerID string) []string {
	employerID = strings.TrimSpace(employerID)
	variants := []string{employerID}

	if n, err := strconv.ParseInt(employerID, 10, 64); err == nil {
		canonical := strconv.FormatInt(n, 10)
		if canonical != employerID {
			variants = append(variants, canonical)
		}
	}

	return variants
}

// CanonicalEmployerID - форма employer id, под которой публикуются уведомления списка бесед
func CanonicalEmployerID(employerID string) string {
	variants := EmployerIDVariants(employerID)
	return variants[len(variants)-1]
}
