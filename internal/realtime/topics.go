package realtime

import (
	"fmt"
)

func MessagesTopic(conversationKey string) string {
	return fmt.Sprintf(messagesTopicFormat, conversationKey)
}

func SummaryTopic(conversationKey string) string {
	return fmt.Sprintf(summaryTopicFormat, conversationKey)
}

// EmployerTopic - список бесед работодателя. Числовые id нормализуются вызывающей стороной.
func EmployerTopic(employerID string) string {
	return fmt.Sprintf(employerTopicFormat, employerID)
}
