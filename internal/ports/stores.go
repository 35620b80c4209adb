package ports

import "github.com/bnema/shopvoice/internal/domain"

type ResponseCache interface {
	Get(key string) (domain.InterpretResult, bool)
	Set(key string, result domain.InterpretResult)
	Clear()
}

type ConversationStore interface {
	History(key string) []domain.Message
	AppendUser(key, text string)
	AppendAssistant(key, text string)
	Clear(key string)
}
