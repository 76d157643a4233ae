package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
)

const (
	// maxHistory caps how many turns of client-supplied history are forwarded.
	maxHistory        = 20
	maxMessageRunes   = 2000
	roleUser          = "user"
	roleAssistant     = "assistant"
	systemRole        = "system"
	promptTemplate    = "You are the shopping assistant for %s, a Vietnamese online grocery store. Answer briefly and helpfully in the customer's language. Prices are in %s. Flat shipping fee: %d. Orders over %d ship free. You cannot place orders or look up order status; direct those questions to the store's support channel."
	promptNoThreshold = "You are the shopping assistant for %s, a Vietnamese online grocery store. Answer briefly and helpfully in the customer's language. Prices are in %s. Flat shipping fee: %d. You cannot place orders or look up order status; direct those questions to the store's support channel."
)

type settingsSource interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

// Service fronts the assistant endpoint: it validates client history, pins
// the system prompt server-side, and forwards to the completions API.
type Service struct {
	completer Completer
	settings  settingsSource
}

// NewService builds the assistant service.
func NewService(completer Completer, settings settingsSource) (*Service, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	return &Service{completer: completer, settings: settings}, nil
}

// Reply is the assistant's answer to one question.
type Reply struct {
	Content string `json:"content"`
}

// Ask forwards the conversation to the assistant. History is optional and
// client-supplied; system messages in it are discarded so the client cannot
// override the store prompt.
func (s *Service) Ask(ctx context.Context, history []Message, question string) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}
	if len([]rune(question)) > maxMessageRunes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is too long")
	}

	cleaned, err := sanitizeHistory(history)
	if err != nil {
		return nil, err
	}

	stored, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(cleaned)+2)
	messages = append(messages, Message{Role: systemRole, Content: systemPrompt(stored)})
	messages = append(messages, cleaned...)
	messages = append(messages, Message{Role: roleUser, Content: question})

	content, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: content}, nil
}

func sanitizeHistory(history []Message) ([]Message, error) {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	cleaned := make([]Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case roleUser, roleAssistant:
		case systemRole:
			continue
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid message role %q", msg.Role))
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if len([]rune(content)) > maxMessageRunes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "history message is too long")
		}
		cleaned = append(cleaned, Message{Role: msg.Role, Content: content})
	}
	return cleaned, nil
}

func systemPrompt(settings *models.StoreSettings) string {
	if settings.FreeShippingThreshold > 0 {
		return fmt.Sprintf(promptTemplate, settings.StoreName, settings.Currency, settings.ShippingFee, settings.FreeShippingThreshold)
	}
	return fmt.Sprintf(promptNoThreshold, settings.StoreName, settings.Currency, settings.ShippingFee)
}
