package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chatbot-backend/internal/ai"
	"chatbot-backend/internal/model"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrMessageEmpty = errors.New("message content is empty")
)

// historyWindow is how many prior messages a turn hands to the
// generation adapter, captured before the new user message is written.
const historyWindow = 10

type ChatStore interface {
	Create(chat *model.Chat) error
	GetByIDAndUserID(chatID, userID uint) (*model.Chat, error)
	ListByUserID(userID uint) ([]model.Chat, error)
	UpdateTitle(chatID uint, title string) error
	Touch(chatID uint) error
	DeleteByIDAndUserID(chatID, userID uint) error
}

type MessageStore interface {
	Create(message *model.Message) error
	ListByChatID(chatID uint) ([]model.Message, error)
	ListRecentByChatID(chatID uint, limit int) ([]model.Message, error)
	DeleteByChatID(chatID uint) error
}

/// ReplyGenerator is the adapter boundary: GenerateReply always yields
// usable message content, degraded or not.
type ReplyGenerator interface {
	Name() string
	GenerateReply(ctx context.Context, message string, history []ai.HistoryEntry) (string, bool)
	GenerateTitle(ctx context.Context, firstMessage string) string
	CheckConnection(ctx context.Context) bool
}

type TurnEventPublisher interface {
	Publish(ctx context.Context, event model.TurnEvent) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatID uint) error
}

type ChatService struct {
	chatStore    ChatStore
	messageStore MessageStore
	generator    ReplyGenerator
	publisher    TurnEventPublisher
	historyCache HistoryCache
}

type SendMessageInput struct {
	UserID  uint
	ChatID  uint // zero means start a new chat
	Content string
}

type SendMessageResult struct {
	UserMessage model.Message `json:"user_message"`
	BotMessage  model.Message `json:"bot_message"`
	ChatID      uint          `json:"chat_id"`
}

// NewChatService wires the orchestrator. publisher and historyCache may
// be nil; both are best-effort side channels.
func NewChatService(
	chatStore ChatStore,
	messageStore MessageStore,
	generator ReplyGenerator,
	publisher TurnEventPublisher,
	historyCache HistoryCache,
) *ChatService {
	return &ChatService{
		chatStore:    chatStore,
		messageStore: messageStore,
		generator:    generator,
		publisher:    publisher,
		historyCache: historyCache,
	}
}

// SendMessage runs one chat turn: resolve or create the chat, capture
// bounded history, persist the user message, generate the reply,
// persist it, and title the chat if this was its first turn. Store
// errors abort the turn; generation failures never do. There is no
// transaction across the steps, so an aborted turn can leave the user
// message persisted without a reply.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	start := time.Now()

	chat, err := s.resolveChat(input.UserID, input.ChatID)
	if err != nil {
		return nil, err
	}

	// Captured before the user message is written, so the new message
	// never appears in its own context.
	history, err := s.fetchHistory(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	userMessage, err := s.appendMessage(ctx, chat.ID, content, model.SenderUser)
	if err != nil {
		return nil, err
	}

	reply, generated := s.generator.GenerateReply(ctx, content, toHistoryEntries(history))

	botMessage, err := s.appendMessage(ctx, chat.ID, reply, model.SenderAI)
	if err != nil {
		return nil, err
	}

	// Only the very first turn of an untitled chat gets a title.
	if chat.Title == "" && len(history) == 0 {
		title := s.generator.GenerateTitle(ctx, content)
		if title != "" {
			if err := s.chatStore.UpdateTitle(chat.ID, title); err != nil {
				return nil, err
			}
			chat.Title = title
		}
	}

	s.publishTurnEvent(ctx, chat, input.UserID, content, reply, generated, time.Since(start))

	return &SendMessageResult{
		UserMessage: *userMessage,
		BotMessage:  *botMessage,
		ChatID:      chat.ID,
	}, nil
}

func (s *ChatService) ListChats(userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chatStore.ListByUserID(userID)
}

// GetChat returns the chat with its full message history ascending.
func (s *ChatService) GetChat(userID, chatID uint) (*model.Chat, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatStore.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	messages, err := s.messageStore.ListByChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages
	return chat, nil
}

// DeleteChat removes the chat and all of its messages; no orphan rows
// survive.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}

	chat, err := s.chatStore.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}

	if err := s.messageStore.DeleteByChatID(chatID); err != nil {
		return err
	}
	if err := s.chatStore.DeleteByIDAndUserID(chatID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, chatID)
	}
	return nil
}

func (s *ChatService) UpdateChatTitle(userID, chatID uint, title string) (*model.Chat, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatStore.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	if err := s.chatStore.UpdateTitle(chatID, title); err != nil {
		return nil, err
	}
	chat.Title = title
	return chat, nil
}

func (s *ChatService) resolveChat(userID, chatID uint) (*model.Chat, error) {
	if chatID != 0 {
		chat, err := s.chatStore.GetByIDAndUserID(chatID, userID)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			return nil, ErrChatNotFound
		}
		return chat, nil
	}

	chat := &model.Chat{UserID: userID}
	if err := s.chatStore.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) fetchHistory(ctx context.Context, chatID uint) ([]model.Message, error) {
	if s.historyCache != nil {
		if cached, hit, err := s.historyCache.GetHistory(ctx, chatID); err == nil && hit {
			return cached, nil
		}
	}

	history, err := s.messageStore.ListRecentByChatID(chatID, historyWindow)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		_ = s.historyCache.SetHistory(ctx, chatID, history)
	}
	return history, nil
}

func (s *ChatService) appendMessage(ctx context.Context, chatID uint, content string, sender model.Sender) (*model.Message, error) {
	message := &model.Message{
		ChatID:  chatID,
		Content: content,
		Sender:  sender,
		SentAt:  time.Now(),
	}
	if err := s.messageStore.Create(message); err != nil {
		return nil, err
	}
	if err := s.chatStore.Touch(chatID); err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, chatID)
	}
	return message, nil
}

func (s *ChatService) publishTurnEvent(ctx context.Context, chat *model.Chat, userID uint, content, reply string, generated bool, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}

	outcome := model.TurnOutcomeOK
	if !generated {
		outcome = model.TurnOutcomeDegraded
	}
	event := model.TurnEvent{
		ChatID:     chat.ID,
		UserID:     userID,
		Provider:   s.generator.Name(),
		Outcome:    outcome,
		PromptLen:  len(content),
		ReplyLen:   len(reply),
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Uint("chat_id", chat.ID).Msg("publish turn event failed")
	}
}

func toHistoryEntries(messages []model.Message) []ai.HistoryEntry {
	entries := make([]ai.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, ai.HistoryEntry{Content: msg.Content, Sender: msg.Sender})
	}
	return entries
}
