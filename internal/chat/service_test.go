package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/enums"
	pkgerrors "github.com/nmtruong/shophub-backend/pkg/errors"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memChatRepo struct {
	mu       sync.Mutex
	chats    map[uuid.UUID]*models.Chat
	messages map[uuid.UUID][]models.ChatMessage
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		chats:    map[uuid.UUID]*models.Chat{},
		messages: map[uuid.UUID][]models.ChatMessage{},
	}
}

func (m *memChatRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memChatRepo) FindByUserEmail(ctx context.Context, userEmail string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chat := range m.chats {
		if chat.UserEmail == userEmail {
			return m.withMessages(chat), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memChatRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withMessages(chat), nil
}

func (m *memChatRepo) Ensure(ctx context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.chats {
		if existing.UserEmail == chat.UserEmail {
			return nil
		}
	}
	copied := *chat
	m.chats[chat.ID] = &copied
	return nil
}

func (m *memChatRepo) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[message.ChatID] = append(m.messages[message.ChatID], *message)
	return nil
}

func (m *memChatRepo) TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat, ok := m.chats[id]; ok {
		chat.LastUpdated = at
	}
	return nil
}

func (m *memChatRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[id]; !ok {
		return 0, nil
	}
	delete(m.chats, id)
	delete(m.messages, id)
	return 1, nil
}

func (m *memChatRepo) ListSummaries(ctx context.Context) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chat
	for _, chat := range m.chats {
		out = append(out, *chat)
	}
	return out, nil
}

func (m *memChatRepo) withMessages(chat *models.Chat) *models.Chat {
	copied := *chat
	copied.Messages = m.messages[chat.ID]
	return &copied
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Tx:   passthroughTx{},
		Now:  func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func TestSendMessageCreatesSingleConversation(t *testing.T) {
	repo := newMemChatRepo()
	svc := newTestService(t, repo)

	first, err := svc.SendMessage(context.Background(), "buyer@example.com", "Ana", SendMessageInput{Text: "Where is my order?"})
	require.NoError(t, err)
	assert.Equal(t, "Where is my order?", first.Subject)
	assert.Len(t, first.Messages, 1)

	second, err := svc.SendMessage(context.Background(), "buyer@example.com", "Ana", SendMessageInput{Text: "Still waiting"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Messages, 2)
	assert.Equal(t, "Where is my order?", second.Subject, "subject stays pinned to the first message")
	assert.Len(t, repo.chats, 1)
}

func TestSendMessageConcurrentFirstMessages(t *testing.T) {
	repo := newMemChatRepo()
	svc := newTestService(t, repo)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, text := range []string{"first", "second"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			<-start
			_, err := svc.SendMessage(context.Background(), "buyer@example.com", "Ana", SendMessageInput{Text: text})
			errs <- err
		}(text)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, repo.chats, 1, "both writers land in the same conversation")
	dto, err := svc.GetMine(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, dto.Messages, 2)
}

func TestSubjectTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("a", 60)
	assert.Equal(t, strings.Repeat("a", 50)+"...", Subject(long))

	exact := strings.Repeat("b", 50)
	assert.Equal(t, exact, Subject(exact))

	assert.Equal(t, "short", Subject("  short  "))
}

func TestReplyAppendsAdminMessage(t *testing.T) {
	repo := newMemChatRepo()
	svc := newTestService(t, repo)

	chat, err := svc.SendMessage(context.Background(), "buyer@example.com", "Ana", SendMessageInput{Text: "Hello"})
	require.NoError(t, err)

	replied, err := svc.Reply(context.Background(), chat.ID, SendMessageInput{Text: "How can we help?"})
	require.NoError(t, err)
	require.Len(t, replied.Messages, 2)
	assert.Equal(t, enums.ChatSenderAdmin, replied.Messages[1].Sender)
}

func TestReplyUnknownChat(t *testing.T) {
	svc := newTestService(t, newMemChatRepo())

	_, err := svc.Reply(context.Background(), uuid.New(), SendMessageInput{Text: "hi"})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestGetMineWithoutHistoryReturnsEmptyEnvelope(t *testing.T) {
	svc := newTestService(t, newMemChatRepo())

	dto, err := svc.GetMine(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, dto.ID)
	assert.Empty(t, dto.Messages)
}

func TestDeleteRemovesConversation(t *testing.T) {
	repo := newMemChatRepo()
	svc := newTestService(t, repo)

	created, err := svc.SendMessage(context.Background(), "shopper@example.com", "Pat", SendMessageInput{Text: "order never arrived"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.GetByID(context.Background(), created.ID)
	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}

func TestDeleteUnknownChat(t *testing.T) {
	svc := newTestService(t, newMemChatRepo())

	err := svc.Delete(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	require.True(t, pkgerrors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code)
}
