package accounts_test

import (
	"context"
	"sync"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory UserStore used by the service-level tests.
type memStore struct {
	mu    sync.Mutex
	users map[string]*accounts.User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*accounts.User{}}
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.EmailByAddress(email) != nil {
			return u, nil
		}
	}
	return nil, accounts.ErrUserNotFound
}

func (s *memStore) FindByID(ctx context.Context, id string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, accounts.ErrUserNotFound
}

func (s *memStore) Insert(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID.String()] = user
	return user, nil
}

func (s *memStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return accounts.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *memStore) SetEmailVerified(ctx context.Context, id, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return accounts.ErrUserNotFound
	}
	record := u.EmailByAddress(address)
	if record == nil {
		return accounts.ErrUserNotFound
	}
	record.Verified = true
	return nil
}

// recordingMailer captures every rendered message.
type recordingMailer struct {
	mu       sync.Mutex
	messages []accounts.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg accounts.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) last() (accounts.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return accounts.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}

// MockMailer implements accounts.Mailer via testify.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg accounts.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockUserStore implements accounts.UserStore via testify for failure paths.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Insert(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*accounts.User)
	return created, args.Error(1)
}

func (m *MockUserStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserStore) SetEmailVerified(ctx context.Context, id, address string) error {
	args := m.Called(ctx, id, address)
	return args.Error(0)
}

// captureTemplates render the action link into the message body verbatim so
// tests can pull the issued token back out of the URL.
func captureTemplates() accounts.MailTemplates {
	render := func(data accounts.TemplateData) accounts.Message {
		return accounts.Message{
			From:    "noreply@example.com",
			To:      data.To,
			Subject: "action",
			Text:    data.URL,
		}
	}
	return accounts.MailTemplates{
		Verification:  render,
		PasswordReset: render,
	}
}
