// Package store provides database access to all persisted objects.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/buddylabs/buddy/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate brings the schema up to date. Safe to call on every start.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check schema state")
	}
	if initialized {
		return nil
	}
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the single user matching find, or nil when absent.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	return s.driver.DeleteUser(ctx, delete)
}

func (s *Store) UpsertParentalControl(ctx context.Context, upsert *ParentalControl) (*ParentalControl, error) {
	return s.driver.UpsertParentalControl(ctx, upsert)
}

// GetParentalControl returns the stored policy, or the default policy when
// the parent has not configured one yet.
func (s *Store) GetParentalControl(ctx context.Context, find *FindParentalControl) (*ParentalControl, error) {
	pc, err := s.driver.GetParentalControl(ctx, find)
	if err != nil {
		return nil, err
	}
	if pc == nil && find.UserID != nil {
		return DefaultParentalControl(*find.UserID), nil
	}
	return pc, nil
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns the single conversation matching find, or nil.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	list, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	return s.driver.UpdateConversation(ctx, update)
}

func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	return s.driver.DeleteConversation(ctx, delete)
}

func (s *Store) CreateConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error) {
	return s.driver.CreateConversationMessage(ctx, create)
}

func (s *Store) ListConversationMessages(ctx context.Context, find *FindConversationMessage) ([]*ConversationMessage, error) {
	return s.driver.ListConversationMessages(ctx, find)
}
