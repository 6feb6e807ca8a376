package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// ParentalControl model related methods.
	UpsertParentalControl(ctx context.Context, upsert *ParentalControl) (*ParentalControl, error)
	GetParentalControl(ctx context.Context, find *FindParentalControl) (*ParentalControl, error)

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error

	// ConversationMessage model related methods.
	CreateConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error)
	ListConversationMessages(ctx context.Context, find *FindConversationMessage) ([]*ConversationMessage, error)
}
