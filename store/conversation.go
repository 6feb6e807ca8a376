package store

// Conversation is one persisted conversational exchange with the device.
type Conversation struct {
	ID string // shortuuid assigned by the service layer

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	UserID  int32
	EndedTs *int64
}

// FindConversation is the filter for listing conversations.
type FindConversation struct {
	ID     *string
	UserID *int32
	Limit  *int
}

// UpdateConversation marks a conversation ended.
type UpdateConversation struct {
	ID        string
	UpdatedTs int64
	EndedTs   *int64
}

// DeleteConversation identifies the conversation to remove; messages are
// removed with it.
type DeleteConversation struct {
	ID string
}

// ConversationMessage is one utterance or reply inside a conversation.
type ConversationMessage struct {
	ID int32

	// Standard fields
	CreatedTs int64

	// Domain specific fields
	ConversationID string
	Role           string // "child" | "buddy"
	Content        string
}

// FindConversationMessage is the filter for listing messages.
type FindConversationMessage struct {
	ConversationID *string
	Limit          *int
}
