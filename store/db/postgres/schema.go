package postgres

// latestSchema is applied on first start of an uninitialized database.
// "user" is quoted because it is a reserved word in PostgreSQL.
const latestSchema = `
CREATE TABLE "user" (
	id SERIAL PRIMARY KEY,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	name TEXT NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	locale TEXT NOT NULL DEFAULT 'en-US',
	interests TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE parental_control (
	user_id INTEGER PRIMARY KEY,
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	daily_limit_minutes INTEGER NOT NULL DEFAULT 60,
	allowed_hour_start INTEGER NOT NULL DEFAULT 7,
	allowed_hour_end INTEGER NOT NULL DEFAULT 20,
	break_interval_minutes INTEGER NOT NULL DEFAULT 30,
	content_filter_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	blocked_topics TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE conversation (
	id TEXT PRIMARY KEY,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	user_id INTEGER NOT NULL,
	ended_ts BIGINT
);

CREATE INDEX idx_conversation_user_id ON conversation (user_id);

CREATE TABLE conversation_message (
	id SERIAL PRIMARY KEY,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL
);

CREATE INDEX idx_conversation_message_conversation_id ON conversation_message (conversation_id);
`
