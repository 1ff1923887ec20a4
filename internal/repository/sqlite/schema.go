package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    session_limit INTEGER NOT NULL,
    new_daily_cap INTEGER NOT NULL,
    daily_review_cap INTEGER NOT NULL,
    last_learned_rank INTEGER NOT NULL
);

-- One row per (user, item); never deleted.
CREATE TABLE IF NOT EXISTS review_states (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    item_kind TEXT NOT NULL,
    item_id TEXT NOT NULL,
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    due INTEGER NOT NULL,
    last_reviewed_at INTEGER,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,

    UNIQUE (user_id, item_kind, item_id)
);

CREATE INDEX IF NOT EXISTS idx_review_states_due ON review_states (user_id, item_kind, due);

-- Append-only review history.
CREATE TABLE IF NOT EXISTS review_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    item_kind TEXT NOT NULL,
    item_id TEXT NOT NULL,
    rating TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_events_created ON review_events (user_id, item_kind, created_at);
`
