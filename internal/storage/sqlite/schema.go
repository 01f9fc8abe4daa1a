// ABOUTME: SQLite database schema for health data, chat messages and sessions
// ABOUTME: Timestamps are unix nanoseconds; calendar days are YYYY-MM-DD text
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- One dietary/medical profile per user
CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    diet_type TEXT,
    has_allergies INTEGER NOT NULL DEFAULT 0,
    allergy_details TEXT,
    medical_conditions TEXT,
    takes_medications INTEGER NOT NULL DEFAULT 0,
    medication_details TEXT,
    updated_at INTEGER NOT NULL
);

-- One set of body metrics per user
CREATE TABLE IF NOT EXISTS health_metrics (
    user_id TEXT PRIMARY KEY,
    height_cm REAL,
    weight_kg REAL,
    goal TEXT,
    activity_level TEXT,
    updated_at INTEGER NOT NULL
);

-- One tracking row per user per calendar day
CREATE TABLE IF NOT EXISTS daily_tracking (
    user_id TEXT NOT NULL,
    day TEXT NOT NULL,
    water_glasses INTEGER NOT NULL DEFAULT 0,
    sleep_hours REAL NOT NULL DEFAULT 0,
    symptoms TEXT,
    PRIMARY KEY (user_id, day)
);

-- Water and meal logs
CREATE TABLE IF NOT EXISTS diet_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    entry_type TEXT NOT NULL CHECK (entry_type IN ('water', 'meal')),
    meal_type TEXT,
    description TEXT,
    water_ml INTEGER,
    calories REAL,
    protein REAL,
    carbs REAL,
    fat REAL,
    logged_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS habits (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    calories_burned REAL,
    logged_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    due_date TEXT NOT NULL,
    due_time TEXT,
    completed INTEGER NOT NULL DEFAULT 0
);

-- Append-only conversation rows; title is set on the first row only
CREATE TABLE IF NOT EXISTS chat_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    sender TEXT NOT NULL CHECK (sender IN ('user', 'coach')),
    sender_name TEXT,
    title TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_diet_user_logged ON diet_entries(user_id, logged_at);
CREATE INDEX IF NOT EXISTS idx_habits_user_logged ON habits(user_id, logged_at);
CREATE INDEX IF NOT EXISTS idx_reminders_user_due ON reminders(user_id, completed, due_date);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON chat_messages(user_id, conversation_id, created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
