package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    project_id            TEXT NOT NULL,
    session_id            TEXT NOT NULL,
    parent_session_id     TEXT,
    project_path          TEXT,
    total_cost_usd        REAL NOT NULL DEFAULT 0,
    cost_estimated        INTEGER NOT NULL DEFAULT 0,
    input_tokens          INTEGER NOT NULL DEFAULT 0,
    output_tokens         INTEGER NOT NULL DEFAULT 0,
    cache_creation_tokens INTEGER NOT NULL DEFAULT 0,
    cache_read_tokens     INTEGER NOT NULL DEFAULT 0,
    lines_added           INTEGER NOT NULL DEFAULT 0,
    lines_removed         INTEGER NOT NULL DEFAULT 0,
    duration_ms           INTEGER NOT NULL DEFAULT 0,
    start_time            TEXT,
    last_update_time      TEXT,
    model_id              TEXT,
    model_name            TEXT,
    file_mtime_ns         INTEGER NOT NULL DEFAULT 0,
    file_size             INTEGER NOT NULL DEFAULT 0,
    indexed_at            TEXT NOT NULL,
    PRIMARY KEY (project_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(last_update_time);
CREATE INDEX IF NOT EXISTS idx_sessions_parent ON sessions(parent_session_id);
`
