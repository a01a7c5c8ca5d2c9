package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// schema creates the compile history tables.
const schema = `
CREATE TABLE IF NOT EXISTS compiles (
    id TEXT PRIMARY KEY,
    compiled_at INTEGER NOT NULL,
    text TEXT NOT NULL,
    scope_id TEXT NOT NULL DEFAULT '',
    parser TEXT NOT NULL,
    understood INTEGER NOT NULL,
    readiness TEXT NOT NULL DEFAULT '',
    fallback_reason TEXT NOT NULL DEFAULT '',
    rule_json TEXT NOT NULL,
    feasibility_json TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compiles_compiled_at ON compiles(compiled_at);
CREATE INDEX IF NOT EXISTS idx_compiles_scope_id ON compiles(scope_id);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`
