package postgres

const queryCreateTable = `
CREATE TABLE IF NOT EXISTS reminder_config (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

const queryGet = `
SELECT value FROM reminder_config WHERE key = $1
`

const querySet = `
INSERT INTO reminder_config (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`
