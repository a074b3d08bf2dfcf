package storage

const schemaSQL = `
-- Visited URLs: the permanently-done set, successful or not
CREATE TABLE IF NOT EXISTS visited_urls (
    url TEXT PRIMARY KEY NOT NULL
);

-- Pending queue, in FIFO order by position
CREATE TABLE IF NOT EXISTS queue_urls (
    position INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL
);

-- Crawl meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
