package storage

const schema = `
-- Lexicon: unique normalized terms
CREATE TABLE IF NOT EXISTS terms (
    term_id INTEGER PRIMARY KEY AUTOINCREMENT,
    term TEXT UNIQUE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_terms_term ON terms(term);

-- Document index: unique canonical URLs with title and importance score
CREATE TABLE IF NOT EXISTS documents (
    doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    page_rank REAL NOT NULL DEFAULT 1.0
);

-- Inverted index: one row per (term, document) with its emphasis weight
CREATE TABLE IF NOT EXISTS postings (
    term_id INTEGER NOT NULL,
    doc_id INTEGER NOT NULL,
    weight INTEGER NOT NULL,
    PRIMARY KEY (term_id, doc_id),
    FOREIGN KEY (term_id) REFERENCES terms(term_id),
    FOREIGN KEY (doc_id) REFERENCES documents(doc_id)
);
CREATE INDEX IF NOT EXISTS idx_postings_term ON postings(term_id);
CREATE INDEX IF NOT EXISTS idx_postings_doc ON postings(doc_id);

-- Link graph: directed document-to-document edges
CREATE TABLE IF NOT EXISTS links (
    from_doc_id INTEGER NOT NULL,
    to_doc_id INTEGER NOT NULL,
    PRIMARY KEY (from_doc_id, to_doc_id),
    FOREIGN KEY (from_doc_id) REFERENCES documents(doc_id),
    FOREIGN KEY (to_doc_id) REFERENCES documents(doc_id)
);
CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_doc_id);
CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_doc_id);
`
