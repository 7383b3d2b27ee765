package sqlstore

// Queries use `?` placeholders and go through Rebind, so the same text runs on
// MySQL, SQLite and PostgreSQL. Columns are aliased in lower case because
// PostgreSQL folds unquoted identifiers.

const listRecordsSQL = `
SELECT ID AS id, display_name AS display_name
FROM wp_users
ORDER BY ID
`

const searchRecordsSQL = `
SELECT ID AS id, display_name AS display_name
FROM wp_users
WHERE LOWER(display_name) LIKE ? ESCAPE '!'
ORDER BY ID
`

// One round trip per (entity, key).
const getMetaSQL = `
SELECT meta_value
FROM wp_usermeta
WHERE user_id = ? AND meta_key = ?
`

// One round trip per entity; the IN list is expanded by sqlx.In.
const entityMetasSQL = `
SELECT meta_key, meta_value
FROM wp_usermeta
WHERE user_id = ? AND meta_key IN (?)
`

// One round trip per batch of (entity, key) pairs.
const batchMetasSQL = `
SELECT user_id, meta_key, meta_value
FROM wp_usermeta
WHERE user_id IN (?) AND meta_key IN (?)
`

// SUM rather than AVG so rounding happens in one place regardless of dialect.
const reviewStatsSQL = `
SELECT
  COUNT(pm.meta_value) AS cpt,
  COALESCE(SUM(CAST(pm.meta_value AS DECIMAL(10,2))), 0) AS total
FROM wp_posts p
JOIN wp_postmeta pm ON pm.post_id = p.ID
WHERE p.post_author = ?
  AND p.post_type = 'review'
  AND pm.meta_key = 'rating'
`

const roomIDsSQL = `
SELECT ID AS id
FROM wp_posts
WHERE post_author = ? AND post_type = 'room'
ORDER BY ID
`

const roomPostSQL = `
SELECT ID AS id, post_title AS post_title
FROM wp_posts
WHERE ID = ? AND post_type = 'room'
`

const roomMetasSQL = `
SELECT meta_key, meta_value
FROM wp_postmeta
WHERE post_id = ? AND meta_key IN (?)
`

// Every room of an owner with its meta rows, ordered so each room's rows are
// contiguous. Rooms without any meta still produce one row.
const roomScanSQL = `
SELECT p.ID AS id, p.post_title AS post_title, pm.meta_key AS meta_key, pm.meta_value AS meta_value
FROM wp_posts p
LEFT JOIN wp_postmeta pm ON pm.post_id = p.ID AND pm.meta_key IN (?)
WHERE p.post_author = ? AND p.post_type = 'room'
ORDER BY p.ID
`
