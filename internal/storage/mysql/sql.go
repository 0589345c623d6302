package mysql

// Statements are templated on the table name; WordPress multisite installs
// use one postmeta table per blog (wp_postmeta, wp_42_postmeta, ...).

const selectMetaIDSQL = "SELECT meta_id FROM `%s` WHERE post_id = ? AND meta_key = ? ORDER BY meta_id LIMIT 1 FOR UPDATE"

const updateMetaSQL = "UPDATE `%s` SET meta_value = ? WHERE meta_id = ?"

const insertMetaSQL = "INSERT INTO `%s` (post_id, meta_key, meta_value) VALUES (?, ?, ?)"

const listMetaSQL = "SELECT post_id, meta_key, meta_value FROM `%s` WHERE post_id = ? ORDER BY meta_id"

// Same shape as the table WordPress creates.
const createMetaTableSQL = "CREATE TABLE IF NOT EXISTS `%s` (\n" +
	"  meta_id    BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,\n" +
	"  post_id    BIGINT UNSIGNED NOT NULL DEFAULT 0,\n" +
	"  meta_key   VARCHAR(255) DEFAULT NULL,\n" +
	"  meta_value LONGTEXT,\n" +
	"  PRIMARY KEY (meta_id),\n" +
	"  KEY post_id (post_id),\n" +
	"  KEY meta_key (meta_key(191))\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci"
