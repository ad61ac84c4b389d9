package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xkura/sdklogview/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS log_files (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	source TEXT NOT NULL,
	uploaded_at INTEGER NOT NULL,
	line_count INTEGER NOT NULL,
	request_count INTEGER NOT NULL,
	sync_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS raw_lines (
	file_id TEXT NOT NULL,
	line_number INTEGER NOT NULL,
	raw_text TEXT,
	iso_timestamp TEXT,
	timestamp_micros INTEGER,
	display_time TEXT,
	level TEXT,
	stripped_message TEXT,
	PRIMARY KEY (file_id, line_number)
);

CREATE TABLE IF NOT EXISTS http_requests (
	file_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	request_id TEXT NOT NULL,
	method TEXT,
	uri TEXT,
	status TEXT,
	request_size TEXT,
	request_bytes INTEGER,
	response_size TEXT,
	response_bytes INTEGER,
	duration_ms INTEGER,
	send_line INTEGER,
	response_line INTEGER,
	send_ts_micros INTEGER,
	response_ts_micros INTEGER,
	PRIMARY KEY (file_id, seq)
);

CREATE TABLE IF NOT EXISTS sync_requests (
	file_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	request_id TEXT NOT NULL,
	method TEXT,
	uri TEXT,
	status TEXT,
	request_size TEXT,
	request_bytes INTEGER,
	response_size TEXT,
	response_bytes INTEGER,
	duration_ms INTEGER,
	send_line INTEGER,
	response_line INTEGER,
	send_ts_micros INTEGER,
	response_ts_micros INTEGER,
	conn_id TEXT,
	timeout_ms INTEGER,
	PRIMARY KEY (file_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_raw_lines_level ON raw_lines(file_id, level);
CREATE INDEX IF NOT EXISTS idx_http_requests_uri ON http_requests(file_id, uri);
CREATE INDEX IF NOT EXISTS idx_http_requests_status ON http_requests(file_id, status);
CREATE INDEX IF NOT EXISTS idx_log_files_uploaded_at ON log_files(uploaded_at);
`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) SaveParse(file models.LogFile, lines []models.RawLogLine, requests []models.HTTPRequest, syncs []models.SyncRequest) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Re-ingesting under the same id replaces the pass wholesale.
	if err := deleteFileTx(tx, file.ID); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO log_files (id, name, source, uploaded_at, line_count, request_count, sync_count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.Name, file.Source, file.UploadedAt.Unix(), file.LineCount, file.RequestCount, file.SyncCount)
	if err != nil {
		return err
	}

	lineStmt, err := tx.Prepare(`INSERT INTO raw_lines (file_id, line_number, raw_text, iso_timestamp, timestamp_micros, display_time, level, stripped_message) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer lineStmt.Close()
	for _, l := range lines {
		if _, err := lineStmt.Exec(file.ID, l.LineNumber, l.RawText, l.ISOTimestamp, l.TimestampMicros, l.DisplayTime, l.Level, l.StrippedMessage); err != nil {
			return err
		}
	}

	reqStmt, err := tx.Prepare(`INSERT INTO http_requests (file_id, seq, request_id, method, uri, status, request_size, request_bytes, response_size, response_bytes, duration_ms, send_line, response_line, send_ts_micros, response_ts_micros) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer reqStmt.Close()
	for i, q := range requests {
		if _, err := reqStmt.Exec(file.ID, i, q.RequestID, q.Method, q.URI, q.Status, q.RequestSize, q.RequestBytes, q.ResponseSize, q.ResponseBytes, q.DurationMs, q.SendLineNumber, q.ResponseLineNumber, q.SendTimestampMicros, q.ResponseTimestampMicros); err != nil {
			return err
		}
	}

	syncStmt, err := tx.Prepare(`INSERT INTO sync_requests (file_id, seq, request_id, method, uri, status, request_size, request_bytes, response_size, response_bytes, duration_ms, send_line, response_line, send_ts_micros, response_ts_micros, conn_id, timeout_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer syncStmt.Close()
	for i, s := range syncs {
		if _, err := syncStmt.Exec(file.ID, i, s.RequestID, s.Method, s.URI, s.Status, s.RequestSize, s.RequestBytes, s.ResponseSize, s.ResponseBytes, s.DurationMs, s.SendLineNumber, s.ResponseLineNumber, s.SendTimestampMicros, s.ResponseTimestampMicros, s.ConnID, s.TimeoutMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) ListFiles() ([]models.LogFile, error) {
	rows, err := r.db.Query(`SELECT id, name, source, uploaded_at, line_count, request_count, sync_count FROM log_files ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.LogFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) GetFile(id string) (*models.LogFile, error) {
	row := r.db.QueryRow(`SELECT id, name, source, uploaded_at, line_count, request_count, sync_count FROM log_files WHERE id = ?`, id)
	var f models.LogFile
	var uploaded int64
	err := row.Scan(&f.ID, &f.Name, &f.Source, &uploaded, &f.LineCount, &f.RequestCount, &f.SyncCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.UploadedAt = time.Unix(uploaded, 0).UTC()
	return &f, nil
}

func (r *SQLiteRepository) DeleteFile(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := deleteFileTx(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteFileTx(tx *sql.Tx, id string) error {
	for _, table := range []string{"raw_lines", "http_requests", "sync_requests"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE file_id = ?", id); err != nil {
			return err
		}
	}
	_, err := tx.Exec("DELETE FROM log_files WHERE id = ?", id)
	return err
}

var requestSortColumns = map[string]string{
	"request_id":    "request_id",
	"uri":           "uri",
	"status":        "status",
	"duration_ms":   "duration_ms",
	"send_line":     "send_line",
	"response_line": "response_line",
}

func (r *SQLiteRepository) QueryRequests(fileID string, f RequestFilters, limit, offset int) ([]models.HTTPRequest, int, error) {
	where := []string{"file_id = ?"}
	args := []interface{}{fileID}

	if f.Method != "" {
		where = append(where, "method = ?")
		args = append(args, f.Method)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.URIContains != "" {
		where = append(where, "uri LIKE ?")
		args = append(args, "%"+f.URIContains+"%")
	}
	if f.Pending != nil {
		if *f.Pending {
			where = append(where, "response_line = 0")
		} else {
			where = append(where, "response_line > 0")
		}
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	// seq preserves the parser's presentation order (send line ascending,
	// response-only records first in discovery order).
	orderBy := "seq"
	if col, ok := requestSortColumns[f.SortBy]; ok {
		orderBy = col
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM http_requests"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(
		"SELECT request_id, method, uri, status, request_size, request_bytes, response_size, response_bytes, duration_ms, send_line, response_line, send_ts_micros, response_ts_micros FROM http_requests"+
			whereClause+" ORDER BY "+orderBy+" "+dir+" LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.HTTPRequest
	for rows.Next() {
		var q models.HTTPRequest
		var duration sql.NullInt64
		err := rows.Scan(&q.RequestID, &q.Method, &q.URI, &q.Status, &q.RequestSize, &q.RequestBytes, &q.ResponseSize, &q.ResponseBytes, &duration, &q.SendLineNumber, &q.ResponseLineNumber, &q.SendTimestampMicros, &q.ResponseTimestampMicros)
		if err != nil {
			return nil, 0, err
		}
		if duration.Valid {
			v := duration.Int64
			q.DurationMs = &v
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepository) QuerySyncRequests(fileID string) ([]models.SyncRequest, []string, error) {
	rows, err := r.db.Query(`SELECT request_id, method, uri, status, request_size, request_bytes, response_size, response_bytes, duration_ms, send_line, response_line, send_ts_micros, response_ts_micros, conn_id, timeout_ms FROM sync_requests WHERE file_id = ? ORDER BY seq`, fileID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out []models.SyncRequest
	var connIDs []string
	seen := make(map[string]bool)
	for rows.Next() {
		var s models.SyncRequest
		var duration, timeout sql.NullInt64
		err := rows.Scan(&s.RequestID, &s.Method, &s.URI, &s.Status, &s.RequestSize, &s.RequestBytes, &s.ResponseSize, &s.ResponseBytes, &duration, &s.SendLineNumber, &s.ResponseLineNumber, &s.SendTimestampMicros, &s.ResponseTimestampMicros, &s.ConnID, &timeout)
		if err != nil {
			return nil, nil, err
		}
		if duration.Valid {
			v := duration.Int64
			s.DurationMs = &v
		}
		if timeout.Valid {
			v := int(timeout.Int64)
			s.TimeoutMs = &v
		}
		if s.ConnID != "" && !seen[s.ConnID] {
			seen[s.ConnID] = true
			connIDs = append(connIDs, s.ConnID)
		}
		out = append(out, s)
	}
	return out, connIDs, rows.Err()
}

func (r *SQLiteRepository) QueryLines(fileID string, f LineFilters, limit, offset int) ([]models.RawLogLine, int, error) {
	where := []string{"file_id = ?"}
	args := []interface{}{fileID}
	if f.Level != "" {
		where = append(where, "level = ?")
		args = append(args, f.Level)
	}
	if f.Contains != "" {
		where = append(where, "raw_text LIKE ?")
		args = append(args, "%"+f.Contains+"%")
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM raw_lines"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(
		"SELECT line_number, raw_text, iso_timestamp, timestamp_micros, display_time, level, stripped_message FROM raw_lines"+
			whereClause+" ORDER BY line_number LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.RawLogLine
	for rows.Next() {
		var l models.RawLogLine
		err := rows.Scan(&l.LineNumber, &l.RawText, &l.ISOTimestamp, &l.TimestampMicros, &l.DisplayTime, &l.Level, &l.StrippedMessage)
		if err != nil {
			return nil, 0, err
		}
		l.Message = l.RawText
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepository) GetStats(fileID string) (*FileStats, error) {
	stats := &FileStats{}

	if err := r.db.QueryRow("SELECT COUNT(*) FROM raw_lines WHERE file_id = ?", fileID).Scan(&stats.LineCount); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM http_requests WHERE file_id = ?", fileID).Scan(&stats.RequestCount); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM http_requests WHERE file_id = ? AND response_line = 0", fileID).Scan(&stats.PendingCount); err != nil {
		return nil, err
	}

	var responded, errored int64
	r.db.QueryRow("SELECT COUNT(*) FROM http_requests WHERE file_id = ? AND response_line > 0", fileID).Scan(&responded)
	r.db.QueryRow("SELECT COUNT(*) FROM http_requests WHERE file_id = ? AND response_line > 0 AND CAST(status AS INTEGER) >= 400", fileID).Scan(&errored)
	if responded > 0 {
		stats.ErrorRate = float64(errored) / float64(responded) * 100
	}

	rows, err := r.db.Query("SELECT level, COUNT(*) FROM raw_lines WHERE file_id = ? GROUP BY level ORDER BY COUNT(*) DESC", fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var lc LevelCount
		rows.Scan(&lc.Level, &lc.Count)
		stats.LevelCounts = append(stats.LevelCounts, lc)
	}

	rows2, err := r.db.Query("SELECT status, COUNT(*) FROM http_requests WHERE file_id = ? AND status <> '' GROUP BY status ORDER BY status", fileID)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var sc StatusCount
		rows2.Scan(&sc.Status, &sc.Count)
		stats.StatusDistribution = append(stats.StatusDistribution, sc)
	}

	rows3, err := r.db.Query("SELECT uri, COUNT(*) FROM http_requests WHERE file_id = ? GROUP BY uri ORDER BY COUNT(*) DESC LIMIT 10", fileID)
	if err != nil {
		return nil, err
	}
	defer rows3.Close()
	for rows3.Next() {
		var uc URICount
		rows3.Scan(&uc.URI, &uc.Count)
		stats.TopURIs = append(stats.TopURIs, uc)
	}

	r.db.QueryRow("SELECT COALESCE(SUM(request_bytes), 0), COALESCE(SUM(response_bytes), 0) FROM http_requests WHERE file_id = ?", fileID).
		Scan(&stats.TotalRequestBytes, &stats.TotalResponseBytes)
	r.db.QueryRow("SELECT COALESCE(AVG(duration_ms), 0), COALESCE(MAX(duration_ms), 0) FROM http_requests WHERE file_id = ? AND duration_ms IS NOT NULL", fileID).
		Scan(&stats.AvgDurationMs, &stats.MaxDurationMs)

	return stats, nil
}

func (r *SQLiteRepository) DeleteOlderThan(t time.Time) error {
	cutoff := t.Unix()
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"raw_lines", "http_requests", "sync_requests"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE file_id IN (SELECT id FROM log_files WHERE uploaded_at < ?)", table), cutoff); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM log_files WHERE uploaded_at < ?", cutoff); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanFile(rows *sql.Rows) (models.LogFile, error) {
	var f models.LogFile
	var uploaded int64
	err := rows.Scan(&f.ID, &f.Name, &f.Source, &uploaded, &f.LineCount, &f.RequestCount, &f.SyncCount)
	if err != nil {
		return f, err
	}
	f.UploadedAt = time.Unix(uploaded, 0).UTC()
	return f, nil
}
