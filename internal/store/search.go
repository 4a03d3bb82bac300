package store

import "database/sql"

func (db *DB) collectResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var (
			r   SearchResult
			day string
		)
		if err := rows.Scan(&r.ID, &r.Title, &day, &r.StartTime, &r.Snippet); err != nil {
			return nil, err
		}
		d, err := db.parseDay(day)
		if err != nil {
			return nil, err
		}
		r.Date = d
		out = append(out, r)
	}
	return out, rows.Err()
}
