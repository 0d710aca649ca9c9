package attendance

import (
	"strconv"
	"time"
)

// CSVHeader is the column layout of the attendance export.
var CSVHeader = []string{
	"record_id", "student_id", "full_name", "class", "school", "email",
	"gender", "program", "day", "accompaniment", "participating",
	"participation_count", "created_at",
}

// CSVRows flattens records for the export surface.
func CSVRows(recs []Record) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.ID, rec.StudentID, rec.FullName, rec.Class, rec.School, rec.Email,
			rec.Gender, rec.Program, rec.Day, rec.Accompaniment,
			strconv.FormatBool(rec.Participating),
			strconv.Itoa(Participation(rec.Accompaniment)),
			rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}
