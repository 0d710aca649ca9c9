package registration

import "time"

// CSVHeader is the column layout of the registration export.
var CSVHeader = []string{
	"registration_id", "student_id", "full_name", "class", "school",
	"email", "mobile", "program", "gender", "status", "payment", "created_at",
}

// CSVRows flattens registrations for the export surface.
func CSVRows(regs []Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, []string{
			reg.ID, reg.StudentID, reg.FullName, reg.Class, reg.School,
			reg.Email, reg.Mobile, reg.Program, reg.Gender,
			string(reg.Status), string(reg.Payment),
			reg.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}
