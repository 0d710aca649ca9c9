package guest

import "time"

// CSVHeader is the column layout of the guest export.
var CSVHeader = []string{
	"guest_id", "name", "phone", "status", "attended_by", "notes",
	"day", "checked_in_at", "checked_out_at",
}

// CSVRows flattens guests for the export surface.
func CSVRows(gs []Guest) [][]string {
	rows := make([][]string, 0, len(gs))
	for _, g := range gs {
		rows = append(rows, []string{
			g.ID, g.Name, g.Phone, string(g.Status), g.AttendedBy, g.Notes,
			g.Day, formatTime(g.CheckedInAt), formatTime(g.CheckedOutAt),
		})
	}
	return rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
