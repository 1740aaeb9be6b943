package format

import (
	"fmt"
	"io"
)

// FormatSummary writes the "Showing N of M" footer of a list. A negative
// total means the server did not report one.
func FormatSummary(w io.Writer, shown, loaded, total int, hasMore bool) error {
	line := fmt.Sprintf("Showing %d of %d loaded", shown, loaded)
	if total >= 0 {
		line += fmt.Sprintf(" (%d total)", total)
	}
	if hasMore {
		line += "; more available"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// FormatUnread writes the unread notification count.
func FormatUnread(w io.Writer, unread, loaded int) error {
	_, err := fmt.Fprintf(w, "%d unread of %d\n", unread, loaded)
	return err
}
