package core

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with binary (1024) steps, e.g. "1.5 GB".
func FormatSize(bytes int64) string {
	num := float64(bytes)
	for _, unit := range sizeUnits {
		if num < 1024 && num > -1024 {
			return fmt.Sprintf("%3.1f %s", num, unit)
		}
		num /= 1024
	}
	return fmt.Sprintf("%.1f PB", num)
}
