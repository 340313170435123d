package service

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestNoHead returns the "{PREFIX}-{year}-" head shared by all numbers
// allocated for a variant within one calendar year.
func RequestNoHead(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// NextRequestNo derives the next number from the existing ones: scan numbers
// matching the head, take the max trailing sequence, allocate max+1 padded
// to 5 digits. The sequence resets each year because the head carries the
// year. Callers must serialize allocation (advisory lock or store mutex);
// the scan itself is not safe under concurrent allocation.
func NextRequestNo(prefix string, year int, existing []string) string {
	head := RequestNoHead(prefix, year)

	max := 0
	for _, no := range existing {
		if !strings.HasPrefix(no, head) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(no, head))
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%05d", head, max+1)
}
