package internal

import "fmt"

// SectionsList prints the bounds of each metadata section currently visible
// in the process. Returns an exit code.
func SectionsList() int {
	found := sections()
	if len(found) == 0 {
		log("no metadata sections")
		return 1
	}
	for _, sb := range found {
		log(fmt.Sprintf("image 0x%x section 0x%x size %d bytes", sb.ImageBase, sb.Start, sb.Size))
	}
	return 0
}
