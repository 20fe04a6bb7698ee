package internal

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/process"
)

// ImagesShow prints the identity of the current process and the loaded
// images that carry metadata sections. Returns an exit code.
func ImagesShow() int {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log(fmt.Sprintf("cannot inspect current process: %v", err))
		return 1
	}
	name, _ := proc.Name()
	exe, _ := proc.Exe()
	log(fmt.Sprintf("pid %d name %s exe %s", proc.Pid, name, exe))

	found := sections()
	bases := []uintptr{}
	seen := map[uintptr]bool{}
	for _, sb := range found {
		if seen[sb.ImageBase] {
			continue
		}
		seen[sb.ImageBase] = true
		bases = append(bases, sb.ImageBase)
	}

	log(fmt.Sprintf("%d metadata section(s) across %d image(s)", len(found), len(bases)))
	for _, base := range bases {
		log(fmt.Sprintf("image 0x%x", base))
	}
	return 0
}
