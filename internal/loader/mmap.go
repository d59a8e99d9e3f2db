//go:build linux && amd64

package loader

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const pageSize = 4096

func pageAlign(addr uintptr) uintptr {
	return addr &^ (pageSize - 1)
}

// mmapFixed maps length bytes at the exact address addr, backed by fd at
// offset (fd == -1 for an anonymous mapping). The higher-level
// unix.Mmap wrapper always requests address 0 from the kernel, which is
// useless together with MAP_FIXED, so this goes straight to the mmap(2)
// syscall.
func mmapFixed(addr, length uintptr, prot, flags, fd int, offset int64) (uintptr, error) {
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr, length,
		uintptr(prot), uintptr(flags),
		uintptr(fd), uintptr(offset),
	)
	if errno != 0 {
		return 0, fmt.Errorf("mmap: %w", errno)
	}
	return ret, nil
}

func elfProt(flags uint32) int {
	prot := 0
	if flags&pfR != 0 {
		prot |= unix.PROT_READ
	}
	if flags&pfW != 0 {
		prot |= unix.PROT_WRITE
	}
	if flags&pfX != 0 {
		prot |= unix.PROT_EXEC
	}
	return prot
}
