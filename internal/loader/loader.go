//go:build linux && amd64

// Package loader implements the shell's in-process static-ELF loader: it
// parses an ELF64/x86-64 executable, maps its PT_LOAD segments and a
// fresh stack directly into the calling process's address space,
// constructs a System-V AMD64 initial stack, and jumps to the program's
// entry point without ever calling execve. Run never returns on success
// — the calling process becomes the loaded program. It is meant to be
// the last thing a dedicated stage process ever does; see cmd/ebash's
// hidden re-exec subcommand.
package loader

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

const stackSize = 8 * 1024 * 1024

// Run loads path as a static ELF64/x86-64 executable and transfers
// control to it. argv[0] conventionally equals path; envp is the
// process environment in "NAME=value" form. On any validation, I/O, or
// mapping failure Run returns an error and the caller should exit 127,
// matching the original loader's failure semantics. On success Run does
// not return.
func Run(path string, argv, envp []string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	eh, err := readEhdr(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	phdrs, err := readPhdrs(f, eh)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fd := int(f.Fd())
	for _, ph := range phdrs {
		if ph.Type != ptLoad {
			continue
		}
		if err := mapSegment(fd, ph); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	stackBase, err := mmapFixed(0, stackSize, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS, -1, 0)
	if err != nil {
		return fmt.Errorf("mmap stack: %w", err)
	}

	sp := buildInitialStack(stackBase, stackSize, path, argv, envp)

	// Once the jump below happens there is no returning to ordinary Go
	// execution: the PT_LOAD mmaps above may already have clobbered this
	// goroutine's own code and data pages. Pin to one OS thread and stop
	// the garbage collector from running concurrently with that.
	runtime.LockOSThread()
	debug.SetGCPercent(-1)

	jumpToEntry(uintptr(eh.Entry), sp)
	panic("loader: jumpToEntry returned")
}

func mapSegment(fd int, ph phdr) error {
	page := pageAlign(uintptr(ph.Vaddr))
	pageOff := uintptr(ph.Vaddr) - page
	mapSz := pageOff + uintptr(ph.Memsz)

	addr, err := mmapFixed(page, mapSz, elfProt(ph.Flags),
		unix.MAP_PRIVATE|unix.MAP_FIXED, fd, int64(ph.Offset)-int64(pageOff))
	if err != nil {
		return fmt.Errorf("mmap segment: %w", err)
	}
	_ = addr

	if ph.Memsz > ph.Filesz {
		zeroRange(uintptr(ph.Vaddr)+uintptr(ph.Filesz), uintptr(ph.Memsz-ph.Filesz))
	}
	return nil
}
