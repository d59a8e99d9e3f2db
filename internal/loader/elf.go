//go:build linux && amd64

package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	ehdrSize = 64
	phdrSize = 56

	classELF64 = 2
	etExec     = 2
	emX8664    = 62

	ptLoad   = 1
	ptInterp = 3

	pfX = 0x1
	pfW = 0x2
	pfR = 0x4
)

var elfMagic = [4]byte{0x7f, 'E', 'L', 'F'}

// ehdr mirrors Elf64_Ehdr field for field, in on-disk order, so
// binary.Read can decode the header directly into it.
type ehdr struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// phdr mirrors Elf64_Phdr.
type phdr struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

func readEhdr(f *os.File) (ehdr, error) {
	var eh ehdr
	if err := binary.Read(f, binary.LittleEndian, &eh); err != nil {
		return eh, fmt.Errorf("read ELF header: %w", err)
	}
	if eh.Ident[0] != elfMagic[0] || eh.Ident[1] != elfMagic[1] ||
		eh.Ident[2] != elfMagic[2] || eh.Ident[3] != elfMagic[3] {
		return eh, fmt.Errorf("unsupported ELF file")
	}
	if eh.Ident[4] != classELF64 || eh.Type != etExec || eh.Machine != emX8664 {
		return eh, fmt.Errorf("unsupported ELF file")
	}
	if eh.Phentsize != phdrSize || eh.Phnum == 0 {
		return eh, fmt.Errorf("bad program headers")
	}
	return eh, nil
}

func readPhdrs(f *os.File, eh ehdr) ([]phdr, error) {
	if _, err := f.Seek(int64(eh.Phoff), 0); err != nil {
		return nil, fmt.Errorf("lseek phdrs: %w", err)
	}
	phdrs := make([]phdr, eh.Phnum)
	if err := binary.Read(f, binary.LittleEndian, phdrs); err != nil {
		return nil, fmt.Errorf("read phdrs: %w", err)
	}
	for _, ph := range phdrs {
		if ph.Type == ptInterp {
			return nil, fmt.Errorf("dynamic executables not supported, use -static")
		}
	}
	return phdrs, nil
}
