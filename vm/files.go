package vm

import "os"

// FileTable is the VM-owned open-file table: descriptors are opaque
// indices a program cannot forge, starting at 3 since 0/1/2 are reserved
// for the console streams.
type FileTable struct {
	next  int
	files map[int]*os.File
}

func NewFileTable() *FileTable {
	return &FileTable{next: 3, files: make(map[int]*os.File)}
}

// Open allocates a fresh descriptor for a host file opened in the given
// mode (0=read, 1=write, 2=append).
func (t *FileTable) Open(path string, mode int) (int, error) {
	var flags int
	switch mode {
	case 0:
		flags = os.O_RDONLY
	case 1:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case 2:
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		flags = os.O_RDONLY
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return 0, err
	}

	fd := t.next
	t.next++
	t.files[fd] = f
	return fd, nil
}

func (t *FileTable) Get(fd int) (*os.File, bool) {
	f, ok := t.files[fd]
	return f, ok
}

// Close forgets fd, closing the underlying host file.
func (t *FileTable) Close(fd int) error {
	f, ok := t.files[fd]
	if !ok {
		return os.ErrClosed
	}
	delete(t.files, fd)
	return f.Close()
}
