package device

// Reader reads named pseudo files of a device, e.g. sysfs attributes
type Reader interface {
	Read(path string) (string, error)
}

// Injector mocks values of device pseudo files. Every path touched is
// recorded on first touch so RestoreAll can put it back.
type Injector interface {
	Reader

	// Write sets the content of path
	Write(path string, value string) error
	// UnlinkAndStub replaces a symlink with a plain writable file
	UnlinkAndStub(path string) error
	// Remove deletes path
	Remove(path string) error
	// RestoreAll puts every touched path back into its original state
	RestoreAll() error
}

type OverrideKind int

const (
	KindAbsent OverrideKind = iota
	KindRegular
	KindSymlink
)

func (k OverrideKind) String() string {
	switch k {
	case KindRegular:
		return "regular-file"
	case KindSymlink:
		return "symlink"
	}
	return "absent"
}

// MockOverride is the original state of a path touched by an Injector
type MockOverride struct {
	Path string
	Kind OverrideKind
	// Original is the file content for KindRegular and the link target for KindSymlink
	Original string
}
