package pbx

import (
	"strings"

	"github.com/google/uuid"
)

// ID is the opaque 24-character object identifier used as a key in the
// objects table of a project file.
type ID string

// idLength matches the identifiers Xcode itself allocates.
const idLength = 24

// idAllocator hands out identifiers that are unique for the lifetime of a
// graph. Identifiers of removed objects stay reserved.
type idAllocator struct {
	used map[ID]struct{}
	next func() string
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		used: make(map[ID]struct{}),
		next: func() string { return uuid.NewString() },
	}
}

func (a *idAllocator) reserve(id ID) {
	a.used[id] = struct{}{}
}

func (a *idAllocator) allocate() ID {
	for {
		raw := strings.ToUpper(strings.ReplaceAll(a.next(), "-", ""))
		if len(raw) < idLength {
			continue
		}
		id := ID(raw[:idLength])
		if _, taken := a.used[id]; taken {
			continue
		}
		a.used[id] = struct{}{}
		return id
	}
}
