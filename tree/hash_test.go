package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashFolder_EmptyFolder_StableNonEmptyHash(t *testing.T) {
	f := NewFolder("1", RootID, "Work")
	h := HashFolder(f)
	assert.NotEmpty(t, h)
	assert.Equal(t, h, HashFolder(f), "hashing the same folder twice must agree")
}

func TestHashFolder_IdenticalContent_SameHash(t *testing.T) {
	a := NewFolder("1", RootID, "Work")
	a.SetChildren([]Item{NewBookmark("b1", "1", "A", "https://a.com")})

	b := NewFolder("1", RootID, "Work")
	b.SetChildren([]Item{NewBookmark("b1", "1", "A", "https://a.com")})

	assert.Equal(t, HashFolder(a), HashFolder(b))
}

func TestHashFolder_TitleChange_ChangesHash(t *testing.T) {
	a := NewFolder("1", RootID, "Work")
	a.SetChildren([]Item{NewBookmark("b1", "1", "A", "https://a.com")})

	b := NewFolder("1", RootID, "Work")
	b.SetChildren([]Item{NewBookmark("b1", "1", "Renamed", "https://a.com")})

	assert.NotEqual(t, HashFolder(a), HashFolder(b))
}

func TestHashFolder_OrderChange_ChangesHash(t *testing.T) {
	b1 := NewBookmark("b1", "1", "A", "https://a.com")
	b2 := NewBookmark("b2", "1", "B", "https://b.com")

	a := NewFolder("1", RootID, "Work")
	a.SetChildren([]Item{b1, b2})

	b := NewFolder("1", RootID, "Work")
	b.SetChildren([]Item{b2, b1})

	assert.NotEqual(t, HashFolder(a), HashFolder(b), "reordering children must change the hash so checkHashes does not skip a reorder")
}

func TestHashFolder_NestedChange_PropagatesToParentHash(t *testing.T) {
	child := NewFolder("c1", "1", "Sub")
	child.SetChildren([]Item{NewBookmark("b1", "c1", "A", "https://a.com")})
	a := NewFolder("1", RootID, "Work")
	a.SetChildren([]Item{child})

	changedChild := NewFolder("c1", "1", "Sub")
	changedChild.SetChildren([]Item{NewBookmark("b1", "c1", "A", "https://changed.com")})
	b := NewFolder("1", RootID, "Work")
	b.SetChildren([]Item{changedChild})

	assert.NotEqual(t, HashFolder(a), HashFolder(b))
}
