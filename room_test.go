package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDirectory() (*Directory, *Registry) {
	reg := NewRegistry()
	return NewDirectory(reg, zap.NewNop()), reg
}

func connect(reg *Registry) *Client {
	c := &Client{send: make(chan []byte, 32)}
	reg.Register(c)
	return c
}

func TestDirectory_CreatePublicRoom(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	sum, code, err := dir.Create(c, createRoomMsg{Name: "  Mi Sala  ", MaxPlayers: 4})
	require.NoError(t, err)
	assert.Empty(t, code, "public rooms have no lock code")
	assert.Equal(t, "Mi Sala", sum.Name)
	assert.Equal(t, visPublic, sum.Visibility)
	assert.Equal(t, lockNone, sum.Lock)
	assert.Equal(t, 4, sum.MaxPlayers)
	assert.Equal(t, 1, sum.Players, "creator is already a member")
	assert.Equal(t, "open", sum.Status)

	ident, _ := reg.Lookup(c)
	assert.Equal(t, sum.ID, ident.RoomID)
}

func TestDirectory_CreateClampsCapacity(t *testing.T) {
	dir, reg := newTestDirectory()

	for give, want := range map[int]int{0: 2, 1: 2, 2: 2, 16: 16, 99: 16, -5: 2} {
		c := connect(reg)
		sum, _, err := dir.Create(c, createRoomMsg{MaxPlayers: give})
		require.NoError(t, err)
		assert.Equal(t, want, sum.MaxPlayers, "capacity %d", give)
	}
}

func TestDirectory_CreatePrivateDefaultsToCode(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	sum, code, err := dir.Create(c, createRoomMsg{Visibility: visPrivate})
	require.NoError(t, err)
	assert.Equal(t, lockCode, sum.Lock)
	assert.True(t, sum.CodeRequired)
	assert.False(t, sum.PasswordRequired)
	require.Len(t, code, codeLength)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestDirectory_CreateRejectsWeakPassword(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	_, _, err := dir.Create(c, createRoomMsg{Visibility: visPrivate, Lock: lockPassword, Password: "ab"})
	require.ErrorIs(t, err, ErrWeakPassword)
	assert.Equal(t, 0, dir.RoomCount())
}

func TestDirectory_CreateWhileInRoomFails(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	_, _, err := dir.Create(c, createRoomMsg{})
	require.NoError(t, err)

	_, _, err = dir.Create(c, createRoomMsg{})
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	assert.Equal(t, 1, dir.RoomCount())
}

func TestDirectory_JoinHappyPath(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{MaxPlayers: 4})
	require.NoError(t, err)

	guest := connect(reg)
	got, err := dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Nickname: "Bea"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Players)

	ident, _ := reg.Lookup(guest)
	assert.Equal(t, sum.ID, ident.RoomID)
	assert.Equal(t, "Bea", ident.Nickname)

	roster := dir.Roster(sum.ID)
	require.Len(t, roster, 2)
}

func TestDirectory_JoinErrors(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, code, err := dir.Create(owner, createRoomMsg{Visibility: visPrivate, MaxPlayers: 2})
	require.NoError(t, err)

	t.Run("no such room", func(t *testing.T) {
		c := connect(reg)
		_, err := dir.Join(c, joinRoomMsg{RoomID: "nope"})
		assert.ErrorIs(t, err, ErrNoSuchRoom)
	})

	t.Run("bad code", func(t *testing.T) {
		c := connect(reg)
		_, err := dir.Join(c, joinRoomMsg{RoomID: sum.ID, Code: "XXXXXX"})
		assert.ErrorIs(t, err, ErrBadCode)
		assert.Equal(t, "Código incorrecto.", err.Error())
	})

	t.Run("good code after bad", func(t *testing.T) {
		c := connect(reg)
		_, err := dir.Join(c, joinRoomMsg{RoomID: sum.ID, Code: code})
		require.NoError(t, err)
	})

	t.Run("room full", func(t *testing.T) {
		c := connect(reg)
		_, err := dir.Join(c, joinRoomMsg{RoomID: sum.ID, Code: code})
		assert.ErrorIs(t, err, ErrRoomFull)
	})

	t.Run("already in room", func(t *testing.T) {
		_, err := dir.Join(owner, joinRoomMsg{RoomID: sum.ID, Code: code})
		assert.ErrorIs(t, err, ErrAlreadyInRoom)
	})
}

func TestDirectory_JoinCodeIsCaseInsensitive(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, code, err := dir.Create(owner, createRoomMsg{Visibility: visPrivate})
	require.NoError(t, err)

	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Code: " " + strings.ToLower(code) + " "})
	assert.NoError(t, err, "codes are normalized before the exact match")
}

func TestDirectory_JoinPasswordExactMatch(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{Visibility: visPrivate, Lock: lockPassword, Password: "secreto"})
	require.NoError(t, err)

	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Password: "secret"})
	assert.ErrorIs(t, err, ErrBadPassword, "prefix must not match")

	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Password: "secreto"})
	assert.NoError(t, err)
}

func TestDirectory_JoinDefaultsAndBoundsNickname(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{MaxPlayers: 4})
	require.NoError(t, err)

	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Nickname: "   "})
	require.NoError(t, err)
	ident, _ := reg.Lookup(guest)
	assert.Equal(t, defaultNickname, ident.Nickname)

	long := connect(reg)
	_, err = dir.Join(long, joinRoomMsg{RoomID: sum.ID, Nickname: strings.Repeat("x", 100)})
	require.NoError(t, err)
	ident, _ = reg.Lookup(long)
	assert.Len(t, []rune(ident.Nickname), maxNicknameLen)
}

func TestDirectory_LeaveDeletesEmptyRoom(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)
	sum, _, err := dir.Create(c, createRoomMsg{})
	require.NoError(t, err)
	require.Equal(t, 1, dir.RoomCount())

	dep, ok := dir.Leave(c)
	require.True(t, ok)
	assert.Equal(t, sum.ID, dep.RoomID)
	assert.True(t, dep.RoomDeleted, "last member leaving must delete the room")
	assert.Equal(t, 0, dir.RoomCount())
	assert.Empty(t, dir.Summaries())

	ident, _ := reg.Lookup(c)
	assert.Empty(t, ident.RoomID)
}

func TestDirectory_LeaveKeepsPopulatedRoom(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{MaxPlayers: 4})
	require.NoError(t, err)
	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Nickname: "Bea"})
	require.NoError(t, err)

	dep, ok := dir.Leave(guest)
	require.True(t, ok)
	assert.False(t, dep.RoomDeleted)
	assert.Equal(t, 1, dir.RoomCount())
	assert.Len(t, dir.Roster(sum.ID), 1)
}

func TestDirectory_LeaveWithoutRoomIsNoop(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	_, ok := dir.Leave(c)
	assert.False(t, ok)
}

func TestDirectory_SummariesNeverLeakSecrets(t *testing.T) {
	dir, reg := newTestDirectory()
	a := connect(reg)
	_, code, err := dir.Create(a, createRoomMsg{Visibility: visPrivate})
	require.NoError(t, err)
	b := connect(reg)
	_, _, err = dir.Create(b, createRoomMsg{Visibility: visPrivate, Lock: lockPassword, Password: "secreto"})
	require.NoError(t, err)

	sums := dir.Summaries()
	require.Len(t, sums, 2)
	for _, s := range sums {
		switch s.Lock {
		case lockCode:
			assert.True(t, s.CodeRequired)
		case lockPassword:
			assert.True(t, s.PasswordRequired)
		}
	}

	// The serialized listing must not contain either secret.
	raw := marshalForTest(t, roomsMsg{T: "rooms", Rooms: sums})
	assert.NotContains(t, raw, code)
	assert.NotContains(t, raw, "secreto")
}

func TestDirectory_SummariesOrderedByCreation(t *testing.T) {
	dir, reg := newTestDirectory()
	for i := 0; i < 3; i++ {
		c := connect(reg)
		_, _, err := dir.Create(c, createRoomMsg{})
		require.NoError(t, err)
	}

	sums := dir.Summaries()
	require.Len(t, sums, 3)
	for i := 1; i < len(sums); i++ {
		assert.LessOrEqual(t, sums[i-1].CreatedAt, sums[i].CreatedAt)
	}
}

func TestDirectory_UpdateStateSnapshot(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{MaxPlayers: 4})
	require.NoError(t, err)
	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Nickname: "Bea"})
	require.NoError(t, err)

	roomID, snap, ok := dir.UpdateState(guest, stateVec{X: 1.5, Y: 2, Z: -3, A: 90})
	require.True(t, ok)
	assert.Equal(t, sum.ID, roomID)
	require.Len(t, snap.Players, 2, "exactly one entry per current member")

	byID := make(map[string]worldEntry)
	for _, p := range snap.Players {
		byID[p.ID] = p
	}
	guestIdent, _ := reg.Lookup(guest)
	ownerIdent, _ := reg.Lookup(owner)
	assert.Equal(t, 1.5, byID[guestIdent.PlayerID].X)
	assert.Equal(t, 90.0, byID[guestIdent.PlayerID].A)
	assert.Zero(t, byID[ownerIdent.PlayerID].X, "never-updated members default to zero")

	// Wholesale replacement: a second update does not merge.
	_, snap, ok = dir.UpdateState(guest, stateVec{Y: 7})
	require.True(t, ok)
	for _, p := range snap.Players {
		byID[p.ID] = p
	}
	assert.Zero(t, byID[guestIdent.PlayerID].X)
	assert.Equal(t, 7.0, byID[guestIdent.PlayerID].Y)
}

func TestDirectory_UpdateStateOutsideRoomIsNoop(t *testing.T) {
	dir, reg := newTestDirectory()
	c := connect(reg)

	_, _, ok := dir.UpdateState(c, stateVec{X: 1})
	assert.False(t, ok)
}

func TestDirectory_StateDestroyedOnLeave(t *testing.T) {
	dir, reg := newTestDirectory()
	owner := connect(reg)
	sum, _, err := dir.Create(owner, createRoomMsg{MaxPlayers: 4})
	require.NoError(t, err)
	guest := connect(reg)
	_, err = dir.Join(guest, joinRoomMsg{RoomID: sum.ID, Nickname: "Bea"})
	require.NoError(t, err)
	_, _, ok := dir.UpdateState(guest, stateVec{X: 5})
	require.True(t, ok)

	_, ok = dir.Leave(guest)
	require.True(t, ok)

	_, snap, ok := dir.UpdateState(owner, stateVec{})
	require.True(t, ok)
	require.Len(t, snap.Players, 1, "departed member's state must be gone")
}
