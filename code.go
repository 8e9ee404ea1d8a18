package main

import "crypto/rand"

// codeAlphabet omits 0/O/1/I so codes survive being read aloud or
// copied by hand.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// newLockCode generates the short human-typable secret for a
// private room with lock mode "code".
func newLockCode() string {
	b := make([]byte, codeLength)
	rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
