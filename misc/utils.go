package misc

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

var (
	ErrMissingId = errors.New("missing id")
)

// 9 bytes of unixnano and 7 random bytes
func PseudoUUID() string {
	now := time.Now().UnixNano()
	randPart := make([]byte, 7)
	if _, err := rand.Read(randPart); err != nil {
		copy(randPart, (*(*[8]byte)(unsafe.Pointer(&now)))[:7])
	}
	return strconv.FormatInt(now, 10)[1:] + hex.EncodeToString(randPart)
}

// CreateToken returns ln random bytes plus 8 bytes of unixnano, so two
// tokens minted in the same instant can never collide.
func CreateToken(ln int) []byte {
	buf := make([]byte, ln+8)
	if _, err := rand.Read(buf[:ln]); err != nil {
		panic("misc: crypto/rand failed: " + err.Error())
	}
	binary.BigEndian.PutUint64(buf[ln:], uint64(time.Now().UnixNano()))
	return buf
}

func TrimEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
