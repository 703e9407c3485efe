// Package id generates the opaque identifiers used for accounts,
// positions and trade records.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

// New returns a ULID string. Monotonic entropy keeps ids minted within
// the same millisecond lexicographically increasing, so trade history
// and the SQLite indexes stay time-sorted.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	if entropy == nil {
		var seed int64
		_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
		entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
	}

	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
