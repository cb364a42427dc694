package bridge

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/aryorithm/aegis-sky/internal/ipc"
)

// Apart from the magic sentinel (written once by Create and checked once at
// attach with plain encoding/binary), the header field helpers below
// operate through sync/atomic on fixed offsets into the mmap'd region, matching spec §5's "state_flag
// transitions use release/acquire ordering so a reader that observes ready
// sees the full payload" — Go's sync/atomic loads/stores are sequentially
// consistent, a strictly stronger guarantee than acquire/release, so the
// invariant holds.

func u64ptr(data []byte, off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&data[off]))
}

func u32ptr(data []byte, off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&data[off]))
}

func loadMagic(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data[ipc.HeaderMagicOff : ipc.HeaderMagicOff+8])
}

func storeMagic(data []byte, v uint64) {
	binary.LittleEndian.PutUint64(data[ipc.HeaderMagicOff:ipc.HeaderMagicOff+8], v)
}

func loadFrameID(data []byte) uint64 {
	return atomic.LoadUint64(u64ptr(data, ipc.HeaderFrameIDOff))
}

func storeFrameID(data []byte, v uint64) {
	atomic.StoreUint64(u64ptr(data, ipc.HeaderFrameIDOff), v)
}

func loadSimTime(data []byte) float64 {
	return math.Float64frombits(atomic.LoadUint64(u64ptr(data, ipc.HeaderSimTimeOff)))
}

func storeSimTime(data []byte, v float64) {
	atomic.StoreUint64(u64ptr(data, ipc.HeaderSimTimeOff), math.Float64bits(v))
}

func loadNumRadarPoints(data []byte) uint32 {
	return atomic.LoadUint32(u32ptr(data, ipc.HeaderNumRadarOff))
}

func storeNumRadarPoints(data []byte, v uint32) {
	atomic.StoreUint32(u32ptr(data, ipc.HeaderNumRadarOff), v)
}

func loadStateFlag(data []byte) ipc.StateFlag {
	return ipc.StateFlag(atomic.LoadUint32(u32ptr(data, ipc.HeaderStateFlagOff)))
}

func storeStateFlag(data []byte, v ipc.StateFlag) {
	atomic.StoreUint32(u32ptr(data, ipc.HeaderStateFlagOff), uint32(v))
}
