// Package bridge implements the shared-memory transport between the Sim
// (producer) and the Core (consumer): a single fixed-layout region carrying
// radar points and video one way and a control command the other, with a
// versioned, atomically-flagged handshake (spec §4.A, §6).
//
// Go has no portable binding for POSIX shm_open, so the region is backed by
// a regular file under a tmpfs mount (/dev/shm on Linux) and mapped with
// golang.org/x/sys/unix.Mmap — the standard substitute Go programs use for
// POSIX shared memory semantics.
package bridge

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/ipc"
)

// DefaultRegionPath is the fixed path shared by the Sim and the Core.
const DefaultRegionPath = "/dev/shm/aegis_bridge"

// Region is a memory-mapped byte buffer laid out per spec §6.
type Region struct {
	file   *os.File
	data   []byte
	width  int
	height int
	owner  bool // true if this side created and must initialize the region
}

// Open maps an existing region at path. The caller is the consumer (Core)
// side and must not create the file if missing.
func Open(path string, width, height int) (*Region, error) {
	size := ipc.RegionSize(width, height)

	f, err := os.OpenFile(path, os.O_RDWR, 0o660)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aerr.ErrFailedOpen, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap: %v", aerr.ErrFailedOpen, err)
	}

	r := &Region{file: f, data: data, width: width, height: height}
	if loadMagic(data) != ipc.Magic {
		r.Close()
		return nil, fmt.Errorf("%w", aerr.ErrBadMagic)
	}
	return r, nil
}

// Create maps a fresh region at path, truncating/extending the backing file
// to the exact size and writing the magic sentinel. The caller is the
// producer (Sim) side.
func Create(path string, width, height int) (*Region, error) {
	size := ipc.RegionSize(width, height)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o660)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aerr.ErrFailedOpen, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: truncate: %v", aerr.ErrFailedOpen, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap: %v", aerr.ErrFailedOpen, err)
	}

	r := &Region{file: f, data: data, width: width, height: height, owner: true}
	storeMagic(data, ipc.Magic)
	storeStateFlag(data, ipc.StateIdle)
	return r, nil
}

// Close unmaps the region and closes the backing file descriptor.
func (r *Region) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}
	if r.file != nil {
		if cerr := r.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (r *Region) videoBuf() []byte {
	return r.data[ipc.VideoOffset : ipc.VideoOffset+ipc.VideoRegionSize(r.width, r.height)]
}

func (r *Region) radarSlot(i int) []byte {
	off := ipc.RadarOffset + i*ipc.RadarPointSize
	return r.data[off : off+ipc.RadarPointSize]
}

func (r *Region) commandBuf() []byte {
	return r.data[ipc.CommandOffset : ipc.CommandOffset+ipc.CommandSize]
}
