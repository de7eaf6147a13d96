package candymachine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrShortData is returned when account data ends before a field.
var ErrShortData = errors.New("account data too short")

// reader walks borsh-encoded account data.
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte, off int) *reader {
	return &reader{data: data, off: off}
}

func (r *reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortData, n, r.off, len(r.data))
	}
	return nil
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) bool() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

// pubkey reads 32 bytes and returns them base58-encoded.
func (r *reader) pubkey() (string, error) {
	b, err := r.bytes(32)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// string reads a u32-length-prefixed string, trimming NUL padding.
func (r *reader) string() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

func (r *reader) skipString() error {
	_, err := r.string()
	return err
}

// option reads a borsh Option tag.
func (r *reader) option() (bool, error) {
	tag, err := r.u8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid option tag %d at offset %d", tag, r.off-1)
	}
}

// skipVec skips a u32-length-prefixed vector of fixed-size elements.
func (r *reader) skipVec(elemSize int) error {
	n, err := r.u32()
	if err != nil {
		return err
	}
	return r.skip(int(n) * elemSize)
}
