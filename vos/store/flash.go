package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"sort"
)

// Flash is raw erase-before-write non-volatile memory (see hal.Flash).
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Image layout (little-endian), starting at offset 0:
//
//	u32 magic "PHKV"
//	u32 payload length
//	u32 crc32 (IEEE) of payload
//	payload: repeated { u16 keyLen, u32 valLen, key, value }
const (
	flashMagic      = 0x564b4850
	flashHeaderSize = 12
)

// FlashBackend stores the map as a single image at the start of a flash device.
// Every change rewrites the image; erased flash (all 0xFF) reads as an empty map.
type FlashBackend struct {
	flash Flash
	m     map[string][]byte
	used  uint32
}

func NewFlashBackend(f Flash) *FlashBackend {
	return &FlashBackend{flash: f, m: make(map[string][]byte)}
}

func (b *FlashBackend) Load(_ context.Context) (map[string][]byte, error) {
	if b.flash == nil || b.flash.SizeBytes() < flashHeaderSize {
		return nil, fmt.Errorf("flash: no device")
	}

	var hdr [flashHeaderSize]byte
	if _, err := b.flash.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("flash: read header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != flashMagic {
		return map[string][]byte{}, nil
	}

	n := binary.LittleEndian.Uint32(hdr[4:8])
	sum := binary.LittleEndian.Uint32(hdr[8:12])
	if n > b.flash.SizeBytes()-flashHeaderSize {
		return nil, fmt.Errorf("flash: %w: payload length %d", ErrCorrupt, n)
	}
	payload := make([]byte, n)
	if _, err := b.flash.ReadAt(payload, flashHeaderSize); err != nil {
		return nil, fmt.Errorf("flash: read payload: %w", err)
	}
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, fmt.Errorf("flash: %w: checksum mismatch", ErrCorrupt)
	}

	m, err := decodeRecords(payload)
	if err != nil {
		return nil, err
	}
	b.m = m
	b.used = flashHeaderSize + n

	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (b *FlashBackend) Put(_ context.Context, key string, value []byte) error {
	if len(key) > math.MaxUint16 {
		return fmt.Errorf("flash: %w: %d bytes", ErrKeyTooLong, len(key))
	}
	old, had := b.m[key]
	b.m[key] = value
	if err := b.flush(); err != nil {
		if had {
			b.m[key] = old
		} else {
			delete(b.m, key)
		}
		return err
	}
	return nil
}

func (b *FlashBackend) Remove(_ context.Context, key string) error {
	old, had := b.m[key]
	if !had {
		return nil
	}
	delete(b.m, key)
	if err := b.flush(); err != nil {
		b.m[key] = old
		return err
	}
	return nil
}

func (b *FlashBackend) Close() error { return nil }

func (b *FlashBackend) flush() error {
	payload := encodeRecords(b.m)
	size := uint32(flashHeaderSize + len(payload))
	if size > b.flash.SizeBytes() {
		return fmt.Errorf("flash: image of %d bytes exceeds device", size)
	}

	erase := size
	if b.used > erase {
		erase = b.used
	}
	block := b.flash.EraseBlockBytes()
	if block > 0 {
		erase = (erase + block - 1) / block * block
	}
	if erase > b.flash.SizeBytes() {
		erase = b.flash.SizeBytes()
	}
	if err := b.flash.Erase(0, erase); err != nil {
		return fmt.Errorf("flash: erase: %w", err)
	}

	img := make([]byte, size)
	binary.LittleEndian.PutUint32(img[0:4], flashMagic)
	binary.LittleEndian.PutUint32(img[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(img[8:12], crc32.ChecksumIEEE(payload))
	copy(img[flashHeaderSize:], payload)
	if _, err := b.flash.WriteAt(img, 0); err != nil {
		return fmt.Errorf("flash: write image: %w", err)
	}
	b.used = size
	return nil
}

func encodeRecords(m map[string][]byte) []byte {
	keys := make([]string, 0, len(m))
	n := 0
	for k, v := range m {
		keys = append(keys, k)
		n += 6 + len(k) + len(v)
	}
	sort.Strings(keys)

	buf := make([]byte, 0, n)
	for _, k := range keys {
		v := m[k]
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(k)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
		buf = append(buf, k...)
		buf = append(buf, v...)
	}
	return buf
}

func decodeRecords(b []byte) (map[string][]byte, error) {
	m := make(map[string][]byte)
	for len(b) > 0 {
		if len(b) < 6 {
			return nil, fmt.Errorf("flash: %w: short record header", ErrCorrupt)
		}
		kl := int(binary.LittleEndian.Uint16(b[0:2]))
		vl := int(binary.LittleEndian.Uint32(b[2:6]))
		b = b[6:]
		if kl+vl > len(b) {
			return nil, fmt.Errorf("flash: %w: record overruns image", ErrCorrupt)
		}
		k := string(b[:kl])
		m[k] = append([]byte{}, b[kl:kl+vl]...)
		b = b[kl+vl:]
	}
	return m, nil
}
