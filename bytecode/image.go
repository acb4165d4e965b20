// Package bytecode implements the EEL module image codec: an on-disk
// format of header, name table, constant pool, function table, and
// exports table, serialized endian-neutral with integers little-endian
// and IEEE 754 reals little-endian.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

var magic = [4]byte{'E', 'E', 'L', 0}

// Version identifies the compatible encoding range for a module image
//.
type Version struct {
	Major, Minor, Micro uint16
}

// CurrentVersion is the version this codec writes and reads.
var CurrentVersion = Version{Major: 1, Minor: 0, Micro: 0}

// CompatibleWith reports whether a module image at version v can be loaded
// by this codec: same major, minor no newer than this codec's.
func (v Version) CompatibleWith(want Version) bool {
	return v.Major == want.Major && v.Minor <= want.Minor
}

// ValueTag identifies a constant pool entry's kind in the serialized
// image. It mirrors values.Kind but is a stable wire enum independent of
// the in-memory representation.
type ValueTag byte

const (
	TagNil ValueTag = iota
	TagBool
	TagInt
	TagReal
	TagClassID
	TagStringRef // payload is an index into the name table
	TagFuncRef   // payload (Int) is an index into the function table
)

// ConstEntry is one constant-pool slot. For TagStringRef
// entries, NameIndex selects the interned string from the name table.
type ConstEntry struct {
	Tag       ValueTag
	Int       int32
	Real      float64
	NameIndex uint32
}

// FuncEntry is one function-table slot.
type FuncEntry struct {
	NameIndex    uint32
	ReqArgs      uint16
	OptArgs      uint16
	TupArg       uint16
	Results      uint16
	NumRegisters uint32
	Code         []byte // already-encoded instruction stream, see opcodes.EncodeAll
}

// ExportEntry maps an exported symbol name to a function-table index
//.
type ExportEntry struct {
	NameIndex uint32
	FuncIndex uint32
}

// Image is the fully-decoded in-memory form of a serialized module.
type Image struct {
	Version   Version
	Names     []string
	Constants []ConstEntry
	Functions []FuncEntry
	Exports   []ExportEntry
}

// Encode serializes img into its on-disk byte representation.
func Encode(img *Image) []byte {
	var buf []byte
	buf = append(buf, magic[:]...)
	buf = appendU16(buf, img.Version.Major)
	buf = appendU16(buf, img.Version.Minor)
	buf = appendU16(buf, img.Version.Micro)

	buf = appendU32(buf, uint32(len(img.Names)))
	for _, name := range img.Names {
		b := []byte(name)
		buf = appendU32(buf, uint32(len(b)))
		buf = append(buf, b...)
	}

	buf = appendU32(buf, uint32(len(img.Constants)))
	for _, c := range img.Constants {
		buf = append(buf, byte(c.Tag))
		switch c.Tag {
		case TagNil:
		case TagBool, TagInt, TagClassID, TagFuncRef:
			buf = appendU32(buf, uint32(c.Int))
		case TagReal:
			buf = appendU64(buf, math.Float64bits(c.Real))
		case TagStringRef:
			buf = appendU32(buf, c.NameIndex)
		}
	}

	buf = appendU32(buf, uint32(len(img.Functions)))
	for _, f := range img.Functions {
		buf = appendU32(buf, f.NameIndex)
		buf = appendU16(buf, f.ReqArgs)
		buf = appendU16(buf, f.OptArgs)
		buf = appendU16(buf, f.TupArg)
		buf = appendU16(buf, f.Results)
		buf = appendU32(buf, f.NumRegisters)
		buf = appendU32(buf, uint32(len(f.Code)))
		buf = append(buf, f.Code...)
	}

	buf = appendU32(buf, uint32(len(img.Exports)))
	for _, e := range img.Exports {
		buf = appendU32(buf, e.NameIndex)
		buf = appendU32(buf, e.FuncIndex)
	}
	return buf
}

// Decode parses a module image previously produced by Encode.
func Decode(buf []byte) (*Image, error) {
	r := &reader{buf: buf}
	var m [4]byte
	if !r.readBytes(m[:]) || m != magic {
		return nil, fmt.Errorf("bytecode: bad magic")
	}
	img := &Image{}
	var ok bool
	img.Version.Major, ok = r.u16()
	if !ok {
		return nil, errShort
	}
	img.Version.Minor, _ = r.u16()
	img.Version.Micro, _ = r.u16()

	n, _ := r.u32()
	img.Names = make([]string, n)
	for i := range img.Names {
		l, ok := r.u32()
		if !ok {
			return nil, errShort
		}
		b := make([]byte, l)
		if !r.readBytes(b) {
			return nil, errShort
		}
		img.Names[i] = string(b)
	}

	n, _ = r.u32()
	img.Constants = make([]ConstEntry, n)
	for i := range img.Constants {
		tagByte, ok := r.u8()
		if !ok {
			return nil, errShort
		}
		c := ConstEntry{Tag: ValueTag(tagByte)}
		switch c.Tag {
		case TagNil:
		case TagBool, TagInt, TagClassID, TagFuncRef:
			v, ok := r.u32()
			if !ok {
				return nil, errShort
			}
			c.Int = int32(v)
		case TagReal:
			v, ok := r.u64()
			if !ok {
				return nil, errShort
			}
			c.Real = math.Float64frombits(v)
		case TagStringRef:
			v, ok := r.u32()
			if !ok {
				return nil, errShort
			}
			c.NameIndex = v
		default:
			return nil, fmt.Errorf("bytecode: unknown constant tag %d", tagByte)
		}
		img.Constants[i] = c
	}

	n, _ = r.u32()
	img.Functions = make([]FuncEntry, n)
	for i := range img.Functions {
		f := FuncEntry{}
		var ok bool
		if f.NameIndex, ok = r.u32(); !ok {
			return nil, errShort
		}
		if f.ReqArgs, ok = r.u16(); !ok {
			return nil, errShort
		}
		if f.OptArgs, ok = r.u16(); !ok {
			return nil, errShort
		}
		if f.TupArg, ok = r.u16(); !ok {
			return nil, errShort
		}
		if f.Results, ok = r.u16(); !ok {
			return nil, errShort
		}
		if f.NumRegisters, ok = r.u32(); !ok {
			return nil, errShort
		}
		codeLen, ok := r.u32()
		if !ok {
			return nil, errShort
		}
		code := make([]byte, codeLen)
		if !r.readBytes(code) {
			return nil, errShort
		}
		f.Code = code
		img.Functions[i] = f
	}

	n, _ = r.u32()
	img.Exports = make([]ExportEntry, n)
	for i := range img.Exports {
		var ok bool
		if img.Exports[i].NameIndex, ok = r.u32(); !ok {
			return nil, errShort
		}
		if img.Exports[i].FuncIndex, ok = r.u32(); !ok {
			return nil, errShort
		}
	}
	return img, nil
}

var errShort = fmt.Errorf("bytecode: truncated module image")

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readBytes(dst []byte) bool {
	if r.pos+len(dst) > len(r.buf) {
		return false
	}
	copy(dst, r.buf[r.pos:])
	r.pos += len(dst)
	return true
}

func (r *reader) u8() (byte, bool) {
	if r.pos+1 > len(r.buf) {
		return 0, false
	}
	v := r.buf[r.pos]
	r.pos++
	return v, true
}

func (r *reader) u16() (uint16, bool) {
	if r.pos+2 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, true
}

func (r *reader) u32() (uint32, bool) {
	if r.pos+4 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, true
}

func (r *reader) u64() (uint64, bool) {
	if r.pos+8 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, true
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
