package util

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadElement reads the next little endian fixed-size value from r into
// the pointer element.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int32(rv)
		return nil
	case *uint32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *int64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int64(rv)
		return nil
	case *uint64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *bool:
		rv, err := BinarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv != 0
		return nil
	case *Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	return fmt.Errorf("unhandled element type %T", element)
}

// ReadElements reads multiple elements from r in order.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := ReadElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

// WriteElement writes element to w in little endian. Fixed-size values
// may be passed by value or through a pointer.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(e))
	case *int32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(*e))
	case uint32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, e)
	case *uint32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, *e)
	case int64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(e))
	case *int64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(*e))
	case uint64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, e)
	case *uint64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, *e)
	case bool:
		if e {
			return BinarySerializer.PutUint8(w, 1)
		}
		return BinarySerializer.PutUint8(w, 0)
	case *Hash:
		_, err := w.Write(e[:])
		return err
	case Hash:
		_, err := w.Write(e[:])
		return err
	}

	return fmt.Errorf("unhandled element type %T", element)
}

// WriteElements writes multiple elements to w in order.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := WriteElement(w, element); err != nil {
			return err
		}
	}
	return nil
}
