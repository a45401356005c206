package script

import "github.com/pkg/errors"

const (
	DefaultMaxNumSize = 4

	MaxInt32 = 1<<31 - 1
	MinInt32 = -1 << 31
)

// ScriptNum is the minimally encoded little endian number format the
// script machine uses. Block heights in coinbase scriptSigs and the
// extra nonce counter serialize through it.
type ScriptNum struct {
	Value int64
}

func NewScriptNum(v int64) *ScriptNum {
	return &ScriptNum{Value: v}
}

// GetScriptNum decodes vch, rejecting encodings longer than maxNumSize
// and, when requireMinimal is set, any non minimal encoding.
func GetScriptNum(vch []byte, requireMinimal bool, maxNumSize int) (*ScriptNum, error) {
	vchLen := len(vch)
	if vchLen > maxNumSize {
		return NewScriptNum(0), errors.New("script number overflow")
	}
	if requireMinimal && vchLen > 0 {
		// The most significant byte must carry payload bits beyond the
		// sign bit, except when the sign bit would otherwise collide
		// with the previous byte's high bit (e.g. +-255 as 0xff00 and
		// 0xff80).
		if vch[vchLen-1]&0x7f == 0 {
			if vchLen == 1 || (vch[vchLen-2]&0x80) == 0 {
				return NewScriptNum(0), errors.New("non-minimally encoded script number")
			}
		}
	}

	if vchLen == 0 {
		return NewScriptNum(0), nil
	}

	var v int64
	for i := 0; i < vchLen; i++ {
		v |= int64(vch[i]) << uint8(8*i)
	}
	if vch[vchLen-1]&0x80 != 0 {
		v &= ^(int64(0x80) << uint8(8*(vchLen-1)))
		return NewScriptNum(-v), nil
	}
	return NewScriptNum(v), nil
}

func (n *ScriptNum) Int32() int32 {
	if n.Value > MaxInt32 {
		return MaxInt32
	}
	if n.Value < MinInt32 {
		return MinInt32
	}
	return int32(n.Value)
}

func (n *ScriptNum) Serialize() (bytes []byte) {
	if n.Value == 0 {
		return nil
	}
	negative := n.Value < 0
	absoluteValue := n.Value
	if negative {
		absoluteValue = -n.Value
	}
	bytes = make([]byte, 0, 9)
	for absoluteValue > 0 {
		bytes = append(bytes, byte(absoluteValue&0xff))
		absoluteValue >>= 8
	}

	//    - If the most significant byte is >= 0x80 and the value is positive,
	//    push a new zero-byte to make the significant byte < 0x80 again.

	//    - If the most significant byte is >= 0x80 and the value is negative,
	//    push a new 0x80 byte that will be popped off when converting to an
	//    integral.

	//    - If the most significant byte is < 0x80 and the value is negative,
	//    add 0x80 to it, since it will be subtracted and interpreted as a
	//    negative when converting to an integral.

	if bytes[len(bytes)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if negative {
			extraByte = 0x80
		}
		bytes = append(bytes, extraByte)
	} else if negative {
		bytes[len(bytes)-1] |= 0x80
	}
	return
}
