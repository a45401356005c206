package opcodes

// ParsedOpCode is one decoded script element: the opcode byte, the
// declared push length and the pushed bytes (empty for non-push ops).
type ParsedOpCode struct {
	OpValue byte

	Length int
	Data   []byte
}

func NewParsedOpCode(opValue byte, length int, data []byte) *ParsedOpCode {
	cloned := make([]byte, len(data))
	copy(cloned, data)
	return &ParsedOpCode{OpValue: opValue, Length: length, Data: cloned}
}

// CheckCompactDataPush reports whether the push uses the smallest
// possible push opcode for its data length.
func (poc *ParsedOpCode) CheckCompactDataPush() bool {
	dataLen := len(poc.Data)
	opcode := poc.OpValue
	if dataLen <= 75 {
		return int(opcode) == dataLen
	}
	if dataLen <= 255 {
		return opcode == OP_PUSHDATA1
	}
	if dataLen <= 65535 {
		return opcode == OP_PUSHDATA2
	}
	return opcode == OP_PUSHDATA4
}

// CheckMinimalDataPush additionally requires small numbers to use the
// dedicated OP_N opcodes.
func (poc *ParsedOpCode) CheckMinimalDataPush() bool {
	data := poc.Data
	dataLen := len(data)
	opcode := poc.OpValue
	if dataLen == 0 {
		return opcode == OP_0
	}
	if dataLen == 1 {
		if data[0] >= 1 && data[0] <= 16 {
			return opcode == OP_1+data[0]-1
		}
		if data[0] == 0x81 {
			return opcode == OP_1NEGATE
		}
	}
	return poc.CheckCompactDataPush()
}
