package cipher

// Single-character opcodes understood by the device firmware.
const (
	CmdLoadState   = "0"
	CmdEncrypt     = "1"
	CmdFetchResult = "2"
	CmdDecrypt     = "3"
)

const (
	PlaintextLen  = 16
	CiphertextLen = 32
)

// Operation selects the direction of a cipher run.
type Operation string

const (
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
)

func (op Operation) command() string {
	if op == OpDecrypt {
		return CmdDecrypt
	}

	return CmdEncrypt
}

// LoadStateCommand builds the command that loads payload into the device's state matrix.
func LoadStateCommand(payload string) string {
	return CmdLoadState + payload
}
