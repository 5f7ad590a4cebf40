package ledger

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const selectorSize = 4

// ErrorTable maps 4-byte revert selectors to symbolic error names. The
// selector for a signature is the first four bytes of its keccak-256
// hash, the same derivation the contract compiler uses.
type ErrorTable struct {
	selectors map[[selectorSize]byte]string
}

func NewErrorTable(signatures ...string) *ErrorTable {
	table := &ErrorTable{selectors: map[[selectorSize]byte]string{}}
	for _, signature := range signatures {
		table.Register(signature)
	}
	return table
}

// Register adds an error signature of the form "Name(type1,type2)".
// Blank signatures are ignored.
func (t *ErrorTable) Register(signature string) {
	if t == nil {
		return
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return
	}
	if t.selectors == nil {
		t.selectors = map[[selectorSize]byte]string{}
	}
	t.selectors[errorSelector(signature)] = signatureName(signature)
}

// Lookup resolves 0x-prefixed revert data to a symbolic name by its
// leading selector. Data shorter than four bytes never matches.
func (t *ErrorTable) Lookup(revertData string) (string, bool) {
	if t == nil || len(t.selectors) == 0 {
		return "", false
	}
	trimmed := strings.TrimSpace(revertData)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) < selectorSize {
		return "", false
	}
	var selector [selectorSize]byte
	copy(selector[:], decoded[:selectorSize])
	name, ok := t.selectors[selector]
	return name, ok
}

// DefaultErrorTable carries the swarm coordinator contract's custom
// errors. Callers with a different target contract build their own.
func DefaultErrorTable() *ErrorTable {
	return NewErrorTable(
		"PeerIdAlreadyRegistered()",
		"RewardAlreadySubmitted()",
		"WinnerAlreadyVoted()",
		"StageOutOfBounds()",
		"RoundNotActive()",
	)
}

func errorSelector(signature string) [selectorSize]byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	digest := hash.Sum(nil)
	var selector [selectorSize]byte
	copy(selector[:], digest[:selectorSize])
	return selector
}

func signatureName(signature string) string {
	if index := strings.IndexByte(signature, '('); index > 0 {
		return signature[:index]
	}
	return signature
}
