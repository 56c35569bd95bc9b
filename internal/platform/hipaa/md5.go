package hipaa

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// MD5Hasher replaces identifier values with their hex MD5 digest. It is a
// pseudonymisation step for synthetic data, not encryption.
type MD5Hasher struct{}

// HashValue digests v. Strings are hashed as-is, other values through their
// JSON encoding. Nil stays nil so absent values remain absent.
func (MD5Hasher) HashValue(v any) any {
	if v == nil {
		return nil
	}
	var text string
	switch tv := v.(type) {
	case string:
		text = tv
	default:
		b, err := json.Marshal(tv)
		if err != nil {
			text = fmt.Sprint(tv)
		} else {
			text = string(b)
		}
	}
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsDigest reports whether v already looks like a hex MD5 digest.
func IsDigest(v any) bool {
	s, ok := v.(string)
	if !ok || len(s) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// HashFields returns a copy of records with the listed columns hashed.
// Values that are already digests are kept, so hashing twice is a no-op. The
// input records are not modified.
func (h MD5Hasher) HashFields(records contract.RecordSet, fields []string) contract.RecordSet {
	out := make(contract.RecordSet, len(records))
	for i, rec := range records {
		cp := make(contract.Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		for _, f := range fields {
			if v, ok := cp[f]; ok && !IsDigest(v) {
				cp[f] = h.HashValue(v)
			}
		}
		out[i] = cp
	}
	return out
}
