// Package secrets retrieves the process-wide secret material: the password
// hash cost and the token-signing key.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avicente/cardholder/internal/common"
)

// Bundle is the secret material every credential operation depends on.
// HashCost keeps the raw secret value: it may be a numeric work factor or a
// pre-formatted hash (see auth.HashCost).
type Bundle struct {
	HashCost   string
	SigningKey string
}

// Provider fetches the secret bundle. Implementations must be safe for
// concurrent use.
type Provider interface {
	Fetch(ctx context.Context) (*Bundle, error)
}

// secretDoc mirrors the JSON document stored in the secret service.
// BCRYPT_SALT is historically either a number or a string.
type secretDoc struct {
	HashCost   any    `json:"BCRYPT_SALT"`
	SigningKey string `json:"JWT_SECRET"`
}

func parseBundle(raw []byte) (*Bundle, error) {
	var doc secretDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed secret document: %v", common.ErrorDependency, err)
	}

	b := &Bundle{SigningKey: doc.SigningKey}
	switch v := doc.HashCost.(type) {
	case nil:
	case string:
		b.HashCost = v
	case float64:
		b.HashCost = fmt.Sprintf("%d", int(v))
	default:
		return nil, fmt.Errorf("%w: unexpected BCRYPT_SALT type %T", common.ErrorDependency, v)
	}
	return b, nil
}
