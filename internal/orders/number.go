package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// NumberGenerator builds human-readable order numbers of the form
// ORD-<unix seconds>-<6 hex chars>. Uniqueness is enforced by the store's
// unique index, not here.
type NumberGenerator struct {
	Now    func() time.Time
	Random io.Reader
}

func (g NumberGenerator) Next() (string, error) {
	now := g.Now
	if now == nil {
		now = time.Now
	}
	random := g.Random
	if random == nil {
		random = rand.Reader
	}

	suffix := make([]byte, 3)
	if _, err := io.ReadFull(random, suffix); err != nil {
		return "", fmt.Errorf("read order number entropy: %w", err)
	}
	return fmt.Sprintf("ORD-%d-%s", now().Unix(), hex.EncodeToString(suffix)), nil
}
