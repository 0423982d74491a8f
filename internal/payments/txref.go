package payments

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TxRefGenerator struct {
	namespace string
	now       func() time.Time
}

func NewTxRefGenerator(namespace string) *TxRefGenerator {
	return &TxRefGenerator{namespace: namespace, now: time.Now}
}

// Generate returns NAMESPACE-rideID-unixMillis-nonce. The nonce keeps two
// attempts for the same ride apart even inside one millisecond.
func (g *TxRefGenerator) Generate(rideID string) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	return fmt.Sprintf(
		"%s-%s-%d-%s",
		g.namespace,
		rideID,
		g.now().UnixMilli(),
		nonce,
	)
}
