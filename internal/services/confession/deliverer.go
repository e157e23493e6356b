package confession

import (
	"context"

	"github.com/darktohka/confessions-bot/internal/domain/model"
)

// Deliverer posts published confessions to their community destination.
// Implementations live in the platform bindings; the pipeline itself never
// talks to the network, and delivery happens only after a Published
// disposition, outside the store lock. A delivery failure does not roll
// back audit or cooldown state.
type Deliverer interface {
	Deliver(ctx context.Context, dest model.Destination, rendered model.RenderedConfession) (messageID int64, err error)
}
