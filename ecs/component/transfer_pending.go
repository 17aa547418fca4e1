package component

import "github.com/milk9111/tileworlds/common"

// TransferPending marks an entity whose world switch has been published but
// not yet applied. Further door contacts are ignored until it is removed.
type TransferPending struct {
	WorldID common.WorldID
}

var TransferPendingComponent = NewComponent[TransferPending]()
