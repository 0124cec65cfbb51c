package sync

import (
	"github.com/pegwheel/pegwheel/pkg/game"
	"github.com/pegwheel/pegwheel/pkg/game/types"
)

// Reconciler applies an inbound remote snapshot to the local session.
// Swapping the implementation (version vectors, operational transforms)
// requires no change to the action layer.
type Reconciler interface {
	Reconcile(session *game.Session, doc *types.GameDocument)
}

var _ Reconciler = LastWriterWins{}

// LastWriterWins overwrites players, rules, and totalSlots wholesale at
// document granularity. Local optimistic writes racing an inbound
// snapshot are not arbitrated; the later write simply wins. The local
// selection cursor is never touched.
type LastWriterWins struct{}

func (LastWriterWins) Reconcile(session *game.Session, doc *types.GameDocument) {
	session.Overwrite(doc.Players, doc.Rules, doc.TotalSlots)
}
