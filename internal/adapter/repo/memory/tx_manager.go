package memory

import (
	"context"
	"sync"
)

// TxManager serializes transactions against each other. Individual repo
// operations remain atomic under the store mutex, so conditional writes
// keep their compare-and-set semantics across concurrent callers.
type TxManager struct {
	store *Store
	txMu  *sync.Mutex
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store, txMu: &sync.Mutex{}}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()
	return fn(ctx)
}
