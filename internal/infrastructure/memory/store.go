// Package memory implementa todos los puertos de repositorio del kardex en memoria.
// Se usa en desarrollo local (STORAGE_DRIVER=memory) y en las pruebas.
// Las transacciones se serializan con un mutex y el Rollback restaura una copia del estado.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ stock.TxRunner = (*Store)(nil)

type balanceKey struct {
	loc       entity.LocationRef
	productID string
}

// Store almacenamiento en memoria. El valor cero no es usable; usar NewStore.
type Store struct {
	txMu sync.Mutex   // una transacción a la vez
	mu   sync.RWMutex // protege los mapas

	projects   map[string]entity.Project
	warehouses map[string]entity.Warehouse
	categories map[string]entity.Category
	products   map[string]entity.Product

	balances map[balanceKey]entity.Balance
	ledger   []entity.LedgerEntry
	seq      int64

	orders   map[string]entity.PurchaseOrder
	details  map[string]entity.PurchaseOrderDetail
	findings []entity.ReconciliationFinding
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		projects:   map[string]entity.Project{},
		warehouses: map[string]entity.Warehouse{},
		categories: map[string]entity.Category{},
		products:   map[string]entity.Product{},
		balances:   map[balanceKey]entity.Balance{},
		orders:     map[string]entity.PurchaseOrder{},
		details:    map[string]entity.PurchaseOrderDetail{},
	}
}

// Balances saldos (fuera de transacción, para lecturas).
func (s *Store) Balances() repository.BalanceRepository {
	return balanceRepo{s}
}

// Ledger kardex (fuera de transacción, para lecturas).
func (s *Store) Ledger() repository.LedgerRepository {
	return ledgerRepo{s}
}

func (s *Store) Products() repository.ProductRepository {
	return productRepo{s}
}

func (s *Store) Categories() repository.CategoryRepository {
	return categoryRepo{s}
}

func (s *Store) Locations() repository.LocationRepository {
	return locationRepo{s}
}

func (s *Store) Orders() repository.PurchaseOrderRepository {
	return orderRepo{s}
}

func (s *Store) Findings() repository.ReconciliationRepository {
	return findingRepo{s}
}

// Run ejecuta fn de forma exclusiva; si fn falla (o hace panic) el estado vuelve al de antes.
func (s *Store) Run(ctx context.Context, fn func(
	balances repository.BalanceRepository,
	ledger repository.LedgerRepository,
	orders repository.PurchaseOrderRepository,
) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(balanceRepo{s}, ledgerRepo{s}, orderRepo{s}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

type snapshot struct {
	balances map[balanceKey]entity.Balance
	ledger   int
	seq      int64
	orders   map[string]entity.PurchaseOrder
	details  map[string]entity.PurchaseOrderDetail
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		balances: make(map[balanceKey]entity.Balance, len(s.balances)),
		ledger:   len(s.ledger),
		seq:      s.seq,
		orders:   make(map[string]entity.PurchaseOrder, len(s.orders)),
		details:  make(map[string]entity.PurchaseOrderDetail, len(s.details)),
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.details {
		snap.details[k] = v
	}
	return snap
}

// restore descarta lo escrito desde el snapshot. El kardex sólo crece, basta truncarlo.
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = snap.balances
	s.ledger = s.ledger[:snap.ledger]
	s.seq = snap.seq
	s.orders = snap.orders
	s.details = snap.details
}
