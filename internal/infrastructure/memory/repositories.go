package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// ─── Saldos ─────────────────────────────────────────────────────────────────

type balanceRepo struct{ s *Store }

var _ repository.BalanceRepository = balanceRepo{}

func (r balanceRepo) Get(_ context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[balanceKey{loc, productID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// GetForUpdate no necesita bloqueo propio: las transacciones ya son exclusivas.
func (r balanceRepo) GetForUpdate(ctx context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error) {
	return r.Get(ctx, loc, productID)
}

func (r balanceRepo) Credit(_ context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := balanceKey{ch.Location, ch.ProductID}
	b, ok := r.s.balances[k]
	if !ok {
		b = newBalance(ch)
	}
	b.Quantity = b.Quantity.Add(ch.Quantity)
	stamp(&b, ch)
	r.s.balances[k] = b
	return &b, nil
}

func (r balanceRepo) Debit(_ context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := balanceKey{ch.Location, ch.ProductID}
	b, ok := r.s.balances[k]
	if !ok || b.Quantity.LessThan(ch.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	b.Quantity = b.Quantity.Sub(ch.Quantity)
	stamp(&b, ch)
	r.s.balances[k] = b
	return &b, nil
}

func (r balanceRepo) Set(_ context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	if ch.Quantity.IsNegative() {
		return nil, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := balanceKey{ch.Location, ch.ProductID}
	b, ok := r.s.balances[k]
	if !ok {
		b = newBalance(ch)
	}
	b.Quantity = ch.Quantity
	stamp(&b, ch)
	r.s.balances[k] = b
	return &b, nil
}

func (r balanceRepo) ListByLocation(_ context.Context, loc entity.LocationRef, onlyPositive bool) ([]*entity.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Balance
	for k, b := range r.s.balances {
		if k.loc != loc || (onlyPositive && !b.Quantity.IsPositive()) {
			continue
		}
		list = append(list, &b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r balanceRepo) ListAll(_ context.Context) ([]*entity.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Balance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		list = append(list, &b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Location != list[j].Location {
			return list[i].Location.Less(list[j].Location)
		}
		return list[i].ProductID < list[j].ProductID
	})
	return list, nil
}

func newBalance(ch entity.BalanceChange) entity.Balance {
	return entity.Balance{
		Location:   ch.Location,
		ProductID:  ch.ProductID,
		CategoryID: ch.CategoryID,
		Quantity:   decimal.Zero,
		CreatedAt:  ch.At,
	}
}

func stamp(b *entity.Balance, ch entity.BalanceChange) {
	b.LastUpdatedBy = ch.ActorID
	b.LastTransactionType = ch.Label
	b.UpdatedAt = ch.At
}

// ─── Kardex ─────────────────────────────────────────────────────────────────

type ledgerRepo struct{ s *Store }

var _ repository.LedgerRepository = ledgerRepo{}

func (r ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	if !e.Consistent() {
		return fmt.Errorf("%w: %s %s previo %s cantidad %s saldo %s", domain.ErrLedgerMismatch,
			e.Type, e.Direction, e.PreviousQuantity, e.Quantity, e.BalanceQuantity)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.s.seq++
	e.Seq = r.s.seq
	r.s.ledger = append(r.s.ledger, cloneEntry(e))
	return nil
}

// List más recientes primero; Limit 0 no limita. To es exclusivo.
func (r ledgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	var list []*entity.LedgerEntry
	for i := range r.s.ledger {
		e := &r.s.ledger[i]
		if matches(e, f) {
			c := cloneEntry(e)
			list = append(list, &c)
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Time.Equal(list[j].Time) {
			return list[i].Time.After(list[j].Time)
		}
		return list[i].Seq > list[j].Seq
	})
	return paginate(list, f.Limit, f.Offset), nil
}

func (r ledgerRepo) ListActivityDates(_ context.Context, loc entity.LocationRef, limit, offset int) ([]time.Time, error) {
	r.s.mu.RLock()
	seen := map[time.Time]struct{}{}
	var days []time.Time
	for i := range r.s.ledger {
		e := &r.s.ledger[i]
		if e.Location != loc {
			continue
		}
		t := e.Time.UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return paginate(days, limit, offset), nil
}

func (r ledgerRepo) ListAll(_ context.Context) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.LedgerEntry, 0, len(r.s.ledger))
	for i := range r.s.ledger {
		c := cloneEntry(&r.s.ledger[i])
		list = append(list, &c)
	}
	return list, nil
}

func matches(e *entity.LedgerEntry, f repository.LedgerFilter) bool {
	if f.Location != nil && e.Location != *f.Location {
		return false
	}
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && e.Time.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.Time.Before(*f.To) {
		return false
	}
	return true
}

func cloneEntry(e *entity.LedgerEntry) entity.LedgerEntry {
	c := *e
	if e.Counterpart != nil {
		cp := *e.Counterpart
		c.Counterpart = &cp
	}
	return c
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ─── Datos de referencia ────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			list = append(list, &p)
		}
	}
	return list, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r categoryRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Category
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			list = append(list, &c)
		}
	}
	return list, nil
}

type locationRepo struct{ s *Store }

func (r locationRepo) GetProject(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r locationRepo) GetWarehouse(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r locationRepo) Name(_ context.Context, loc entity.LocationRef) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	switch loc.Kind {
	case entity.LocationProject:
		if p, ok := r.s.projects[loc.ID]; ok {
			return p.Name, nil
		}
	case entity.LocationWarehouse:
		if w, ok := r.s.warehouses[loc.ID]; ok {
			return w.Name, nil
		}
	}
	return "", domain.ErrNotFound
}

// ─── Órdenes de compra ──────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

var _ repository.PurchaseOrderRepository = orderRepo{}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) GetDetailForUpdate(_ context.Context, detailID string) (*entity.PurchaseOrderDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.details[detailID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r orderRepo) MarkDetailDelivered(_ context.Context, detailID, remarks string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.details[detailID]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status == entity.OrderDetailDelivered {
		return domain.ErrConflict
	}
	d.Status = entity.OrderDetailDelivered
	if remarks != "" {
		d.Remarks = remarks
	}
	d.DeliveryDate = &at
	d.UpdatedAt = at
	r.s.details[detailID] = d
	return nil
}

func (r orderRepo) CountPendingDetails(_ context.Context, orderID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, d := range r.s.details {
		if d.PurchaseOrderID == orderID && d.Status != entity.OrderDetailDelivered {
			n++
		}
	}
	return n, nil
}

func (r orderRepo) UpdateStatus(_ context.Context, orderID, status string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	r.s.orders[orderID] = o
	return nil
}

// ─── Conciliación ───────────────────────────────────────────────────────────

type findingRepo struct{ s *Store }

func (r findingRepo) SaveFindings(_ context.Context, findings []entity.ReconciliationFinding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.findings = append(r.s.findings, findings...)
	return nil
}

func (r findingRepo) ListByRun(_ context.Context, runID string) ([]entity.ReconciliationFinding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []entity.ReconciliationFinding
	for _, f := range r.s.findings {
		if f.RunID == runID {
			list = append(list, f)
		}
	}
	return list, nil
}
