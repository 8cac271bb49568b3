package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// DateLayout formato de fecha del registro diario (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// QueryUseCase lecturas de saldos y kardex. No muta estado.
type QueryUseCase struct {
	deps Deps
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(deps Deps) *QueryUseCase {
	return &QueryUseCase{deps: deps.withDefaults()}
}

// GetBalance saldo actual; una fila inexistente se informa como cantidad 0.
func (uc *QueryUseCase) GetBalance(ctx context.Context, loc entity.LocationRef, productID string) (*dto.BalanceResponse, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es requerido")
	}
	locName, err := uc.deps.lookupLocation(ctx, "location", loc)
	if err != nil {
		return nil, err
	}
	b, err := uc.deps.Balances.Get(ctx, loc, productID)
	if err != nil {
		return nil, err
	}
	out := dto.ToBalanceResponse(b)
	if b == nil {
		out.Location = loc
		out.ProductID = productID
	}
	out.LocationName = locName

	n := uc.newNames()
	if err := n.load(ctx, []string{productID}, []string{out.CategoryID}); err != nil {
		return nil, err
	}
	name, known := n.products[productID]
	if !known && b == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	out.ProductName = name
	if p, ok := n.productCategory[productID]; ok && out.CategoryID == "" {
		out.CategoryID = p
	}
	out.CategoryName = n.categories[out.CategoryID]
	return &out, nil
}

// ListBalances saldos de una ubicación; onlyPositive oculta los productos agotados.
func (uc *QueryUseCase) ListBalances(ctx context.Context, loc entity.LocationRef, onlyPositive bool) (*dto.BalanceListResponse, error) {
	locName, err := uc.deps.lookupLocation(ctx, "location", loc)
	if err != nil {
		return nil, err
	}
	list, err := uc.deps.Balances.ListByLocation(ctx, loc, onlyPositive)
	if err != nil {
		return nil, err
	}
	productIDs := make([]string, 0, len(list))
	categoryIDs := make([]string, 0, len(list))
	for _, b := range list {
		productIDs = append(productIDs, b.ProductID)
		categoryIDs = append(categoryIDs, b.CategoryID)
	}
	n := uc.newNames()
	if err := n.load(ctx, productIDs, categoryIDs); err != nil {
		return nil, err
	}

	items := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		r := dto.ToBalanceResponse(b)
		r.LocationName = locName
		r.ProductName = n.products[b.ProductID]
		r.CategoryName = n.categories[b.CategoryID]
		items = append(items, r)
	}
	return &dto.BalanceListResponse{Location: loc, Items: items}, nil
}

// History historial del kardex con filtros y paginación, más recientes primero.
func (uc *QueryUseCase) History(ctx context.Context, f repository.LedgerFilter) (*dto.LedgerListResponse, error) {
	if f.Location != nil && !f.Location.Valid() {
		return nil, domain.NewValidationError("location", "ubicación inválida (kind project|warehouse e id)")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	entries, err := uc.deps.Ledger.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := uc.describe(ctx, entries)
	if err != nil {
		return nil, err
	}
	return &dto.LedgerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ExportMaxRows tope de asientos en una exportación.
const ExportMaxRows = 10000

// Export historial filtrado sin paginación (hasta ExportMaxRows), para la descarga en Excel.
func (uc *QueryUseCase) Export(ctx context.Context, f repository.LedgerFilter) ([]dto.LedgerEntryResponse, error) {
	if f.Location != nil && !f.Location.Valid() {
		return nil, domain.NewValidationError("location", "ubicación inválida (kind project|warehouse e id)")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	f.Limit, f.Offset = ExportMaxRows, 0
	entries, err := uc.deps.Ledger.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return uc.describe(ctx, entries)
}

// ActivityDates días con movimientos en la ubicación (dd/mm/yyyy), más recientes primero.
func (uc *QueryUseCase) ActivityDates(ctx context.Context, loc entity.LocationRef, page dto.PageRequest) (*dto.ActivityDatesResponse, error) {
	if _, err := uc.deps.lookupLocation(ctx, "location", loc); err != nil {
		return nil, err
	}
	page.DefaultPage()
	days, err := uc.deps.Ledger.ListActivityDates(ctx, loc, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Format(DateLayout))
	}
	return &dto.ActivityDatesResponse{
		Dates: dates,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// DailyLog movimientos de un día: material usado (consumo y bajas manuales) y traslados,
// cada traslado con su sentido y la otra ubicación tomados de los campos estructurados del asiento.
func (uc *QueryUseCase) DailyLog(ctx context.Context, loc entity.LocationRef, day time.Time) (*dto.DailyLogResponse, error) {
	if _, err := uc.deps.lookupLocation(ctx, "location", loc); err != nil {
		return nil, err
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	entries, err := uc.deps.Ledger.List(ctx, repository.LedgerFilter{
		Location: &loc,
		Types: []string{
			entity.TxTypeTakenForConstruction,
			entity.TxTypeManualAdjustmentOut,
			entity.TxTypeTransferOut,
			entity.TxTypeTransferIn,
		},
		From: &from,
		To:   &to,
	})
	if err != nil {
		return nil, err
	}

	n := uc.newNames()
	if err := n.loadEntries(ctx, entries); err != nil {
		return nil, err
	}
	out := &dto.DailyLogResponse{
		Date:        from.Format(DateLayout),
		Used:        []dto.DailyLogItem{},
		Transferred: []dto.DailyLogItem{},
	}
	for _, e := range entries {
		item := dto.DailyLogItem{
			Category: n.categories[e.CategoryID],
			Product:  n.products[e.ProductID],
			Quantity: e.Quantity,
			Type:     e.Type,
			Remarks:  e.Remarks,
		}
		switch {
		case entity.IsUsage(e.Type):
			out.Used = append(out.Used, item)
		case entity.IsTransfer(e.Type):
			item.TransferType = "Received"
			if e.Direction == entity.DirectionOut {
				item.TransferType = "Sent"
			}
			if e.Counterpart != nil {
				if item.TransferLocation, err = n.location(ctx, *e.Counterpart); err != nil {
					return nil, err
				}
			}
			out.Transferred = append(out.Transferred, item)
		}
	}
	return out, nil
}

// ParseDay interpreta una fecha dd/mm/yyyy del registro diario.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewValidationError("date", "formato esperado dd/mm/yyyy")
	}
	return d, nil
}

func (uc *QueryUseCase) describe(ctx context.Context, entries []*entity.LedgerEntry) ([]dto.LedgerEntryResponse, error) {
	n := uc.newNames()
	if err := n.loadEntries(ctx, entries); err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		r := dto.LedgerEntryResponse{
			ID:               e.ID,
			TransactionID:    e.TransactionID,
			Location:         e.Location,
			CategoryID:       e.CategoryID,
			CategoryName:     n.categories[e.CategoryID],
			ProductID:        e.ProductID,
			ProductName:      n.products[e.ProductID],
			UserID:           e.UserID,
			PreviousQuantity: e.PreviousQuantity,
			Quantity:         e.Quantity,
			BalanceQuantity:  e.BalanceQuantity,
			Direction:        e.Direction,
			Type:             e.Type,
			Counterpart:      e.Counterpart,
			TakenBy:          e.TakenBy,
			Remarks:          e.Remarks,
			Time:             e.Time,
		}
		if e.Counterpart != nil {
			name, err := n.location(ctx, *e.Counterpart)
			if err != nil {
				return nil, err
			}
			r.CounterpartName = name
		}
		items = append(items, r)
	}
	return items, nil
}

// names resuelve y cachea nombres de productos, categorías y ubicaciones durante una consulta.
type names struct {
	deps            Deps
	products        map[string]string
	productCategory map[string]string
	categories      map[string]string
	locations       map[entity.LocationRef]string
}

func (uc *QueryUseCase) newNames() *names {
	return &names{
		deps:            uc.deps,
		products:        map[string]string{},
		productCategory: map[string]string{},
		categories:      map[string]string{},
		locations:       map[entity.LocationRef]string{},
	}
}

func (n *names) loadEntries(ctx context.Context, entries []*entity.LedgerEntry) error {
	productIDs := make([]string, 0, len(entries))
	categoryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		productIDs = append(productIDs, e.ProductID)
		categoryIDs = append(categoryIDs, e.CategoryID)
	}
	return n.load(ctx, productIDs, categoryIDs)
}

func (n *names) load(ctx context.Context, productIDs, categoryIDs []string) error {
	if ids := uniq(productIDs); len(ids) > 0 {
		list, err := n.deps.Products.ListByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		for _, p := range list {
			n.products[p.ID] = p.Name
			n.productCategory[p.ID] = p.CategoryID
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
	}
	if ids := uniq(categoryIDs); len(ids) > 0 {
		list, err := n.deps.Categories.ListByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for _, c := range list {
			n.categories[c.ID] = c.Name
		}
	}
	return nil
}

// location nombre de la ubicación; si fue eliminada se muestra la referencia.
func (n *names) location(ctx context.Context, loc entity.LocationRef) (string, error) {
	if name, ok := n.locations[loc]; ok {
		return name, nil
	}
	name, err := n.deps.Locations.Name(ctx, loc)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		name = loc.String()
	}
	n.locations[loc] = name
	return name, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
