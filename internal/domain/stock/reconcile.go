package stock

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

type balanceKey struct {
	loc       entity.LocationRef
	productID string
}

// Replay reconstruye los saldos desde el kardex y los compara con los Balance almacenados.
// entries puede venir en cualquier orden; se ordena por Seq.
func Replay(entries []*entity.LedgerEntry, balances []*entity.Balance) []entity.ReconciliationFinding {
	sorted := make([]*entity.LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var findings []entity.ReconciliationFinding
	running := make(map[balanceKey]decimal.Decimal)
	var order []balanceKey

	for _, e := range sorted {
		k := balanceKey{loc: e.Location, productID: e.ProductID}
		prev, seen := running[k]
		if !seen {
			order = append(order, k)
		}
		if !e.Consistent() {
			findings = append(findings, entity.ReconciliationFinding{
				CheckType: entity.CheckEntryMismatch,
				Location:  e.Location,
				ProductID: e.ProductID,
				Expected:  expectedBalance(e),
				Actual:    e.BalanceQuantity,
				Details:   fmt.Sprintf("asiento %s (%s) no cumple previo ± cantidad = saldo", e.ID, e.Type),
			})
		}
		if !e.PreviousQuantity.Equal(prev) {
			findings = append(findings, entity.ReconciliationFinding{
				CheckType: entity.CheckChainBreak,
				Location:  e.Location,
				ProductID: e.ProductID,
				Expected:  prev,
				Actual:    e.PreviousQuantity,
				Details:   fmt.Sprintf("asiento %s (%s) parte de un saldo previo distinto al acumulado", e.ID, e.Type),
			})
		}
		running[k] = e.BalanceQuantity
	}

	stored := make(map[balanceKey]*entity.Balance, len(balances))
	for _, b := range balances {
		k := balanceKey{loc: b.Location, productID: b.ProductID}
		stored[k] = b
		if _, ok := running[k]; !ok && !b.Quantity.IsZero() {
			findings = append(findings, entity.ReconciliationFinding{
				CheckType: entity.CheckOrphanBalance,
				Location:  b.Location,
				ProductID: b.ProductID,
				Expected:  decimal.Zero,
				Actual:    b.Quantity,
				Details:   "saldo sin asientos en el kardex",
			})
		}
	}
	for _, k := range order {
		want := running[k]
		got := decimal.Zero
		if b, ok := stored[k]; ok {
			got = b.Quantity
		}
		if !want.Equal(got) {
			findings = append(findings, entity.ReconciliationFinding{
				CheckType: entity.CheckBalanceDrift,
				Location:  k.loc,
				ProductID: k.productID,
				Expected:  want,
				Actual:    got,
				Details:   "el saldo almacenado no coincide con el último asiento del kardex",
			})
		}
	}

	return append(findings, unpairedTransfers(sorted)...)
}

func expectedBalance(e *entity.LedgerEntry) decimal.Decimal {
	if e.Direction == entity.DirectionOut {
		return e.PreviousQuantity.Sub(e.Quantity)
	}
	return e.PreviousQuantity.Add(e.Quantity)
}

// unpairedTransfers exige que cada traslado tenga exactamente una salida y una entrada de igual cantidad.
func unpairedTransfers(entries []*entity.LedgerEntry) []entity.ReconciliationFinding {
	legs := make(map[string][]*entity.LedgerEntry)
	var txIDs []string
	for _, e := range entries {
		if !entity.IsTransfer(e.Type) {
			continue
		}
		if _, ok := legs[e.TransactionID]; !ok {
			txIDs = append(txIDs, e.TransactionID)
		}
		legs[e.TransactionID] = append(legs[e.TransactionID], e)
	}

	var findings []entity.ReconciliationFinding
	for _, id := range txIDs {
		l := legs[id]
		if len(l) == 2 && l[0].Direction != l[1].Direction && l[0].Quantity.Equal(l[1].Quantity) {
			continue
		}
		first := l[0]
		total := decimal.Zero
		for _, e := range l {
			total = total.Add(e.SignedQuantity())
		}
		findings = append(findings, entity.ReconciliationFinding{
			CheckType: entity.CheckTransferUnpaired,
			Location:  first.Location,
			ProductID: first.ProductID,
			Expected:  decimal.Zero,
			Actual:    total,
			Details:   fmt.Sprintf("traslado %s con %d pata(s) sin cuadrar", id, len(l)),
		})
	}
	return findings
}

// Conservation calcula por producto la identidad global:
// suma de saldos = créditos externos netos (entregas y ajustes) menos consumo en obra.
func Conservation(entries []*entity.LedgerEntry, balances []*entity.Balance) []entity.ProductConservation {
	byProduct := make(map[string]*entity.ProductConservation)
	var order []string
	get := func(id string) *entity.ProductConservation {
		pc, ok := byProduct[id]
		if !ok {
			pc = &entity.ProductConservation{ProductID: id}
			byProduct[id] = pc
			order = append(order, id)
		}
		return pc
	}

	for _, b := range balances {
		pc := get(b.ProductID)
		pc.TotalBalance = pc.TotalBalance.Add(b.Quantity)
	}
	for _, e := range entries {
		pc := get(e.ProductID)
		if entity.IsTransfer(e.Type) {
			continue
		}
		if e.Type == entity.TxTypeTakenForConstruction {
			pc.Consumed = pc.Consumed.Add(e.Quantity)
		}
		pc.NetExternal = pc.NetExternal.Add(e.SignedQuantity())
	}

	sort.Strings(order)
	out := make([]entity.ProductConservation, 0, len(order))
	for _, id := range order {
		pc := byProduct[id]
		pc.Balanced = pc.TotalBalance.Equal(pc.NetExternal)
		out = append(out, *pc)
	}
	return out
}
