package memory

import (
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// AddProject registra una obra.
func (s *Store) AddProject(p entity.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// AddCategory registra una categoría.
func (s *Store) AddCategory(c entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddPurchaseOrder registra una orden de compra con sus líneas.
func (s *Store) AddPurchaseOrder(o entity.PurchaseOrder, details ...entity.PurchaseOrderDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	for _, d := range details {
		d.PurchaseOrderID = o.ID
		if d.Status == "" {
			d.Status = entity.OrderDetailPending
		}
		s.details[d.ID] = d
	}
}

// OverwriteBalance escribe un saldo sin pasar por el kardex. Sólo para simular datos
// heredados o corruptos (la conciliación debe detectarlos).
func (s *Store) OverwriteBalance(b entity.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{b.Location, b.ProductID}] = b
}

// SeedDemo carga datos de referencia mínimos para probar el API sin base de datos.
func (s *Store) SeedDemo() {
	now := time.Now().UTC()
	s.AddProject(entity.Project{ID: "obra-demo", Name: "Obra Demo", Status: "In-progress", CreatedAt: now, UpdatedAt: now})
	s.AddWarehouse(entity.Warehouse{ID: "bodega-demo", Name: "Bodega Central", CreatedAt: now, UpdatedAt: now})
	s.AddCategory(entity.Category{ID: "cat-agregados", Name: "Agregados", Status: "Active", CreatedAt: now, UpdatedAt: now})
	s.AddCategory(entity.Category{ID: "cat-acero", Name: "Acero", Status: "Active", CreatedAt: now, UpdatedAt: now})
	s.AddProduct(entity.Product{ID: "prod-cemento", CategoryID: "cat-agregados", Name: "Cemento gris", Unit: "bolsa", Status: "Active", CreatedAt: now, UpdatedAt: now})
	s.AddProduct(entity.Product{ID: "prod-varilla", CategoryID: "cat-acero", Name: "Varilla 1/2\"", Unit: "unidad", Status: "Active", CreatedAt: now, UpdatedAt: now})
}
