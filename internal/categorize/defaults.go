package categorize

import (
	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// DefaultCategories returns the system categories shared by every owner.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: model.TransferCategoryID, Name: "Transferencia", Color: "#607d8b", Icon: "swap"},
		{ID: sys(2), Name: "Hogar", Color: "#8d6e63", Icon: "home"},
		{ID: sys(3), Name: "Alimentación", Color: "#43a047", Icon: "cart"},
		{ID: sys(4), Name: "Transporte", Color: "#1e88e5", Icon: "car"},
		{ID: sys(5), Name: "Ocio", Color: "#8e24aa", Icon: "ticket"},
		{ID: sys(6), Name: "Salud", Color: "#e53935", Icon: "heart"},
		{ID: sys(7), Name: "Nómina", Color: "#00897b", Icon: "briefcase"},
		{ID: sys(8), Name: "Suministros", Color: "#fb8c00", Icon: "bolt", ParentID: ptr(sys(2))},
		{ID: sys(9), Name: "Supermercado", Color: "#7cb342", Icon: "basket", ParentID: ptr(sys(3))},
		{ID: sys(10), Name: "Restaurantes", Color: "#c0ca33", Icon: "fork", ParentID: ptr(sys(3))},
		{ID: sys(11), Name: "Combustible", Color: "#3949ab", Icon: "fuel", ParentID: ptr(sys(4))},
	}
}

// sys returns the fixed id of the n-th system category.
func sys(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }
