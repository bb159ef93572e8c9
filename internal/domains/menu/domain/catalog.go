package domain

// DefaultCatalog returns the starter items written into an empty menu.
func DefaultCatalog() []Draft {
	return []Draft{
		{Name: "MICHELADA TRADI NAC", Price: 2.50},
		{Name: "MICHELADA TAMA NAC", Price: 2.50},
		{Name: "MICHELADA CLAMA NAC", Price: 2.50},
		{Name: "MICHELADA TRADI CORONA", Price: 3.25},
		{Name: "MICHELADA TAMA CORONA", Price: 3.25},
		{Name: "MICHELADA CLAMA CORONA", Price: 3.25},
		{Name: "MICHELADA TRADI MINERAL", Price: 2.00},
		{Name: "COCTEL CAMARON CEVI", Price: 3.50},
		{Name: "COCTEL CONCHAS", Price: 3.50},
		{Name: "COCTEL PESCADO", Price: 3.50},
		{Name: "COCTEL MIXTO CEVI", Price: 3.50},
		{Name: "COCTEL CAMA SALS ROSA", Price: 3.50},
		{Name: "PILSENER", Price: 1.25},
		{Name: "GOLDEN", Price: 1.25},
		{Name: "REGIA", Price: 1.25},
		{Name: "SUPREMA", Price: 1.50},
		{Name: "CORONA", Price: 2.00},
	}
}
