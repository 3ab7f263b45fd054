package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&User{},
	// Catalog
	&Category{},
	&Product{},
	// Shopping
	&CartItem{},
	&Order{},
	&OrderItem{},
}
