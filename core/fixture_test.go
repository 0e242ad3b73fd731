package core

import "time"

type Customer struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	DeletedAt *time.Time `db:"deleted_at"`
	Orders    []Order    `db:"orders"`
	Address   *Address   `db:"address"`
	scratch   string
}

type Order struct {
	ID         int64     `db:"id"`
	CustomerID int64     `db:"customer_id"`
	Total      float64   `db:"total"`
	Customer   *Customer `db:"customer"`
	Tags       []Tag     `db:"tags"`
}

type Address struct {
	ID         int64  `db:"id"`
	CustomerID int64  `db:"customer_id"`
	City       string `db:"city"`
}

type Tag struct {
	ID    int64  `db:"id"`
	Label string `db:"label"`
}

type OrderTag struct {
	OrderID int64 `db:"order_id"`
	TagID   int64 `db:"tag_id"`
}

type shop struct {
	customer *SchemaMeta[Customer]
	order    *SchemaMeta[Order]
	address  *SchemaMeta[Address]
	tag      *SchemaMeta[Tag]
	registry *Registry
}

func newShop() shop {
	customer := Schema[Customer](
		Table[Customer]("customers"),
		OverrideField(func(c *Customer) *int64 { return &c.ID }, PrimaryKey()),
		OverrideField(func(c *Customer) **time.Time { return &c.DeletedAt }, DeletedAt()),
	)
	order := Schema[Order](Table[Order]("orders"))
	address := Schema[Address](Table[Address]("addresses"))
	tag := Schema[Tag](Table[Tag]("tags"))

	AddRelation(customer, Relation[Customer, Order, any]{
		Kind:       OneToMany,
		Field:      func(c *Customer) *[]Order { return &c.Orders },
		RefSchema:  order,
		LocalKey:   func(c *Customer) *int64 { return &c.ID },
		ForeignKey: func(o *Order) *int64 { return &o.CustomerID },
	})
	AddRelation(customer, Relation[Customer, Address, any]{
		Kind:       OneToOne,
		Field:      func(c *Customer) **Address { return &c.Address },
		RefSchema:  address,
		LocalKey:   func(c *Customer) *int64 { return &c.ID },
		ForeignKey: func(a *Address) *int64 { return &a.CustomerID },
	})
	AddRelation(order, Relation[Order, Customer, any]{
		Kind:       OneToOne,
		Field:      func(o *Order) **Customer { return &o.Customer },
		RefSchema:  customer,
		LocalKey:   func(o *Order) *int64 { return &o.CustomerID },
		ForeignKey: func(c *Customer) *int64 { return &c.ID },
	})
	AddRelation(order, Relation[Order, Tag, OrderTag]{
		Kind:           ManyToMany,
		Field:          func(o *Order) *[]Tag { return &o.Tags },
		RefSchema:      tag,
		LocalKey:       func(o *Order) *int64 { return &o.ID },
		ForeignKey:     func(t *Tag) *int64 { return &t.ID },
		JoinTable:      "order_tags",
		JoinLocalKey:   func(j *OrderTag) *int64 { return &j.OrderID },
		JoinForeignKey: func(j *OrderTag) *int64 { return &j.TagID },
	})

	registry := NewRegistry().MustRegister(
		&customer.SchemaCore, &order.SchemaCore, &address.SchemaCore, &tag.SchemaCore,
	)
	return shop{customer: customer, order: order, address: address, tag: tag, registry: registry}
}

func modelNameList(q *Query) []string {
	nameList := []string{}
	for _, model := range q.Models() {
		nameList = append(nameList, model.Name())
	}
	return nameList
}
