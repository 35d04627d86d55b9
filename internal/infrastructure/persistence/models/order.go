package models

import (
	"time"

	"github.com/erp/crm/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderProductsTable is the join table between orders and products
const OrderProductsTable = "order_products"

// OrderModel is the persistence model for the Order entity.
type OrderModel struct {
	BaseModel
	CustomerID  uint            `gorm:"not null;index"`
	Customer    *CustomerModel  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Products    []ProductModel  `gorm:"many2many:order_products;joinForeignKey:OrderID;joinReferences:ProductID;constraint:OnDelete:CASCADE"`
	OrderDate   time.Time       `gorm:"not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
// Customer and Products are included when they were preloaded.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		CustomerID:  m.CustomerID,
		OrderDate:   m.OrderDate,
		TotalAmount: m.TotalAmount,
		Products:    ProductsToDomain(m.Products),
	}
	if m.Customer != nil {
		o.Customer = m.Customer.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
// Products are mapped by reference only; associating them is done by the repository.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.CustomerID = o.CustomerID
	m.OrderDate = o.OrderDate
	m.TotalAmount = o.TotalAmount
	m.Products = make([]ProductModel, len(o.Products))
	for i := range o.Products {
		m.Products[i].FromDomain(&o.Products[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
