package store

import (
	"time"

	"shop-client/internal/domain"
)

func testProduct(id string, price, stock int64) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: price, Stock: stock}
}

func testOrder(id string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	return domain.Order{
		OrderID:     id,
		OrderNumber: "ORD-" + id,
		Items: []domain.OrderLine{
			{ProductID: "p1", Name: "Product p1", UnitPrice: 200, Quantity: 2, LineTotal: 400},
		},
		DeliveryAddress: testAddress(),
		Subtotal:        400,
		DeliveryFee:     30,
		Tax:             20,
		TotalAmount:     450,
		PaymentMethod:   "cod",
		OrderStatus:     status,
		CreatedAt:       createdAt,
	}
}

func testAddress() domain.Address {
	return domain.Address{
		Name:      "Asha",
		Phone:     "9876543210",
		Line1:     "12 MG Road",
		City:      "Jaipur",
		State:     "Rajasthan",
		Pincode:   "302001",
		Type:      "home",
		IsDefault: true,
	}
}

func testDraft(lines []domain.CartLine) domain.OrderDraft {
	return domain.OrderDraft{
		Items:           lines,
		DeliveryAddress: testAddress(),
		PaymentMethod:   "cod",
		ClientRequestID: "req-1",
	}
}
