package request

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required,min=5"`
	Phone           string `json:"phone" validate:"required,mobile"`
	PaymentMethod   string `json:"paymentMethod,omitempty" validate:"omitempty,oneof=COD eSewa Khalti"`
	CouponCode      string `json:"couponCode,omitempty"`
}

type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId,omitempty" validate:"omitempty,objectid"`
	Status  string `json:"status" validate:"required,oneof=Processing Shipped Delivered Cancelled"`
}

type MarkPaidRequest struct {
	OrderID string `json:"orderId" validate:"required,objectid"`
}

type KhaltiVerifyRequest struct {
	Token   string `json:"token" validate:"required"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	OrderID string `json:"orderId" validate:"required,objectid"`
}
