package model

// Service is an add-on (snack, combo, ...) that can be attached to a
// booking.  Price is the unit price in the smallest currency unit.
type Service struct {
    ID    uint64 `json:"id"`    // services.id
    Name  string `json:"name"`  // services.name
    Price int64  `json:"price"` // services.price
}
