package users

// User is a registered user and the orders it placed.
type User struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	IsActive bool    `json:"is_active"`
	Orders   []Order `json:"orders,omitempty"`
}

// Order is a single product order placed by a user.
type Order struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UserID      int64  `json:"user_id"`
}

// UserWithOrderInfo is the projection returned by UsersWithOrders.
type UserWithOrderInfo struct {
	Name        string
	TotalOrders int
}

// DemoUsers returns the users seeded by the demo run.
func DemoUsers() []User {
	return []User{
		{Name: "Alice", Email: "alice@example.com", IsActive: true},
		{Name: "Bob", Email: "bob@example.com", IsActive: false},
		{Name: "Charlie", Email: "charlie@example.com", IsActive: true},
	}
}
