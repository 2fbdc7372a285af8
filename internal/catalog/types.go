// Package catalog defines the backend wire types and the typed API client
// for the product-review service.
package catalog

// Product represents a product as returned by the backend. The same shape
// serves the list projection and the detail projection; Description is only
// populated on detail fetches.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
	Description   string  `json:"description,omitempty"`
}

// Review represents a product review. The server assigns the identity;
// clients never do.
type Review struct {
	ID        int64  `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	UserName  string `json:"userName,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// DisplayName returns the reviewer name, or "Anonymous" when absent.
func (r Review) DisplayName() string {
	if r.UserName == "" {
		return "Anonymous"
	}
	return r.UserName
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// AddReviewRequest is the payload for POST /api/products/{id}/reviews.
// Comment is omitted from the body when blank.
type AddReviewRequest struct {
	Rating  int     `json:"rating" validate:"gte=1,lte=5"`
	Comment *string `json:"comment,omitempty"`
}

// Sortable fields recognized by the backend.
const (
	FieldPrice         = "price"
	FieldAverageRating = "averageRating"
	FieldReviewCount   = "reviewCount"
	FieldName          = "name"
	FieldCreatedAt     = "createdAt"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// SortKey builds a "<field>,<asc|desc>" sort directive.
func SortKey(field, direction string) string {
	return field + "," + direction
}

// Categories lists the category labels known to the catalog.
var Categories = []string{
	"Phones",
	"Laptops",
	"Tablets",
	"Audio",
	"Wearables",
	"Accessories",
}
