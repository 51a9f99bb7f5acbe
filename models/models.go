package models

import "time"

type User struct {
	ID        int       `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password_hash"`
	Name      *string   `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

type Product struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  *int      `json:"category_id" db:"category_id"`
	SellerID    int       `json:"seller_id" db:"seller_id"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	Images      *string   `json:"images" db:"images"`
	Features    *string   `json:"features" db:"features"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductDetails is a product row joined with its category and seller.
type ProductDetails struct {
	Product
	CategoryName *string `json:"category_name" db:"category_name"`
	CategorySlug *string `json:"category_slug" db:"category_slug"`
	SellerEmail  *string `json:"seller_email" db:"seller_email"`
	SellerName   *string `json:"seller_name" db:"seller_name"`
}

// PopularProduct carries the aggregated non-cancelled order quantity
// used for the popularity ranking.
type PopularProduct struct {
	ProductDetails
	TotalOrdered int `json:"total_ordered" db:"total_ordered"`
}

type Order struct {
	ID         int       `json:"id" db:"id"`
	BuyerID    int       `json:"buyer_id" db:"buyer_id"`
	SellerID   int       `json:"seller_id" db:"seller_id"`
	ProductID  int       `json:"product_id" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	Status     string    `json:"status" db:"status"`
	SizesRaw   *string   `json:"-" db:"sizes"`
	Sizes      []string  `json:"sizes" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// OrderDetails is an order joined with its product and both parties,
// as returned by the my-orders listing.
type OrderDetails struct {
	Order
	ProductTitle *string `json:"product_title" db:"product_title"`
	ProductImage *string `json:"product_image" db:"product_image"`
	BuyerEmail   *string `json:"buyer_email" db:"buyer_email"`
	SellerEmail  *string `json:"seller_email" db:"seller_email"`
}

type Favorite struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ProductID int       `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FavoriteDetails is a favorite joined with the saved product and its
// category and seller.
type FavoriteDetails struct {
	FavoriteID  int       `json:"favorite_id" db:"favorite_id"`
	FavoritedAt time.Time `json:"favorited_at" db:"favorited_at"`
	ProductDetails
}
