package domain

import "context"

// ProductUpdateOptions controls side effects of a product update.
type ProductUpdateOptions struct {
	ActorID     int
	Audit       bool
	Reason      string
	NotifyUsers bool
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, in ProductCreate) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, sort ProductSort, page Page) ([]Product, int64, error)
	ListProductsAfter(ctx context.Context, filter ProductFilter, afterID, limit int) ([]Product, error)
	Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error)
	CategoryFacets(ctx context.Context, filter ProductFilter) ([]FacetCount, error)
	// PreviewUpdate runs every update rule and returns the fields that
	// would change without saving anything.
	PreviewUpdate(ctx context.Context, id int, in ProductUpdate) ([]string, error)
	UpdateProduct(ctx context.Context, id int, in ProductUpdate, opts ProductUpdateOptions) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
	AdjustStock(ctx context.Context, id int, in StockAdjustment) (*Product, error)
	SetQuantity(ctx context.Context, id int, quantity int) (*Product, error)
	LowStockReport(ctx context.Context) ([]Product, error)
	OutOfStockReport(ctx context.Context) ([]Product, error)
	ListAudits(ctx context.Context, id int) ([]ProductAudit, error)
}

type UserUseCase interface {
	RegisterUser(ctx context.Context, in UserCreate) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	GetProfile(ctx context.Context, actor *User, id int) (*User, error)
	UpdateUser(ctx context.Context, actor *User, id int, in UserUpdate) (*User, error)
	ChangeRole(ctx context.Context, id int, role Role) (*User, error)
	AddAddress(ctx context.Context, actor *User, userID int, in AddressCreate, setDefault bool) (*Address, error)
	ChangePassword(ctx context.Context, user *User, in PasswordReset) error
	EnsureAdmin(ctx context.Context, username, email, password string) (*User, error)
}

type OrderUseCase interface {
	CreateOrder(ctx context.Context, userID int, in OrderCreate) (*Order, error)
	GetOrder(ctx context.Context, actor *User, id int) (*Order, error)
	ListOrders(ctx context.Context, userID int, page Page) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id int, status OrderStatus) (*Order, error)
	SalesReport(ctx context.Context, r DateRange) (*SalesReport, error)
}

type PostUseCase interface {
	CreatePost(ctx context.Context, author *User, in BlogPostCreate) (*Post, error)
	GetApprovedPost(ctx context.Context, authorID, postID int) (*Post, error)
	ApprovePost(ctx context.Context, approver *User, id int) (*Post, error)
	DeletePost(ctx context.Context, id int) error
}

type CommerceUseCase interface {
	Pay(ctx context.Context, payer *User, in PaymentCreate) (*PaymentResult, error)
	ShippingRates(ctx context.Context, zipCode string) ([]ShippingRate, error)
}
