package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Request payloads. Field rules live in binding tags and are checked by the
// validator engine registered in internal/validation; rules that span several
// fields are registered there as struct-level validations.

type ProductCreate struct {
	Name              string   `json:"name" binding:"required,notblank,max=200"`
	Description       string   `json:"description" binding:"max=1000"`
	Category          string   `json:"category" binding:"required,notblank,max=100"`
	Price             float64  `json:"price" binding:"required,gt=0"`
	Cost              float64  `json:"cost" binding:"gte=0"`
	DiscountPrice     *float64 `json:"discount_price" binding:"omitempty,gt=0"`
	Stock             int      `json:"stock" binding:"gte=0"`
	LowStockThreshold *int     `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Tags              []string `json:"tags" binding:"max=10"`
	IsFeatured        bool     `json:"is_featured"`
}

func (in ProductCreate) ToProduct() *Product {
	threshold := DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}
	p := &Product{
		Name:              in.Name,
		Description:       in.Description,
		Category:          in.Category,
		Price:             in.Price,
		Cost:              in.Cost,
		DiscountPrice:     in.DiscountPrice,
		Stock:             in.Stock,
		LowStockThreshold: threshold,
		Tags:              in.Tags,
		Status:            ProductActive,
		IsFeatured:        in.IsFeatured,
	}
	p.Normalize()
	return p
}

// ProductUpdate carries a partial update: nil fields are left untouched.
type ProductUpdate struct {
	Name              *string        `json:"name" binding:"omitempty,notblank,max=200"`
	Description       *string        `json:"description" binding:"omitempty,max=1000"`
	Category          *string        `json:"category" binding:"omitempty,notblank,max=100"`
	Price             *float64       `json:"price" binding:"omitempty,gt=0"`
	Cost              *float64       `json:"cost" binding:"omitempty,gte=0"`
	DiscountPrice     *float64       `json:"discount_price" binding:"omitempty,gt=0"`
	Stock             *int           `json:"stock" binding:"omitempty,gte=0"`
	LowStockThreshold *int           `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Tags              *[]string      `json:"tags" binding:"omitempty,max=10"`
	Status            *ProductStatus `json:"status" binding:"omitempty,oneof=active inactive archived"`
	IsFeatured        *bool          `json:"is_featured"`
	ClearDiscount     bool           `json:"clear_discount"` // removes discount_price
}

// Fields lists the json names of the provided fields in declaration order.
func (in ProductUpdate) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(in.Name != nil, "name")
	add(in.Description != nil, "description")
	add(in.Category != nil, "category")
	add(in.Price != nil, "price")
	add(in.Cost != nil, "cost")
	add(in.DiscountPrice != nil || in.ClearDiscount, "discount_price")
	add(in.Stock != nil, "stock")
	add(in.LowStockThreshold != nil, "low_stock_threshold")
	add(in.Tags != nil, "tags")
	add(in.Status != nil, "status")
	add(in.IsFeatured != nil, "is_featured")
	return fields
}

func (in ProductUpdate) IsEmpty() bool { return len(in.Fields()) == 0 }

// ApplyTo merges the provided fields into a copy of p and normalizes it.
func (in ProductUpdate) ApplyTo(p Product) Product {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Cost != nil {
		p.Cost = *in.Cost
	}
	if in.DiscountPrice != nil {
		d := *in.DiscountPrice
		p.DiscountPrice = &d
	}
	if in.ClearDiscount {
		p.DiscountPrice = nil
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if in.Tags != nil {
		p.Tags = append([]string(nil), (*in.Tags)...)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.Normalize()
	return p
}

type StockAdjustment struct {
	Adjustment int    `json:"adjustment" binding:"required"`
	Reason     string `json:"reason" binding:"max=200"`
}

type QuantityUpdate struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

type UserCreate struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,notblank,max=100"`
	Password string `json:"password" binding:"required,min=8,max=100,strongpassword"`
}

type UserUpdate struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name" binding:"omitempty,notblank,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Age      *int    `json:"age" binding:"omitempty,gte=13,lte=150"`
}

func (in UserUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if in.Username != nil {
		cols["username"] = strings.ToLower(strings.TrimSpace(*in.Username))
	}
	if in.Email != nil {
		cols["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.FullName != nil {
		cols["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Bio != nil {
		cols["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Age != nil {
		cols["age"] = *in.Age
	}
	return cols
}

type RoleUpdate struct {
	Role Role `json:"role" binding:"required,oneof=admin moderator user"`
}

type LoginRequest struct {
	Username   string `json:"username" form:"username" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type PasswordReset struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type AddressCreate struct {
	Street  string `json:"street" binding:"required,notblank,max=200"`
	City    string `json:"city" binding:"required,notblank,max=100"`
	State   string `json:"state" binding:"required,min=2,max=50"`
	ZipCode string `json:"zip_code" binding:"required,zipcode"`
	Country string `json:"country" binding:"required,min=2,max=100"`
}

func (in AddressCreate) ToAddress() *Address {
	return &Address{
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		ZipCode: in.ZipCode,
		Country: strings.TrimSpace(in.Country),
	}
}

type OrderItemCreate struct {
	ProductID int `json:"product_id" binding:"required,gt=0"`
	Quantity  int `json:"quantity" binding:"required,gte=1,lte=1000"`
}

type OrderCreate struct {
	Items []OrderItemCreate `json:"items" binding:"required,min=1,max=50,dive"`
}

// MergedItems sums quantities of repeated products, keeping first-seen order.
func (in OrderCreate) MergedItems() []OrderItemCreate {
	index := make(map[int]int, len(in.Items))
	merged := make([]OrderItemCreate, 0, len(in.Items))
	for _, item := range in.Items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

type OrderStatusUpdate struct {
	Status OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

const (
	DateLayout       = "2006-01-02"
	MaxDateRangeDays = 365
)

// DateRange is bound from start_date/end_date query parameters in YYYY-MM-DD form.
type DateRange struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
}

// Bounds returns the range as [start, end) where end is the day after EndDate.
func (r DateRange) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, NewFieldValidation("start_date", "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, NewFieldValidation("end_date", "end_date must be YYYY-MM-DD")
	}
	return start, end.AddDate(0, 0, 1), nil
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentCreate struct {
	OrderID       int           `json:"order_id" binding:"omitempty,gt=0"`
	Amount        float64       `json:"amount" binding:"required,gt=0"`
	Method        PaymentMethod `json:"method" binding:"required,oneof=credit_card paypal bank_transfer"`
	CardNumber    string        `json:"card_number" binding:"omitempty,cardnumber"`
	CardExpiry    string        `json:"card_expiry" binding:"omitempty,cardexpiry"`
	CardCVV       string        `json:"card_cvv" binding:"omitempty,cvv"`
	PayPalEmail   string        `json:"paypal_email" binding:"omitempty,email"`
	AccountNumber string        `json:"account_number" binding:"omitempty,max=34"`
	RoutingNumber string        `json:"routing_number" binding:"omitempty,routingnumber"`
}

// MaskedCard keeps only the last four digits for logs and responses.
func (p PaymentCreate) MaskedCard() string {
	if len(p.CardNumber) < 4 {
		return ""
	}
	return "**** " + p.CardNumber[len(p.CardNumber)-4:]
}

type PaymentResult struct {
	PaymentID string        `json:"payment_id"`
	Status    string        `json:"status"`
	Amount    float64       `json:"amount"`
	Method    PaymentMethod `json:"method"`
	Card      string        `json:"card,omitempty"`
}

type ShippingRate struct {
	Carrier       string  `json:"carrier"`
	Service       string  `json:"service"`
	Price         float64 `json:"price"`
	EstimatedDays int     `json:"estimated_days"`
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[/\\:*?"<>|]`)

	AllowedUploadTypes = []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"application/pdf",
		"application/zip",
	}
)

// FileUpload describes an incoming file after its content type was sniffed.
type FileUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// SanitizeFilename strips path separators and shell-unsafe characters and
// trims surrounding dots and spaces.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, ". ")
}

func IsAllowedUploadType(contentType string) bool {
	for _, t := range AllowedUploadTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Validate sanitizes the filename in place and checks type and size.
func (f *FileUpload) Validate(maxBytes int64) error {
	f.Filename = SanitizeFilename(f.Filename)
	if f.Filename == "" {
		return NewFieldValidation("filename", "Invalid filename")
	}
	if len(f.Filename) > 255 {
		return NewFieldValidation("filename", "filename must be at most 255 characters")
	}
	if !IsAllowedUploadType(f.ContentType) {
		return NewFieldValidation("content_type", "File type not allowed. Allowed: "+strings.Join(AllowedUploadTypes, ", "))
	}
	if f.SizeBytes < 0 || f.SizeBytes > maxBytes {
		return FileTooLarge(maxBytes)
	}
	return nil
}

// FileTooLarge is the rejection for uploads over maxBytes.
func FileTooLarge(maxBytes int64) error {
	return NewFieldValidation("file", "File too large. Max size: "+FormatBytes(maxBytes))
}

func FormatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

type UploadResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type BlogPostCreate struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required,max=10000"`
	Tags    []string `json:"tags" binding:"max=10"`
}
