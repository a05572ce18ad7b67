package domain

// Promotion is a discount campaign shown on the home page banner.
type Promotion struct {
	ID              ID      `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	Code            string  `json:"code,omitempty"`
	StartDate       string  `json:"start_date,omitempty"`
	EndDate         string  `json:"end_date,omitempty"`
	Active          bool    `json:"is_active"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// PromotionInput is the admin create/update payload.
type PromotionInput struct {
	Title           string  `json:"title" form:"title" validate:"required"`
	Description     string  `json:"description" form:"description"`
	DiscountPercent float64 `json:"discount_percent" form:"discount_percent" validate:"gt=0,lte=100"`
	Code            string  `json:"code" form:"code"`
	StartDate       string  `json:"start_date" form:"start_date"`
	EndDate         string  `json:"end_date" form:"end_date"`
	Active          bool    `json:"is_active" form:"is_active"`
	ImageURL        string  `json:"image_url" form:"image_url"`
}
