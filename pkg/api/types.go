package api

// FeedRequest is the create/update payload for a feed.
type FeedRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddVideoRequest adds one video membership to a feed.
type AddVideoRequest struct {
	VideoID   int64 `json:"video_id"`
	SortOrder int   `json:"sort_order"`
}

// SortOrderRequest moves one membership within a feed.
type SortOrderRequest struct {
	SortOrder int `json:"sort_order"`
}

// SaveProductsRequest replaces a video's linked products.
type SaveProductsRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

// IDResponse returns the id of a newly created resource.
type IDResponse struct {
	ID int64 `json:"id"`
}
